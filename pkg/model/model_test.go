package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(v int) *int { return &v }

func TestBookable_SnapshotDropsStorageID(t *testing.T) {
	b := &Bookable{
		MongoID:            primitive.NewObjectID(),
		ID:                 "room-1",
		Tenant:             "t1",
		Amount:             intPtr(3),
		RelatedBookableIDs: []string{"seat-1"},
	}

	snap := b.Snapshot()

	assert.True(t, snap.MongoID.IsZero())
	assert.Equal(t, "room-1", snap.ID)
	require.NotNil(t, snap.Amount)

	*snap.Amount = 10
	snap.RelatedBookableIDs[0] = "changed"
	assert.Equal(t, 3, *b.Amount, "snapshot must not alias the live amount")
	assert.Equal(t, "seat-1", b.RelatedBookableIDs[0])
}

func TestBookable_TimeFlags(t *testing.T) {
	tests := []struct {
		name        string
		bookable    Bookable
		timeBound   bool
		timeRelated bool
	}{
		{name: "plain counter", bookable: Bookable{}, timeBound: false, timeRelated: false},
		{name: "time period", bookable: Bookable{IsTimePeriodRelated: true}, timeBound: true, timeRelated: true},
		{name: "schedule", bookable: Bookable{IsScheduleRelated: true}, timeBound: true, timeRelated: true},
		{name: "long range", bookable: Bookable{IsLongRange: true}, timeBound: true, timeRelated: true},
		{name: "opening hours only", bookable: Bookable{IsOpeningHoursRelated: true}, timeBound: false, timeRelated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.timeBound, tt.bookable.IsTimeBound())
			assert.Equal(t, tt.timeRelated, tt.bookable.IsTimeRelated())
		})
	}
}

func TestBooking_AddHookAppends(t *testing.T) {
	b := &Booking{}
	first := b.AddHook(HookRequestRejection, map[string]any{"reason": "late"})
	second := b.AddHook(HookPaymentCompleted, nil)

	require.Len(t, b.Hooks, 2)
	assert.Equal(t, first.ID, b.Hooks[0].ID)
	assert.Equal(t, second.ID, b.Hooks[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, HookRequestRejection, b.Hooks[0].Type)
}

func TestBooking_AmountFor(t *testing.T) {
	b := &Booking{BookableItems: []BookingItem{
		{BookableID: "a", Amount: 2},
		{BookableID: "b", Amount: 1},
		{BookableID: "a", Amount: 3},
	}}

	assert.Equal(t, 5, b.AmountFor("a"))
	assert.Equal(t, 0, b.AmountFor("c"))
	assert.True(t, b.References("b"))
	assert.False(t, b.References("c"))
}

func TestCoupon_Validity(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	c := &Coupon{ValidFrom: &from, ValidTo: &to, MaxAmount: intPtr(2), UsedAmount: 1}

	assert.True(t, c.IsValidAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, c.IsValidAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, c.IsValidAt(time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, c.IsExhausted())

	c.UsedAmount = 2
	assert.True(t, c.IsExhausted())

	c.MaxAmount = nil
	assert.False(t, c.IsExhausted())
}
