package openinghours

import (
	"bookly/internal/hierarchy"
	tenantserrors "bookly/internal/tenants/errors"
	"bookly/pkg/model"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var berlin = mustLoad("Europe/Berlin")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func local(day, hour, minute int) time.Time {
	return time.Date(2025, 6, day, hour, minute, 0, 0, time.UTC)
}

func weekdayOffice() *model.Bookable {
	return &model.Bookable{
		ID:                    "office",
		Tenant:                "t1",
		IsOpeningHoursRelated: true,
		OpeningHours: []model.OpeningHours{
			{Weekdays: []int{1, 2, 3, 4, 5}, StartTime: "08:00", EndTime: "18:00"},
		},
	}
}

func TestConflicts_RegularHours(t *testing.T) {
	office := weekdayOffice()

	tests := []struct {
		name       string
		begin, end time.Time
		want       bool
	}{
		{"tuesday inside", local(3, 9, 0), local(3, 10, 0), false},
		{"tuesday exact bounds", local(3, 8, 0), local(3, 18, 0), false},
		{"saturday", local(7, 10, 0), local(7, 11, 0), true},
		{"tuesday past closing", local(3, 17, 0), local(3, 19, 0), true},
		{"tuesday before opening", local(3, 7, 30), local(3, 9, 0), true},
		{"overnight", local(3, 17, 0), local(4, 9, 0), true},
		{"tuesday seconds past closing", local(3, 17, 0), local(3, 18, 0).Add(59 * time.Second), true},
		{"tuesday one nanosecond past closing", local(3, 17, 0), local(3, 18, 0).Add(time.Nanosecond), true},
		{"tuesday seconds before closing", local(3, 17, 0), local(3, 17, 59).Add(30 * time.Second), false},
		{"tuesday start with seconds", local(3, 8, 0).Add(30 * time.Second), local(3, 9, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Conflicts(office, tt.begin, tt.end, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConflicts_EvaluatedInTenantZone(t *testing.T) {
	office := weekdayOffice()
	// 07:30 UTC is 09:30 in Berlin during summer time
	begin, end := local(3, 7, 30), local(3, 8, 30)

	inUTC, err := Conflicts(office, begin, end, time.UTC)
	require.NoError(t, err)
	assert.True(t, inUTC)

	inBerlin, err := Conflicts(office, begin, end, berlin)
	require.NoError(t, err)
	assert.False(t, inBerlin)
}

func TestConflicts_WindowEndingAtMidnight(t *testing.T) {
	tuesdayEvening := &model.Bookable{
		ID:                    "bar",
		IsOpeningHoursRelated: true,
		OpeningHours:          []model.OpeningHours{{Weekdays: []int{2}, StartTime: "16:00", EndTime: "24:00"}},
	}

	got, err := Conflicts(tuesdayEvening, local(3, 20, 0), local(4, 0, 0), time.UTC)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestConflicts_MultiDayWithAllDayHours(t *testing.T) {
	allDay := &model.Bookable{
		ID:                    "storage",
		IsOpeningHoursRelated: true,
		OpeningHours:          []model.OpeningHours{{Weekdays: []int{0, 1, 2, 3, 4, 5, 6}, StartTime: "00:00", EndTime: "24:00"}},
	}

	got, err := Conflicts(allDay, local(3, 17, 0), local(6, 9, 0), time.UTC)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestConflicts_SpecialHours(t *testing.T) {
	b := &model.Bookable{
		ID:                           "room",
		IsSpecialOpeningHoursRelated: true,
		SpecialOpeningHours: []model.SpecialOpeningHours{
			{Date: "2025-06-03", StartTime: "10:00", EndTime: "14:00"},
			{Date: "2025-06-05", StartTime: "00:00", EndTime: "00:00"},
		},
	}

	tests := []struct {
		name       string
		begin, end time.Time
		want       bool
	}{
		{"inside partial day", local(3, 11, 0), local(3, 12, 0), false},
		{"outside partial day", local(3, 9, 0), local(3, 11, 0), true},
		{"date without entry", local(4, 6, 0), local(4, 23, 0), false},
		{"closed date", local(5, 12, 0), local(5, 13, 0), true},
		{"closed date in the middle", local(4, 12, 0), local(6, 13, 0), true},
		{"closed date at window end", local(4, 22, 0), local(5, 0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Conflicts(b, tt.begin, tt.end, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConflicts_ClosedDateAlwaysConflicts(t *testing.T) {
	b := &model.Bookable{
		IsSpecialOpeningHoursRelated: true,
		SpecialOpeningHours:          []model.SpecialOpeningHours{{Date: "2025-06-03", StartTime: "09:00", EndTime: "09:00"}},
	}

	for hour := 0; hour < 24; hour++ {
		got, err := Conflicts(b, local(3, hour, 0), local(3, hour, 30), time.UTC)
		require.NoError(t, err)
		assert.True(t, got, fmt.Sprintf("hour %d", hour))
	}
}

func TestConflicts_Exemptions(t *testing.T) {
	longRange := weekdayOffice()
	longRange.IsLongRange = true

	unflagged := &model.Bookable{ID: "desk"}

	for _, b := range []*model.Bookable{longRange, unflagged} {
		got, err := Conflicts(b, local(7, 10, 0), local(7, 11, 0), time.UTC)
		require.NoError(t, err)
		assert.False(t, got)
	}
}

func TestConflicts_InvalidClock(t *testing.T) {
	b := &model.Bookable{
		IsOpeningHoursRelated: true,
		OpeningHours:          []model.OpeningHours{{Weekdays: []int{2}, StartTime: "8am", EndTime: "18:00"}},
	}

	_, err := Conflicts(b, local(3, 9, 0), local(3, 10, 0), time.UTC)
	assert.Error(t, err)
}

func TestConflictsInGraph_InheritsAncestorHours(t *testing.T) {
	building := weekdayOffice()
	building.ID = "building"
	building.RelatedBookableIDs = []string{"desk"}
	desk := &model.Bookable{ID: "desk", Tenant: "t1"}
	g := hierarchy.NewGraph([]*model.Bookable{building, desk})

	saturday, err := ConflictsInGraph(g, 5, desk, local(7, 10, 0), local(7, 11, 0), time.UTC)
	require.NoError(t, err)
	assert.True(t, saturday)

	tuesday, err := ConflictsInGraph(g, 5, desk, local(3, 10, 0), local(3, 11, 0), time.UTC)
	require.NoError(t, err)
	assert.False(t, tuesday)
}

func TestMerge(t *testing.T) {
	own := &model.Bookable{
		IsOpeningHoursRelated: true,
		OpeningHours:          []model.OpeningHours{{Weekdays: []int{1, 2}, StartTime: "09:00", EndTime: "17:00"}},

		IsSpecialOpeningHoursRelated: true,
		SpecialOpeningHours: []model.SpecialOpeningHours{
			{Date: "2025-12-24", StartTime: "09:00", EndTime: "12:00"},
			{Date: "2025-12-31", StartTime: "10:00", EndTime: "13:00"},
		},
	}
	parent := &model.Bookable{
		IsOpeningHoursRelated: true,
		OpeningHours:          []model.OpeningHours{{Weekdays: []int{1}, StartTime: "08:00", EndTime: "18:00"}},

		IsSpecialOpeningHoursRelated: true,
		SpecialOpeningHours: []model.SpecialOpeningHours{
			{Date: "2025-12-24", StartTime: "00:00", EndTime: "00:00"},
			{Date: "2025-12-31", StartTime: "08:00", EndTime: "11:00"},
		},
	}

	cal, err := Merge([]*model.Bookable{own, parent})
	require.NoError(t, err)

	assert.Equal(t, []model.OpeningHours{
		{Weekdays: []int{1}, StartTime: "08:00", EndTime: "17:00"},
		{Weekdays: []int{2}, StartTime: "09:00", EndTime: "17:00"},
	}, cal.OpeningHours)

	require.Len(t, cal.SpecialOpeningHours, 2)
	assert.True(t, cal.SpecialOpeningHours[0].IsClosed(), "closed entry wins")
	assert.Equal(t, "10:00", cal.SpecialOpeningHours[1].StartTime, "first partial entry is kept")
}

func TestMerge_IgnoresUnflaggedHours(t *testing.T) {
	b := &model.Bookable{OpeningHours: []model.OpeningHours{{Weekdays: []int{1}, StartTime: "08:00", EndTime: "18:00"}}}

	cal, err := Merge([]*model.Bookable{b})
	require.NoError(t, err)
	assert.Empty(t, cal.OpeningHours)
	assert.Empty(t, cal.SpecialOpeningHours)
}

type staticTenants struct {
	configs map[string]*model.TenantConfig
}

func (s staticTenants) GetConfig(_ context.Context, tenant string) (*model.TenantConfig, error) {
	if tc, ok := s.configs[tenant]; ok {
		return tc, nil
	}
	return nil, fmt.Errorf("%w: %s", tenantserrors.ErrNotFound, tenant)
}

type staticBookables []*model.Bookable

func (s staticBookables) FindByTenant(context.Context, string) ([]*model.Bookable, error) {
	return s, nil
}

func TestValidator(t *testing.T) {
	building := weekdayOffice()
	building.ID = "building"
	building.RelatedBookableIDs = []string{"desk"}
	desk := &model.Bookable{
		ID:                    "desk",
		Tenant:                "t1",
		IsOpeningHoursRelated: true,
		OpeningHours:          []model.OpeningHours{{Weekdays: []int{2}, StartTime: "10:00", EndTime: "20:00"}},
	}

	zones := NewZones(staticTenants{configs: map[string]*model.TenantConfig{
		"t1": {Tenant: "t1", TimeZone: "Europe/Berlin"},
	}}, time.UTC)
	v := NewValidator(hierarchy.NewResolver(staticBookables{building, desk}, 5, 100), zones)

	// 08:00-09:00 UTC is 10:00-11:00 Berlin: inside both
	conflict, err := v.HasConflict(context.Background(), desk, local(3, 8, 0), local(3, 9, 0))
	require.NoError(t, err)
	assert.False(t, conflict)

	// 16:00 UTC is 18:00 Berlin: desk open, building closed
	conflict, err = v.HasConflict(context.Background(), desk, local(3, 16, 0), local(3, 16, 30))
	require.NoError(t, err)
	assert.True(t, conflict)

	cal, err := v.RelatedOpeningHours(context.Background(), desk)
	require.NoError(t, err)
	require.NotEmpty(t, cal.OpeningHours)
	assert.Equal(t, model.OpeningHours{Weekdays: []int{2}, StartTime: "08:00", EndTime: "18:00"}, cal.OpeningHours[1])
}

func TestZones(t *testing.T) {
	zones := NewZones(staticTenants{configs: map[string]*model.TenantConfig{
		"berlin":  {Tenant: "berlin", TimeZone: "Europe/Berlin"},
		"bad":     {Tenant: "bad", TimeZone: "Nowhere/Special"},
		"default": {Tenant: "default"},
	}}, time.UTC)

	for tenant, want := range map[string]string{"berlin": "Europe/Berlin", "bad": "UTC", "default": "UTC", "missing": "UTC"} {
		loc, err := zones.Location(context.Background(), tenant)
		require.NoError(t, err)
		assert.Equal(t, want, loc.String(), tenant)
	}
}
