package events

import (
	"bookly/pkg/kafka"
	"bookly/pkg/model"
	"context"
	"time"
)

const (
	EventBookingCreated = "booking.created"
	SchemaVersion       = "1"
)

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type BookingItemEvent struct {
	BookableID string `json:"bookableId"`
	Amount     int    `json:"amount"`
}

// BookingCreatedEvent is the public shape of a new booking. Contact data and
// tenant-internal snapshots stay out of the event.
type BookingCreatedEvent struct {
	Tenant         string             `json:"tenant"`
	BookingID      string             `json:"bookingId"`
	AssignedUserID string             `json:"assignedUserId,omitempty"`
	TimeBegin      *time.Time         `json:"timeBegin,omitempty"`
	TimeEnd        *time.Time         `json:"timeEnd,omitempty"`
	Items          []BookingItemEvent `json:"items"`
	PriceEur       float64            `json:"priceEur"`
	IsCommitted    bool               `json:"isCommitted"`
	IsPayed        bool               `json:"isPayed"`
	IsRejected     bool               `json:"isRejected"`
	CouponID       string             `json:"couponId,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

type BookingEventPublisher struct {
	publisher Publisher
	source    string
}

func NewBookingEventPublisher(publisher Publisher, source string) *BookingEventPublisher {
	return &BookingEventPublisher{
		publisher: publisher,
		source:    source,
	}
}

// BookingCreated keys the event by tenant and reference so every event of a
// booking lands on the same partition.
func (p *BookingEventPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	msg, err := kafka.NewMessage().
		WithKey(booking.Tenant + ":" + booking.ID).
		WithEventType(EventBookingCreated).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithTimestamp(booking.CreatedAt).
		WithValue(NewBookingCreatedEvent(booking)).
		Build()
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, msg)
}

func NewBookingCreatedEvent(booking *model.Booking) BookingCreatedEvent {
	event := BookingCreatedEvent{
		Tenant:         booking.Tenant,
		BookingID:      booking.ID,
		AssignedUserID: booking.AssignedUserID,
		TimeBegin:      booking.TimeBegin,
		TimeEnd:        booking.TimeEnd,
		Items:          make([]BookingItemEvent, 0, len(booking.BookableItems)),
		PriceEur:       booking.PriceEur,
		IsCommitted:    booking.IsCommitted,
		IsPayed:        booking.IsPayed,
		IsRejected:     booking.IsRejected,
		CreatedAt:      booking.CreatedAt,
	}
	for _, item := range booking.BookableItems {
		event.Items = append(event.Items, BookingItemEvent{BookableID: item.BookableID, Amount: item.Amount})
	}
	if booking.CouponUsed != nil {
		event.CouponID = booking.CouponUsed.ID
	}
	return event
}
