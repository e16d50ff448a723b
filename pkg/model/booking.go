package model

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HookType string

const (
	HookRequestRejection HookType = "REQUEST_REJECTION"
	HookPaymentCompleted HookType = "PAYMENT_COMPLETED"
)

// Hook is a typed side-channel event attached to a booking. Hooks are only ever appended.
type Hook struct {
	ID        string         `json:"id" bson:"id"`
	Type      HookType       `json:"type" bson:"type"`
	Payload   map[string]any `json:"payload,omitempty" bson:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
}

type BookingItem struct {
	BookableID           string       `json:"bookableId" bson:"bookable_id"`
	Amount               int          `json:"amount" bson:"amount"`
	BookableUsed         *Bookable    `json:"_bookableUsed,omitempty" bson:"_bookable_used,omitempty"`
	RegularPriceEur      float64      `json:"regularPriceEur" bson:"regular_price_eur"`
	RegularGrossPriceEur float64      `json:"regularGrossPriceEur" bson:"regular_gross_price_eur"`
	UserPriceEur         float64      `json:"userPriceEur" bson:"user_price_eur"`
	UserGrossPriceEur    float64      `json:"userGrossPriceEur" bson:"user_gross_price_eur"`
	Attachments          []Attachment `json:"_attachments,omitempty" bson:"_attachments,omitempty"`
}

type LockerAssignment struct {
	BookableID string `json:"bookableId" bson:"bookable_id"`
	UnitID     string `json:"unitId" bson:"unit_id"`
	UnitName   string `json:"unitName" bson:"unit_name"`
}

type CouponSnapshot struct {
	ID       string     `json:"id" bson:"id"`
	Type     CouponType `json:"type" bson:"type"`
	Discount float64    `json:"discount" bson:"discount"`
}

type Booking struct {
	MongoID primitive.ObjectID `json:"-" bson:"_id,omitempty"`

	// ID is the human-readable booking reference, unique per tenant.
	ID             string `json:"id" bson:"id"`
	Tenant         string `json:"tenant" bson:"tenant"`
	AssignedUserID string `json:"assignedUserId,omitempty" bson:"assigned_user_id,omitempty"`
	Name           string `json:"name,omitempty" bson:"name,omitempty"`
	Mail           string `json:"mail,omitempty" bson:"mail,omitempty"`
	Phone          string `json:"phone,omitempty" bson:"phone,omitempty"`
	Comment        string `json:"comment,omitempty" bson:"comment,omitempty"`

	TimeBegin *time.Time `json:"timeBegin,omitempty" bson:"time_begin,omitempty"`
	TimeEnd   *time.Time `json:"timeEnd,omitempty" bson:"time_end,omitempty"`

	BookableItems []BookingItem `json:"bookableItems" bson:"bookable_items"`

	PriceEur       float64 `json:"priceEur" bson:"price_eur"`
	NetPriceEur    float64 `json:"netPriceEur" bson:"net_price_eur"`
	VatIncludedEur float64 `json:"vatIncludedEur" bson:"vat_included_eur"`

	IsCommitted   bool   `json:"isCommitted" bson:"is_committed"`
	IsPayed       bool   `json:"isPayed" bson:"is_payed"`
	IsRejected    bool   `json:"isRejected" bson:"is_rejected"`
	PaymentMethod string `json:"paymentMethod,omitempty" bson:"payment_method,omitempty"`

	Hooks      []Hook             `json:"hooks" bson:"hooks"`
	CouponUsed *CouponSnapshot    `json:"_couponUsed,omitempty" bson:"_coupon_used,omitempty"`
	LockerInfo []LockerAssignment `json:"lockerInfo,omitempty" bson:"locker_info,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

func NewHook(hookType HookType, payload map[string]any) Hook {
	return Hook{
		ID:        uuid.New().String(),
		Type:      hookType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// AddHook appends a hook and returns it.
func (b *Booking) AddHook(hookType HookType, payload map[string]any) Hook {
	hook := NewHook(hookType, payload)
	b.Hooks = append(b.Hooks, hook)
	return hook
}

// AmountFor sums the line-item amounts referencing the given bookable.
func (b *Booking) AmountFor(bookableID string) int {
	total := 0
	for _, item := range b.BookableItems {
		if item.BookableID == bookableID {
			total += item.Amount
		}
	}
	return total
}

func (b *Booking) References(bookableID string) bool {
	for _, item := range b.BookableItems {
		if item.BookableID == bookableID {
			return true
		}
	}
	return false
}

// BookingStatusUpdate is the write-back shape used by payment and workflow collaborators.
type BookingStatusUpdate struct {
	IsCommitted   *bool   `json:"isCommitted,omitempty"`
	IsPayed       *bool   `json:"isPayed,omitempty"`
	IsRejected    *bool   `json:"isRejected,omitempty"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
}

type StatusAction string

const (
	ActionPaymentCompleted StatusAction = "payment_completed"
	ActionCommit           StatusAction = "commit"
	ActionReject           StatusAction = "reject"
	ActionRequestRejection StatusAction = "request_rejection"
)

// StatusCommand is the payload of a booking status message sent by payment
// and workflow collaborators.
type StatusCommand struct {
	Tenant        string       `json:"tenant" validate:"required,tenant_id"`
	BookingID     string       `json:"bookingId" validate:"required,max=64"`
	Action        StatusAction `json:"action" validate:"required,oneof=payment_completed commit reject request_rejection"`
	PaymentMethod string       `json:"paymentMethod,omitempty" validate:"omitempty,max=64"`
	Reason        string       `json:"reason,omitempty" validate:"omitempty,max=500"`
}
