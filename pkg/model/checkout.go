package model

import "time"

type CheckoutItem struct {
	BookableID string `json:"bookableId" validate:"required,max=128"`
	Amount     int    `json:"amount" validate:"required,min=1,max=10000"`
}

// CheckoutOverrides replace derived status fields of a manual booking when set.
type CheckoutOverrides struct {
	IsCommitted   *bool   `json:"isCommitted,omitempty"`
	IsPayed       *bool   `json:"isPayed,omitempty"`
	IsRejected    *bool   `json:"isRejected,omitempty"`
	PaymentMethod *string `json:"paymentMethod,omitempty" validate:"omitempty,max=64"`
}

// CheckoutRequest asks for one booking of a bundle of items sharing one time window.
type CheckoutRequest struct {
	Tenant string `json:"-" validate:"required,tenant_id"`
	UserID string `json:"-" validate:"max=128"`

	TimeBegin *time.Time `json:"timeBegin,omitempty"`
	TimeEnd   *time.Time `json:"timeEnd,omitempty"`

	Items []CheckoutItem `json:"bookableItems" validate:"required,min=1,max=50,dive"`

	AssignedUserID string `json:"assignedUserId,omitempty" validate:"max=128"`
	Name           string `json:"name,omitempty" validate:"max=200"`
	Mail           string `json:"mail,omitempty" validate:"omitempty,email"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,e164"`
	Comment        string `json:"comment,omitempty" validate:"max=2000"`
	CouponCode     string `json:"couponCode,omitempty" validate:"max=64"`

	Overrides CheckoutOverrides `json:"overrides"`
}

// ItemQuoteRequest asks for the price of a single item without booking it.
type ItemQuoteRequest struct {
	Tenant string `json:"-" validate:"required,tenant_id"`
	UserID string `json:"-" validate:"max=128"`

	BookableID string     `json:"bookableId" validate:"required,max=128"`
	Amount     int        `json:"amount" validate:"required,min=1,max=10000"`
	TimeBegin  *time.Time `json:"timeBegin,omitempty"`
	TimeEnd    *time.Time `json:"timeEnd,omitempty"`
	CouponCode string     `json:"couponCode,omitempty" validate:"max=64"`
}
