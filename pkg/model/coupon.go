package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

type Coupon struct {
	MongoID primitive.ObjectID `json:"-" bson:"_id,omitempty"`

	ID         string     `json:"id" bson:"id"`
	Tenant     string     `json:"tenant" bson:"tenant"`
	Type       CouponType `json:"type" bson:"type"`
	Discount   float64    `json:"discount" bson:"discount"`
	UsedAmount int        `json:"usedAmount" bson:"used_amount"`
	MaxAmount  *int       `json:"maxAmount,omitempty" bson:"max_amount,omitempty"`
	ValidFrom  *time.Time `json:"validFrom,omitempty" bson:"valid_from,omitempty"`
	ValidTo    *time.Time `json:"validTo,omitempty" bson:"valid_to,omitempty"`
}

func (c *Coupon) IsExhausted() bool {
	return c.MaxAmount != nil && c.UsedAmount >= *c.MaxAmount
}

func (c *Coupon) IsValidAt(t time.Time) bool {
	if c.ValidFrom != nil && t.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && t.After(*c.ValidTo) {
		return false
	}
	return true
}

func (c *Coupon) Snapshot() *CouponSnapshot {
	return &CouponSnapshot{
		ID:       c.ID,
		Type:     c.Type,
		Discount: c.Discount,
	}
}
