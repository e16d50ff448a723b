// Package pricing computes line-item prices and applies coupons and free-booking
// entitlements. Money is computed with decimals and rounded to cents.
package pricing

import (
	couponserrors "bookly/internal/coupons/errors"
	"bookly/internal/permissions"
	apperrors "bookly/pkg/errors"
	"bookly/pkg/model"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	minutesPerHour = decimal.NewFromInt(60)
	minutesPerDay  = decimal.NewFromInt(1440)
)

// Multiplier is the number of billable units of one item for the window. A missing
// window bills one unit regardless of category.
func Multiplier(category model.PriceCategory, begin, end *time.Time) decimal.Decimal {
	if begin == nil || end == nil {
		return decimal.NewFromInt(1)
	}
	minutes := decimal.NewFromFloat(end.Sub(*begin).Minutes())
	if minutes.IsNegative() {
		minutes = decimal.Zero
	}

	switch category {
	case model.PricePerHour:
		return minutes.Div(minutesPerHour)
	case model.PricePerDay:
		return minutes.Div(minutesPerDay)
	default:
		return decimal.NewFromInt(1)
	}
}

// RegularPrice is priceEur * multiplier * amount, never negative.
func RegularPrice(b *model.Bookable, begin, end *time.Time, amount int) float64 {
	price := decimal.NewFromFloat(b.PriceEur).
		Mul(Multiplier(b.PriceCategory, begin, end)).
		Mul(decimal.NewFromInt(int64(amount)))
	return toEur(floorZero(price))
}

// GrossPrice adds value added tax given in percent.
func GrossPrice(net, vatPercent float64) float64 {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(vatPercent).Div(hundred))
	return toEur(decimal.NewFromFloat(net).Mul(factor))
}

// Discount applies a coupon to a price. Results below zero are floored at zero.
func Discount(price float64, coupon *model.Coupon) float64 {
	if coupon == nil {
		return price
	}
	p := decimal.NewFromFloat(price)
	d := decimal.NewFromFloat(coupon.Discount)

	switch coupon.Type {
	case model.CouponPercentage:
		p = p.Mul(decimal.NewFromInt(1).Sub(d.Div(hundred)))
	case model.CouponFixed:
		p = p.Sub(d)
	}
	return toEur(floorZero(p))
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func toEur(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

type CouponStore interface {
	GetByID(ctx context.Context, tenant, id string) (*model.Coupon, error)
	IncrementUsage(ctx context.Context, tenant, id string) error
}

type Engine struct {
	coupons CouponStore
	oracle  permissions.Oracle
	now     func() time.Time
}

func NewEngine(coupons CouponStore, oracle permissions.Oracle) *Engine {
	return &Engine{coupons: coupons, oracle: oracle, now: time.Now}
}

// IsFreeBooking reports whether the user is entitled to book the bookable for free.
func (e *Engine) IsFreeBooking(ctx context.Context, userID string, b *model.Bookable) (bool, error) {
	return permissions.UserInRoles(ctx, e.oracle, b.Tenant, userID, b.FreeBookingUsers, b.FreeBookingRoles)
}

// ResolveCoupon loads the coupon and checks that it can still be used. An empty code
// resolves to no coupon.
func (e *Engine) ResolveCoupon(ctx context.Context, tenant, code string) (*model.Coupon, error) {
	if code == "" {
		return nil, nil
	}

	coupon, err := e.coupons.GetByID(ctx, tenant, code)
	if err != nil {
		if errors.Is(err, couponserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Coupon", code)
		}
		return nil, fmt.Errorf("load coupon: %w", err)
	}

	if !coupon.IsValidAt(e.now()) {
		return nil, apperrors.Rejected(apperrors.ReasonCouponInvalid, "The coupon is not valid at this time").
			WithDetails(map[string]any{"coupon": code})
	}
	if coupon.IsExhausted() {
		return nil, apperrors.Rejected(apperrors.ReasonCouponInvalid, "The coupon has already been used up").
			WithDetails(map[string]any{"coupon": code})
	}
	return coupon, nil
}

// UserPrice is the net price the user pays for a line. Free-booking entitlement wins over
// any coupon.
func (e *Engine) UserPrice(ctx context.Context, userID string, b *model.Bookable, coupon *model.Coupon, regular float64) (float64, error) {
	free, err := e.IsFreeBooking(ctx, userID, b)
	if err != nil {
		return 0, fmt.Errorf("resolve free booking: %w", err)
	}
	if free {
		return 0, nil
	}
	return Discount(regular, coupon), nil
}

// Quote computes all four prices of one line for a user who already has a known
// free-booking entitlement.
func Quote(b *model.Bookable, begin, end *time.Time, amount int, coupon *model.Coupon, free bool) model.PriceQuote {
	regular := RegularPrice(b, begin, end, amount)
	user := 0.0
	if !free {
		user = Discount(regular, coupon)
	}
	return model.PriceQuote{
		RegularPriceEur:      regular,
		RegularGrossPriceEur: GrossPrice(regular, b.PriceValueAddedTax),
		UserPriceEur:         user,
		UserGrossPriceEur:    GrossPrice(user, b.PriceValueAddedTax),
	}
}

// Totals sums line quotes. VAT is the difference between gross and net user prices.
type Totals struct {
	NetEur   float64
	GrossEur float64
	VatEur   float64
}

func Sum(quotes []model.PriceQuote) Totals {
	net, gross := decimal.Zero, decimal.Zero
	for _, q := range quotes {
		net = net.Add(decimal.NewFromFloat(q.UserPriceEur))
		gross = gross.Add(decimal.NewFromFloat(q.UserGrossPriceEur))
	}
	return Totals{
		NetEur:   toEur(net),
		GrossEur: toEur(gross),
		VatEur:   toEur(floorZero(gross.Sub(net))),
	}
}

// Quote resolves the free-booking entitlement of the user and prices one line.
func (e *Engine) Quote(ctx context.Context, userID string, b *model.Bookable, begin, end *time.Time, amount int, coupon *model.Coupon) (model.PriceQuote, error) {
	free, err := e.IsFreeBooking(ctx, userID, b)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("resolve free booking: %w", err)
	}
	return Quote(b, begin, end, amount, coupon, free), nil
}

// ApplyCoupon records one use of the coupon. It must be called once per booking, inside
// the transaction that stores the booking.
func (e *Engine) ApplyCoupon(ctx context.Context, coupon *model.Coupon) error {
	if coupon == nil {
		return nil
	}
	if err := e.coupons.IncrementUsage(ctx, coupon.Tenant, coupon.ID); err != nil {
		if errors.Is(err, couponserrors.ErrUsageExhausted) {
			return apperrors.Rejected(apperrors.ReasonCouponInvalid, "The coupon has already been used up").
				WithDetails(map[string]any{"coupon": coupon.ID})
		}
		return fmt.Errorf("apply coupon: %w", err)
	}
	return nil
}
