package service

import (
	"bookly/internal/availability"
	bookableserrors "bookly/internal/bookables/errors"
	bookablesrepo "bookly/internal/bookables/repository"
	bookingserrors "bookly/internal/bookings/errors"
	bookingsrepo "bookly/internal/bookings/repository"
	"bookly/internal/checkout/validator"
	"bookly/internal/hierarchy"
	"bookly/internal/lockers"
	"bookly/internal/openinghours"
	"bookly/internal/permissions"
	"bookly/internal/pricing"
	tenantserrors "bookly/internal/tenants/errors"
	tenantsrepo "bookly/internal/tenants/repository"
	"bookly/pkg/config"
	apperrors "bookly/pkg/errors"
	"bookly/pkg/lock"
	"bookly/pkg/model"
	"context"
	"errors"
	"fmt"
	"time"
)

type Mode int

const (
	ModeAutomatic Mode = iota
	ModeManual
)

func (m Mode) String() string {
	if m == ModeManual {
		return "manual"
	}
	return "automatic"
}

// storeAttempts bounds retries when a generated reference loses an insert race.
const storeAttempts = 2

type EventPublisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
}

type Dependencies struct {
	Bookables    bookablesrepo.BookableRepository
	Bookings     bookingsrepo.BookingRepository
	Tenants      tenantsrepo.TenantRepository
	Hierarchy    *hierarchy.Resolver
	Checker      *availability.Checker
	Pricing      *pricing.Engine
	Oracle       permissions.Oracle
	Lockers      lockers.Service
	Locks        *lock.Manager
	Zones        *openinghours.Zones
	OpeningHours *openinghours.Validator
	References   *ReferenceGenerator
	Validator    *validator.CheckoutValidator
	// Publisher is optional.
	Publisher EventPublisher
}

type CheckoutService struct {
	deps Dependencies
	cfg  *config.Config
	now  func() time.Time
}

func NewCheckoutService(cfg *config.Config, deps Dependencies) *CheckoutService {
	return &CheckoutService{
		deps: deps,
		cfg:  cfg,
		now:  time.Now,
	}
}

// ValidateItem runs the full rule set for a single item and returns its prices.
func (s *CheckoutService) ValidateItem(ctx context.Context, req *model.ItemQuoteRequest) (*model.PriceQuote, error) {
	if err := s.deps.Validator.ValidateQuote(req); err != nil {
		s.cfg.Log.Warn("Item quote validation failed", "tenant", req.Tenant, "error", err)
		return nil, invalidRequest(err)
	}

	env, err := s.loadEnv(ctx, req.Tenant, req.UserID, req.TimeBegin, req.TimeEnd)
	if err != nil {
		return nil, s.mapError(err, "Failed to load checkout data", "tenant", req.Tenant)
	}
	b, err := env.bookable(req.BookableID)
	if err != nil {
		return nil, err
	}

	item := s.newItemCheckout(env, b, req.Amount, nil)
	if err := item.Validate(ctx); err != nil {
		return nil, s.mapError(err, "Failed to validate booking item", "tenant", req.Tenant, "bookable_id", b.ID)
	}

	quotes, _, err := s.priceItems(ctx, env, []*ItemCheckout{item}, req.CouponCode)
	if err != nil {
		return nil, s.mapError(err, "Failed to price booking item", "tenant", req.Tenant, "bookable_id", b.ID)
	}
	return &quotes[0], nil
}

// RelatedOpeningHours returns the merged opening hours of a bookable and its ancestors.
func (s *CheckoutService) RelatedOpeningHours(ctx context.Context, tenant, bookableID string) (*model.OpeningCalendar, error) {
	b, err := s.deps.Bookables.GetByID(ctx, tenant, bookableID)
	if err != nil {
		if errors.Is(err, bookableserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Bookable", bookableID)
		}
		return nil, s.mapError(err, "Failed to load bookable", "tenant", tenant, "bookable_id", bookableID)
	}

	calendar, err := s.deps.OpeningHours.RelatedOpeningHours(ctx, b)
	if err != nil {
		return nil, s.mapError(err, "Failed to merge opening hours", "tenant", tenant, "bookable_id", bookableID)
	}
	return calendar, nil
}

func (s *CheckoutService) loadEnv(ctx context.Context, tenant, userID string, begin, end *time.Time) (*checkoutEnv, error) {
	tc, err := s.deps.Tenants.GetConfig(ctx, tenant)
	if err != nil {
		if !errors.Is(err, tenantserrors.ErrNotFound) {
			return nil, fmt.Errorf("load tenant config: %w", err)
		}
		tc = &model.TenantConfig{Tenant: tenant}
	}

	g, err := s.deps.Hierarchy.Graph(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("load bookable hierarchy: %w", err)
	}

	return &checkoutEnv{
		tenant: tenant,
		userID: userID,
		config: tc,
		loc:    s.deps.Zones.For(tc),
		graph:  g,
		begin:  begin,
		end:    end,
		now:    s.now(),
	}, nil
}

func (e *checkoutEnv) bookable(id string) (*model.Bookable, error) {
	b, ok := e.graph.Bookable(id)
	if !ok {
		return nil, apperrors.NotFoundWithID("Bookable", id)
	}
	return b, nil
}

// priceItems prices all lines. The coupon is only resolved when at least one line is not
// free for the user, so an entitled user never fails on a stale coupon code.
func (s *CheckoutService) priceItems(ctx context.Context, env *checkoutEnv, items []*ItemCheckout, code string) ([]model.PriceQuote, *model.Coupon, error) {
	needsCoupon := false
	for _, item := range items {
		free, err := s.deps.Pricing.IsFreeBooking(ctx, env.userID, item.bookable)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve free booking: %w", err)
		}
		if !free {
			needsCoupon = true
			break
		}
	}

	var coupon *model.Coupon
	if needsCoupon {
		var err error
		coupon, err = s.deps.Pricing.ResolveCoupon(ctx, env.tenant, code)
		if err != nil {
			return nil, nil, err
		}
	}

	quotes := make([]model.PriceQuote, len(items))
	for i, item := range items {
		q, err := item.Price(ctx, coupon)
		if err != nil {
			return nil, nil, err
		}
		quotes[i] = q
	}
	return quotes, coupon, nil
}

func invalidRequest(err error) error {
	return apperrors.Rejected(apperrors.ReasonMissingFields, "Checkout request is invalid").
		WithDetails(map[string]any{"error": err.Error()})
}

// mapError passes AppErrors through and turns everything else into a logged internal error.
func (s *CheckoutService) mapError(err error, message string, args ...any) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Timeout("Checkout did not finish in time")
	}
	if errors.Is(err, bookingserrors.ErrInvalidTenant) {
		return apperrors.InvalidInput(err.Error())
	}
	if errors.Is(err, bookingserrors.ErrDuplicateReference) {
		return apperrors.Conflict("Booking reference was taken concurrently, please retry")
	}

	s.cfg.Log.Error(message, append(args, "error", err)...)
	return apperrors.Internal(message, err)
}
