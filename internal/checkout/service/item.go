package service

import (
	"bookly/internal/availability"
	bookableserrors "bookly/internal/bookables/errors"
	"bookly/internal/hierarchy"
	"bookly/internal/openinghours"
	"bookly/internal/permissions"
	apperrors "bookly/pkg/errors"
	"bookly/pkg/model"
	"context"
	"errors"
	"fmt"
	"time"
)

// checkoutEnv is the state shared by all items of one request. It is loaded once so every
// item sees the same hierarchy and tenant settings.
type checkoutEnv struct {
	tenant string
	userID string
	config *model.TenantConfig
	loc    *time.Location
	graph  *hierarchy.Graph
	begin  *time.Time
	end    *time.Time
	now    time.Time
}

// ItemCheckout validates and prices one bookable item of a request.
type ItemCheckout struct {
	svc      *CheckoutService
	env      *checkoutEnv
	bookable *model.Bookable
	amount   int
	pending  availability.Pending
}

type itemStep struct {
	name string
	run  func(ctx context.Context) error
}

func (s *CheckoutService) newItemCheckout(env *checkoutEnv, bookable *model.Bookable, amount int, pending availability.Pending) *ItemCheckout {
	return &ItemCheckout{
		svc:      s,
		env:      env,
		bookable: bookable,
		amount:   amount,
		pending:  pending,
	}
}

func (c *ItemCheckout) steps() []itemStep {
	return []itemStep{
		{"permission", c.checkPermission},
		{"opening_hours", c.checkOpeningHours},
		{"duration", c.checkDuration},
		{"availability", c.checkAvailability},
		{"event_seats", c.checkEventSeats},
		{"parent_availability", c.checkParentAvailability},
		{"child_bookings", c.checkChildBookings},
		{"max_advance", c.checkMaxAdvance},
	}
}

// Validate runs every checkout rule in order and stops at the first failure.
func (c *ItemCheckout) Validate(ctx context.Context) error {
	if err := c.checkRequiredFields(); err != nil {
		return err
	}

	for _, step := range c.steps() {
		if err := step.run(ctx); err != nil {
			c.svc.cfg.Log.Debug("Item rejected",
				"tenant", c.env.tenant,
				"bookable_id", c.bookable.ID,
				"step", step.name,
				"error", err,
			)
			return err
		}
	}
	return nil
}

// Price computes the line prices. The coupon is ignored when the user books for free.
func (c *ItemCheckout) Price(ctx context.Context, coupon *model.Coupon) (model.PriceQuote, error) {
	return c.svc.deps.Pricing.Quote(ctx, c.env.userID, c.bookable, c.env.begin, c.env.end, c.amount, coupon)
}

func (c *ItemCheckout) request() availability.Request {
	return availability.Request{
		Bookable: c.bookable,
		Begin:    c.env.begin,
		End:      c.env.end,
		Amount:   c.amount,
		Pending:  c.pending,
	}
}

func (c *ItemCheckout) checkRequiredFields() error {
	if c.bookable.IsTimeRelated() && (c.env.begin == nil || c.env.end == nil) {
		return apperrors.Rejected(apperrors.ReasonMissingFields,
			fmt.Sprintf("%s requires timeBegin and timeEnd", c.bookable.Title)).
			WithDetails(map[string]any{"bookable_id": c.bookable.ID})
	}
	return nil
}

func (c *ItemCheckout) checkPermission(ctx context.Context) error {
	b := c.bookable
	if !b.IsBookable {
		return apperrors.Rejected(apperrors.ReasonNotBookable,
			fmt.Sprintf("%s cannot be booked", b.Title)).
			WithDetails(map[string]any{"bookable_id": b.ID})
	}

	if c.env.userID != "" {
		admin, err := c.svc.deps.Oracle.HasPermission(ctx, c.env.userID, c.env.tenant, model.ResourceBookables, model.AccessAny)
		if err != nil {
			return fmt.Errorf("check bookable permission: %w", err)
		}
		if admin {
			return nil
		}
	}

	denied := apperrors.Rejected(apperrors.ReasonPermissionDenied,
		fmt.Sprintf("You are not allowed to book %s", b.Title)).
		WithDetails(map[string]any{"bookable_id": b.ID})

	if !b.IsPublic && c.env.userID == "" {
		return denied
	}
	if len(b.PermittedUsers) == 0 && len(b.PermittedRoles) == 0 {
		return nil
	}

	permitted, err := permissions.UserInRoles(ctx, c.svc.deps.Oracle, c.env.tenant, c.env.userID, b.PermittedUsers, b.PermittedRoles)
	if err != nil {
		return fmt.Errorf("check permitted roles: %w", err)
	}
	if !permitted {
		return denied
	}
	return nil
}

func (c *ItemCheckout) checkOpeningHours(context.Context) error {
	if c.env.begin == nil || c.env.end == nil || c.bookable.IsLongRange {
		return nil
	}

	conflict, err := openinghours.ConflictsInGraph(c.env.graph, c.svc.deps.Hierarchy.AncestorDepth(),
		c.bookable, *c.env.begin, *c.env.end, c.env.loc)
	if err != nil {
		return fmt.Errorf("evaluate opening hours: %w", err)
	}
	if conflict {
		return apperrors.Rejected(apperrors.ReasonOutsideOpeningHours,
			fmt.Sprintf("%s is closed during the requested time", c.bookable.Title)).
			WithDetails(map[string]any{"bookable_id": c.bookable.ID})
	}
	return nil
}

func (c *ItemCheckout) checkDuration(context.Context) error {
	if c.env.begin == nil || c.env.end == nil {
		return nil
	}
	b := c.bookable
	hours := c.env.end.Sub(*c.env.begin).Hours()

	if b.MinBookingDuration != nil && hours < *b.MinBookingDuration {
		return apperrors.Rejected(apperrors.ReasonDurationOutOfBounds,
			fmt.Sprintf("%s must be booked for at least %g hours", b.Title, *b.MinBookingDuration)).
			WithDetails(map[string]any{"bookable_id": b.ID, "hours": hours})
	}
	if b.MaxBookingDuration != nil && hours > *b.MaxBookingDuration {
		return apperrors.Rejected(apperrors.ReasonDurationOutOfBounds,
			fmt.Sprintf("%s can be booked for at most %g hours", b.Title, *b.MaxBookingDuration)).
			WithDetails(map[string]any{"bookable_id": b.ID, "hours": hours})
	}
	return nil
}

func (c *ItemCheckout) checkAvailability(ctx context.Context) error {
	return c.svc.deps.Checker.CheckAvailability(ctx, c.request())
}

func (c *ItemCheckout) checkEventSeats(ctx context.Context) error {
	err := c.svc.deps.Checker.CheckEventSeats(ctx, c.request())
	if errors.Is(err, bookableserrors.ErrEventNotFound) {
		return apperrors.NotFoundWithID("Event", c.bookable.EventID)
	}
	return err
}

func (c *ItemCheckout) checkParentAvailability(ctx context.Context) error {
	return c.svc.deps.Checker.CheckParentAvailability(ctx, c.env.graph, c.request())
}

func (c *ItemCheckout) checkChildBookings(ctx context.Context) error {
	return c.svc.deps.Checker.CheckChildBookings(ctx, c.env.graph, c.request())
}

func (c *ItemCheckout) checkMaxAdvance(context.Context) error {
	months := 0
	if c.env.config != nil {
		months = c.env.config.MaxBookingMonths
	}
	if months <= 0 || c.env.begin == nil {
		return nil
	}

	limit := c.env.now.AddDate(0, months, 0)
	if c.env.begin.After(limit) {
		return apperrors.Rejected(apperrors.ReasonTooFarInAdvance,
			fmt.Sprintf("Bookings can be made at most %d months in advance", months)).
			WithDetails(map[string]any{"bookable_id": c.bookable.ID, "max_booking_months": months})
	}
	return nil
}
