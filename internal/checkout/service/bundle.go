package service

import (
	"bookly/internal/availability"
	bookingserrors "bookly/internal/bookings/errors"
	"bookly/internal/pricing"
	apperrors "bookly/pkg/errors"
	"bookly/pkg/lock"
	"bookly/pkg/model"
	"bookly/pkg/sanitizer"
	"context"
	"errors"
	"fmt"
)

// CreateBooking validates, prices and stores one booking for all requested items. Slot
// locks on every affected bookable are held from the first availability read until the
// booking is stored. In manual mode the checkout rules are skipped and overrides apply.
func (s *CheckoutService) CreateBooking(ctx context.Context, req *model.CheckoutRequest, mode Mode) (*model.Booking, error) {
	s.sanitize(req)
	if err := s.deps.Validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Checkout request validation failed", "tenant", req.Tenant, "error", err)
		return nil, invalidRequest(err)
	}

	if mode == ModeManual {
		if err := s.authorizeManual(ctx, req.Tenant, req.UserID); err != nil {
			return nil, err
		}
	}

	env, err := s.loadEnv(ctx, req.Tenant, req.UserID, req.TimeBegin, req.TimeEnd)
	if err != nil {
		return nil, s.mapError(err, "Failed to load checkout data", "tenant", req.Tenant)
	}

	bookables := make([]*model.Bookable, len(req.Items))
	for i, it := range req.Items {
		if bookables[i], err = env.bookable(it.BookableID); err != nil {
			return nil, err
		}
	}

	held, err := s.deps.Locks.Acquire(ctx, s.lockKeys(env, bookables))
	if err != nil {
		return nil, s.mapError(err, "Failed to acquire booking locks", "tenant", req.Tenant)
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil {
			s.cfg.Log.Warn("Failed to release booking locks",
				"tenant", req.Tenant,
				"keys", held.Keys(),
				"error", err,
			)
		}
	}()

	pending := availability.Pending{}
	items := make([]*ItemCheckout, len(req.Items))
	for i, it := range req.Items {
		item := s.newItemCheckout(env, bookables[i], it.Amount, pending)
		if mode == ModeAutomatic {
			if err := item.Validate(ctx); err != nil {
				s.cfg.Log.Warn("Checkout rejected",
					"tenant", req.Tenant,
					"bookable_id", it.BookableID,
					"reason", apperrors.ReasonOf(err),
				)
				return nil, s.mapError(err, "Failed to validate booking item", "tenant", req.Tenant, "bookable_id", it.BookableID)
			}
		}
		pending.Add(it.BookableID, it.Amount)
		items[i] = item
	}

	quotes, coupon, err := s.priceItems(ctx, env, items, req.CouponCode)
	if err != nil {
		return nil, s.mapError(err, "Failed to price booking", "tenant", req.Tenant)
	}

	lockerInfo, err := s.assignLockers(ctx, env, items)
	if err != nil {
		return nil, s.mapError(err, "Failed to assign lockers", "tenant", req.Tenant)
	}

	booking := assemble(env, items, quotes, coupon, lockerInfo)
	booking.Name = req.Name
	booking.Mail = req.Mail
	booking.Phone = req.Phone
	booking.Comment = req.Comment
	if mode == ModeManual {
		if req.AssignedUserID != "" {
			booking.AssignedUserID = req.AssignedUserID
		}
		applyOverrides(booking, req.Overrides)
	}

	if err := s.store(ctx, booking, coupon); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"tenant", booking.Tenant,
		"booking_id", booking.ID,
		"mode", mode.String(),
		"items", len(booking.BookableItems),
		"price_eur", booking.PriceEur,
		"coupon", req.CouponCode,
	)

	s.publish(ctx, booking)
	return booking, nil
}

// sanitize normalizes contact data in place. A phone number that cannot be parsed is
// left untouched so the validator reports it.
func (s *CheckoutService) sanitize(req *model.CheckoutRequest) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Mail = sanitizer.NormalizeMail(req.Mail)
	req.Comment = sanitizer.NormalizeComment(req.Comment)
	if phone := sanitizer.NormalizePhone(req.Phone, s.cfg.PhoneRegion); phone != "" {
		req.Phone = phone
	}
	for i := range req.Items {
		req.Items[i].BookableID = sanitizer.TrimAndNormalize(req.Items[i].BookableID)
	}
}

// authorizeManual allows manual bookings only for users managing all bookings of the tenant.
func (s *CheckoutService) authorizeManual(ctx context.Context, tenant, userID string) error {
	if userID == "" {
		return apperrors.Forbidden("Manual bookings require an authenticated user")
	}
	allowed, err := s.deps.Oracle.HasPermission(ctx, userID, tenant, model.ResourceBookings, model.AccessAny)
	if err != nil {
		return s.mapError(err, "Failed to check booking permission", "tenant", tenant, "user_id", userID)
	}
	if !allowed {
		s.cfg.Log.Warn("Manual booking denied", "tenant", tenant, "user_id", userID)
		return apperrors.Forbidden("You are not allowed to create manual bookings")
	}
	return nil
}

// lockKeys covers every bookable whose capacity the request reads: the items themselves,
// their ancestors and their descendants. Tickets also lock their event, since the seat
// limit is shared with sibling tickets outside the hierarchy.
func (s *CheckoutService) lockKeys(env *checkoutEnv, bookables []*model.Bookable) []string {
	var keys []string
	add := func(b *model.Bookable) { keys = append(keys, lock.Key(env.tenant, b.ID)) }

	for _, b := range bookables {
		add(b)
		if b.IsTicket() && b.EventID != "" {
			keys = append(keys, lock.EventKey(env.tenant, b.EventID))
		}
		for _, a := range env.graph.Ancestors(b.ID, s.deps.Hierarchy.AncestorDepth()) {
			add(a)
		}
		for _, d := range env.graph.Descendants(b.ID, s.deps.Hierarchy.DescendantDepth()) {
			add(d)
		}
	}
	return keys
}

func (s *CheckoutService) assignLockers(ctx context.Context, env *checkoutEnv, items []*ItemCheckout) ([]model.LockerAssignment, error) {
	var assignments []model.LockerAssignment
	assigned := make(map[string]struct{})

	for _, item := range items {
		b := item.bookable
		if !b.UsesLockers() {
			continue
		}

		units, err := s.deps.Lockers.AvailableUnits(ctx, env.tenant, b.ID, env.begin, env.end, item.amount+len(assigned))
		if err != nil {
			return nil, fmt.Errorf("find locker units: %w", err)
		}

		picked := 0
		for _, unit := range units {
			if picked == item.amount {
				break
			}
			if _, taken := assigned[unit.ID]; taken {
				continue
			}
			assigned[unit.ID] = struct{}{}
			assignments = append(assignments, model.LockerAssignment{
				BookableID: b.ID,
				UnitID:     unit.ID,
				UnitName:   unit.Name,
			})
			picked++
		}

		if picked < item.amount {
			return nil, apperrors.Rejected(apperrors.ReasonLockerUnavailable,
				fmt.Sprintf("Not enough lockers of %s are free", b.Title)).
				WithDetails(map[string]any{"bookable_id": b.ID, "requested": item.amount, "free": picked})
		}
	}
	return assignments, nil
}

func assemble(env *checkoutEnv, items []*ItemCheckout, quotes []model.PriceQuote, coupon *model.Coupon, lockerInfo []model.LockerAssignment) *model.Booking {
	lines := make([]model.BookingItem, len(items))
	committed := true
	for i, item := range items {
		b := item.bookable
		lines[i] = model.BookingItem{
			BookableID:           b.ID,
			Amount:               item.amount,
			BookableUsed:         b.Snapshot(),
			RegularPriceEur:      quotes[i].RegularPriceEur,
			RegularGrossPriceEur: quotes[i].RegularGrossPriceEur,
			UserPriceEur:         quotes[i].UserPriceEur,
			UserGrossPriceEur:    quotes[i].UserGrossPriceEur,
			Attachments:          sendableAttachments(b),
		}
		committed = committed && b.AutoCommitBooking
	}

	totals := pricing.Sum(quotes)
	booking := &model.Booking{
		Tenant:         env.tenant,
		AssignedUserID: env.userID,
		TimeBegin:      env.begin,
		TimeEnd:        env.end,
		BookableItems:  lines,
		PriceEur:       totals.GrossEur,
		NetPriceEur:    totals.NetEur,
		VatIncludedEur: totals.VatEur,
		IsCommitted:    committed,
		IsPayed:        totals.NetEur == 0,
		Hooks:          []model.Hook{},
		LockerInfo:     lockerInfo,
	}
	if coupon != nil {
		booking.CouponUsed = coupon.Snapshot()
	}
	return booking
}

func sendableAttachments(b *model.Bookable) []model.Attachment {
	var out []model.Attachment
	for _, a := range b.Attachments {
		if a.SendWithBooking {
			out = append(out, a)
		}
	}
	return out
}

func applyOverrides(booking *model.Booking, o model.CheckoutOverrides) {
	if o.IsCommitted != nil {
		booking.IsCommitted = *o.IsCommitted
	}
	if o.IsPayed != nil {
		booking.IsPayed = *o.IsPayed
	}
	if o.IsRejected != nil {
		booking.IsRejected = *o.IsRejected
	}
	if o.PaymentMethod != nil {
		booking.PaymentMethod = *o.PaymentMethod
	}
}

// store assigns a reference and persists the booking together with the coupon use.
func (s *CheckoutService) store(ctx context.Context, booking *model.Booking, coupon *model.Coupon) error {
	for attempt := 1; ; attempt++ {
		ref, err := s.deps.References.Unique(ctx, booking.Tenant, s.deps.Bookings.ExistsByID)
		if err != nil {
			return s.mapError(err, "Failed to generate booking reference", "tenant", booking.Tenant)
		}
		booking.ID = ref

		err = s.deps.Bookings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			if err := s.deps.Pricing.ApplyCoupon(txCtx, coupon); err != nil {
				return err
			}
			return s.deps.Bookings.Create(txCtx, booking)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, bookingserrors.ErrDuplicateReference) && attempt < storeAttempts {
			s.cfg.Log.Warn("Booking reference taken concurrently, retrying", "tenant", booking.Tenant, "booking_id", ref)
			continue
		}
		return s.mapError(err, "Failed to store booking", "tenant", booking.Tenant, "booking_id", ref)
	}
}

func (s *CheckoutService) publish(ctx context.Context, booking *model.Booking) {
	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.BookingCreated(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"tenant", booking.Tenant,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
