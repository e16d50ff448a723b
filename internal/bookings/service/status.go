package service

import (
	bookingserrors "bookly/internal/bookings/errors"
	"bookly/internal/bookings/repository"
	"bookly/internal/bookings/validator"
	apperrors "bookly/pkg/errors"
	"bookly/pkg/logger"
	"bookly/pkg/model"
	"context"
	"errors"
	"fmt"
)

// StatusService applies status changes reported by collaborators after a
// booking was created. Flags only ever move forward and hooks are appended.
type StatusService struct {
	repo      repository.BookingRepository
	validator *validator.StatusValidator
	log       *logger.Logger
}

func NewStatusService(repo repository.BookingRepository, validator *validator.StatusValidator, log *logger.Logger) *StatusService {
	return &StatusService{
		repo:      repo,
		validator: validator,
		log:       log,
	}
}

func (s *StatusService) Apply(ctx context.Context, cmd *model.StatusCommand) (*model.Booking, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, apperrors.Validation("Invalid status command", map[string]any{"error": err.Error()})
	}

	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.apply(txCtx, cmd)
		return err
	})
	if err != nil {
		return nil, s.mapError(cmd, err)
	}

	s.log.Info("Booking status updated",
		"tenant", cmd.Tenant,
		"booking_id", cmd.BookingID,
		"action", string(cmd.Action),
		"is_payed", booking.IsPayed,
		"is_committed", booking.IsCommitted,
		"is_rejected", booking.IsRejected,
	)
	return booking, nil
}

func (s *StatusService) apply(ctx context.Context, cmd *model.StatusCommand) (*model.Booking, error) {
	yes := true

	switch cmd.Action {
	case model.ActionPaymentCompleted:
		update := model.BookingStatusUpdate{IsPayed: &yes}
		payload := map[string]any{}
		if cmd.PaymentMethod != "" {
			update.PaymentMethod = &cmd.PaymentMethod
			payload["paymentMethod"] = cmd.PaymentMethod
		}
		if _, err := s.repo.UpdateStatus(ctx, cmd.Tenant, cmd.BookingID, update); err != nil {
			return nil, err
		}
		return s.repo.AppendHook(ctx, cmd.Tenant, cmd.BookingID, model.NewHook(model.HookPaymentCompleted, payload))

	case model.ActionCommit:
		return s.repo.UpdateStatus(ctx, cmd.Tenant, cmd.BookingID, model.BookingStatusUpdate{IsCommitted: &yes})

	case model.ActionReject:
		return s.repo.UpdateStatus(ctx, cmd.Tenant, cmd.BookingID, model.BookingStatusUpdate{IsRejected: &yes})

	case model.ActionRequestRejection:
		hook := model.NewHook(model.HookRequestRejection, map[string]any{"reason": cmd.Reason})
		return s.repo.AppendHook(ctx, cmd.Tenant, cmd.BookingID, hook)
	}

	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrUnknownAction, cmd.Action)
}

func (s *StatusService) mapError(cmd *model.StatusCommand, err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", cmd.BookingID)
	case errors.Is(err, bookingserrors.ErrUnknownAction), errors.Is(err, bookingserrors.ErrEmptyStatusUpdate):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Timeout("Status update timed out")
	}

	s.log.Error("Failed to apply booking status",
		"tenant", cmd.Tenant,
		"booking_id", cmd.BookingID,
		"action", string(cmd.Action),
		"error", err,
	)
	return apperrors.Internal("Failed to update booking status", err)
}
