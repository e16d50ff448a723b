package handler

import (
	apperrors "bookly/pkg/errors"
	"bookly/pkg/kafka"
	"bookly/pkg/logger"
	"bookly/pkg/model"
	"context"
	"errors"
	"net/http"
)

type StatusService interface {
	Apply(ctx context.Context, cmd *model.StatusCommand) (*model.Booking, error)
}

// StatusHandler consumes booking status messages. Refusals are permanent so
// they go straight to the dead-letter topic; store failures are retried.
type StatusHandler struct {
	service StatusService
	log     *logger.Logger
}

func NewStatusHandler(service StatusService, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		service: service,
		log:     log,
	}
}

func (h *StatusHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var cmd model.StatusCommand
	if err := msg.DecodeValue(&cmd); err != nil {
		return err
	}

	if cmd.Tenant == "" && cmd.BookingID == "" {
		return kafka.NewPermanentError("status message carries no booking", nil)
	}

	if _, err := h.service.Apply(ctx, &cmd); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
			return kafka.NewPermanentError("status command refused", err)
		}
		return kafka.NewTransientError("status command failed", err)
	}

	h.log.Debug("Status message applied",
		"handler", "status",
		"event_id", msg.GetEventID(),
		"booking_id", cmd.BookingID,
		"action", string(cmd.Action),
	)
	return nil
}
