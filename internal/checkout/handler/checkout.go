package handler

import (
	"bookly/internal/checkout/service"
	httputil "bookly/pkg/http"
	"bookly/pkg/logger"
	"bookly/pkg/model"
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// CheckoutService is the part of the checkout service the HTTP layer needs.
type CheckoutService interface {
	ValidateItem(ctx context.Context, req *model.ItemQuoteRequest) (*model.PriceQuote, error)
	CreateBooking(ctx context.Context, req *model.CheckoutRequest, mode service.Mode) (*model.Booking, error)
	RelatedOpeningHours(ctx context.Context, tenant, bookableID string) (*model.OpeningCalendar, error)
}

type CheckoutHandler struct {
	service CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(service CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log,
	}
}

func (h *CheckoutHandler) ValidateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.ItemQuoteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ValidateItem", err)
		return
	}
	req.Tenant = ps.ByName("tenant")
	req.UserID = httputil.UserID(r)

	quote, err := h.service.ValidateItem(r.Context(), &req)
	if err != nil {
		h.writeError(w, "ValidateItem", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "ValidateItem", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) CreateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.create(w, r, ps, service.ModeAutomatic, "CreateBooking")
}

func (h *CheckoutHandler) CreateManualBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.create(w, r, ps, service.ModeManual, "CreateManualBooking")
}

func (h *CheckoutHandler) create(w http.ResponseWriter, r *http.Request, ps httprouter.Params, mode service.Mode, name string) {
	var req model.CheckoutRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, name, err)
		return
	}
	req.Tenant = ps.ByName("tenant")
	req.UserID = httputil.UserID(r)

	booking, err := h.service.CreateBooking(r.Context(), &req, mode)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", name, "operation", "WriteCreated", "error", err)
	}
}

func (h *CheckoutHandler) OpeningHours(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	calendar, err := h.service.RelatedOpeningHours(r.Context(), ps.ByName("tenant"), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "OpeningHours", err)
		return
	}

	if err := httputil.WriteSuccess(w, calendar); err != nil {
		h.log.Error("failed to write success response", "handler", "OpeningHours", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CheckoutHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/tenants/:tenant/checkout/items/validate", h.ValidateItem)
	router.POST("/api/v1/tenants/:tenant/checkout/bookings", h.CreateBooking)
	router.POST("/api/v1/tenants/:tenant/checkout/bookings/manual", h.CreateManualBooking)
	router.GET("/api/v1/tenants/:tenant/bookables/:id/opening-hours", h.OpeningHours)
}
