package handler

import (
	"net/http"

	"wanderlust/internal/bookings/service"
	"wanderlust/internal/bookings/validator"
	httputil "wanderlust/pkg/http"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/middleware"
	"wanderlust/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, validator *validator.BookingValidator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	checkIn, checkOut, err := h.validator.Validate(&req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.RequestBooking(r.Context(), req.ListingID, middleware.UserIDFromContext(r.Context()), checkIn, checkOut)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking, "Booking confirmed successfully!"); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Mine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.ListByUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "Mine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.CancelBooking(r.Context(), ps.ByName("id"), middleware.UserIDFromContext(r.Context())); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccessMessage(w, nil, "Booking cancelled successfully."); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccessMessage", "error", err)
	}
}

// BookedRanges is public: the listing page shows taken dates to everyone.
func (h *BookingHandler) BookedRanges(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ranges, err := h.service.BookedRanges(r.Context(), ps.ByName("listingId"))
	if err != nil {
		h.writeError(w, "BookedRanges", err)
		return
	}

	if err := httputil.WriteSuccess(w, ranges); err != nil {
		h.log.Error("failed to write success response", "handler", "BookedRanges", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", middleware.RequireUser(h.Create))
	router.GET("/api/v1/bookings/mine", middleware.RequireUser(h.Mine))
	router.GET("/api/v1/bookings/id/:id", middleware.RequireUser(h.GetByID))
	router.DELETE("/api/v1/bookings/id/:id", middleware.RequireUser(h.Cancel))
	router.GET("/api/v1/bookings/listing/:listingId/ranges", h.BookedRanges)
}
