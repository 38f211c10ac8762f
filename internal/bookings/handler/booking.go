package handler

import (
	"net/http"

	"travelbook/internal/bookings/service"
	"travelbook/pkg/auth"
	apperrors "travelbook/pkg/errors"
	httputil "travelbook/pkg/http"
	"travelbook/pkg/logger"
	"travelbook/pkg/middleware"
	"travelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, auth *middleware.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := h.identity(w, r, "Create")
	if !ok {
		return
	}

	var req model.HotelBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), user, &req)
	if err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.identity(w, r, "GetByID")
	if !ok {
		return
	}

	booking, err := h.service.GetByID(r.Context(), user, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := h.identity(w, r, "ListMine")
	if !ok {
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "ListMine", err)
		return
	}

	bookings, total, err := h.service.ListMine(r.Context(), user, limit, offset)
	if err != nil {
		h.writeError(w, r, "ListMine", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.identity(w, r, "Cancel")
	if !ok {
		return
	}

	booking, err := h.service.Cancel(r.Context(), user, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "Cancel", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, "Booking cancelled", booking); err != nil {
		h.log.Error("failed to write response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.identity(w, r, "Complete")
	if !ok {
		return
	}

	booking, err := h.service.Complete(r.Context(), user, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "Complete", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, "Booking completed", booking); err != nil {
		h.log.Error("failed to write response", "handler", "Complete", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) identity(w http.ResponseWriter, r *http.Request, handler string) (model.Identity, bool) {
	user, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.writeError(w, r, handler, apperrors.Unauthorized("Not authorized, no token"))
	}
	return user, ok
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.FromContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/booking/hotel", h.auth.Authenticate(h.Create))
	router.GET("/booking/hotel", h.auth.Authenticate(h.ListMine))
	router.GET("/booking/hotel/:id", h.auth.Authenticate(h.GetByID))
	router.PATCH("/booking/hotel/:id/cancel", h.auth.Authenticate(h.Cancel))
	router.PATCH("/booking/hotel/:id/complete", h.auth.RequireRole(model.RoleAdmin, h.Complete))
}
