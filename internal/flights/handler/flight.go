package handler

import (
	"net/http"

	"travelbook/internal/flights/service"
	"travelbook/pkg/auth"
	httputil "travelbook/pkg/http"
	"travelbook/pkg/logger"
	"travelbook/pkg/middleware"
	"travelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type FlightHandler struct {
	service service.FlightService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewFlightHandler(service service.FlightService, auth *middleware.Authenticator, log *logger.Logger) *FlightHandler {
	return &FlightHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *FlightHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	seats, err := h.service.Availability(r.Context(), ps.ByName("flightId"))
	if err != nil {
		h.writeError(w, r, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, seats); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FlightHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, _ := auth.IdentityFromContext(r.Context())

	var req model.FlightBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "Book", err)
		return
	}

	booking, err := h.service.Book(r.Context(), user, &req)
	if err != nil {
		h.writeError(w, r, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *FlightHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, _ := auth.IdentityFromContext(r.Context())

	booking, err := h.service.GetByID(r.Context(), user, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FlightHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, _ := auth.IdentityFromContext(r.Context())

	booking, err := h.service.Cancel(r.Context(), user, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "Cancel", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, "Flight booking cancelled", booking); err != nil {
		h.log.Error("failed to write response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *FlightHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.FromContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *FlightHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/flight/:flightId/availability", h.Availability)
	router.POST("/booking/flight", h.auth.Authenticate(h.Book))
	router.GET("/booking/flight/:id", h.auth.Authenticate(h.GetByID))
	router.PATCH("/booking/flight/:id/cancel", h.auth.Authenticate(h.Cancel))
}
