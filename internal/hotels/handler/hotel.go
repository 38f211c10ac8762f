package handler

import (
	"net/http"

	"travelbook/internal/hotels/service"
	httputil "travelbook/pkg/http"
	"travelbook/pkg/logger"
	"travelbook/pkg/middleware"
	"travelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type HotelHandler struct {
	service service.HotelService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewHotelHandler(service service.HotelService, auth *middleware.Authenticator, log *logger.Logger) *HotelHandler {
	return &HotelHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *HotelHandler) GetHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hotel, err := h.service.GetHotel(r.Context(), ps.ByName("hotelId"))
	if err != nil {
		h.writeError(w, r, "GetHotel", err)
		return
	}

	if err := httputil.WriteSuccess(w, hotel); err != nil {
		h.log.Error("failed to write success response", "handler", "GetHotel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HotelHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.AvailabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "CheckAvailability", err)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), ps.ByName("hotelId"), &req)
	if err != nil {
		h.writeError(w, r, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HotelHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.FromContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *HotelHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/hotel/:hotelId", h.GetHotel)
	router.POST("/hotel/:hotelId/availability", h.auth.Authenticate(h.CheckAvailability))
}
