package adaptor

import (
	"encoding/json"
	"net/http"

	"club-booking/internal/dto/request"
	"club-booking/internal/usecase"
	"club-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	cancel  usecase.CancelService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, cancel usecase.CancelService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		cancel:  cancel,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// JoinActivity handles POST /api/bookings
func (h *BookingHandler) JoinActivity(w http.ResponseWriter, r *http.Request) {
	var req request.JoinActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.JoinActivity(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "join activity")
		return
	}

	// NoCourtsAvailable is partial success with compensation, not an error:
	// the window was voided and every deposit returned.
	utils.ResponseCreated(w, "success", result)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")

	booking, err := h.service.GetBooking(r.Context(), bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// CancelBooking handles POST /api/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")

	booking, err := h.cancel.CancelBooking(r.Context(), bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}
