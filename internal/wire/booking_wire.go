package wire

import (
	"club-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// POST /api/bookings - join an activity slot
	r.Post("/api/bookings", bookingHandler.JoinActivity)

	// GET /api/bookings/{id} - booking state
	r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

	// POST /api/bookings/{id}/cancel - participant cancellation
	r.Post("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
}
