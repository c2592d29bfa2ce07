package wire

import (
	"club-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireSlot(r chi.Router, slotHandler *adaptor.SlotHandler) {
	// GET /api/slots?club_id=...&date=... - day view with availability
	r.Get("/api/slots", slotHandler.ListSlots)

	// GET /api/slots/{id} - slot detail with bookings
	r.Get("/api/slots/{id}", slotHandler.GetSlot)
}
