package response

import (
	"time"

	"club-booking/internal/data/entity"
)

// Join outcomes reported to the caller.
const (
	JoinOutcomePending   = "pending"
	JoinOutcomeConfirmed = "confirmed"
	// JoinOutcomeNoCourts means the quorum was reached but no court was free:
	// every competing booking in the window was cancelled and its deposit
	// returned.
	JoinOutcomeNoCourts = "no_courts_available"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	SlotID        string               `json:"slot_id"`
	UserID        string               `json:"user_id"`
	Status        entity.BookingStatus `json:"status"`
	Method        entity.PaymentMethod `json:"method"`
	AmountBlocked string               `json:"amount_blocked"`
	PointsUsed    int64                `json:"points_used"`
	CreatedAt     time.Time            `json:"created_at"`
}

type JoinActivityResponse struct {
	Outcome string           `json:"outcome"`
	Message string           `json:"message,omitempty"`
	Booking *BookingResponse `json:"booking,omitempty"`
	Slot    *SlotResponse    `json:"slot,omitempty"`
}

func BookingToResponse(b *entity.Booking) *BookingResponse {
	return &BookingResponse{
		ID:            b.ID.String(),
		SlotID:        b.SlotID.String(),
		UserID:        b.UserID.String(),
		Status:        b.Status,
		Method:        b.Method,
		AmountBlocked: b.AmountBlocked.StringFixed(2),
		PointsUsed:    b.PointsUsed,
		CreatedAt:     b.CreatedAt,
	}
}
