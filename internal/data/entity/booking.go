package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCredits PaymentMethod = "credits"
	PaymentMethodPoints  PaymentMethod = "points"
)

// Booking is one participant's claim on one unit of slot capacity. Status
// only advances: pending -> confirmed, pending/confirmed -> cancelled.
type Booking struct {
	Base
	SlotID        uuid.UUID       `db:"slot_id"`
	UserID        uuid.UUID       `db:"user_id"`
	Status        BookingStatus   `db:"status"`
	Method        PaymentMethod   `db:"method"`
	AmountBlocked decimal.Decimal `db:"amount_blocked"` // credits payments
	PointsUsed    int64           `db:"points_used"`    // points payments
	EverConfirmed bool            `db:"ever_confirmed"` // kept for history after cancellation
}

// Active reports whether the booking still holds a unit of capacity.
func (b *Booking) Active() bool {
	return b.Status != BookingStatusCancelled
}
