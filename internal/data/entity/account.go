package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyCredits Currency = "credits"
	CurrencyPoints  Currency = "points"
)

// Account is a user's dual-currency balance. Blocked never exceeds total for
// either currency; available = total - blocked.
type Account struct {
	UserID         uuid.UUID       `db:"user_id"`
	Credits        decimal.Decimal `db:"credits"`
	BlockedCredits decimal.Decimal `db:"blocked_credits"`
	Points         int64           `db:"points"`
	BlockedPoints  int64           `db:"blocked_points"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (a *Account) AvailableCredits() decimal.Decimal {
	return a.Credits.Sub(a.BlockedCredits)
}

func (a *Account) AvailablePoints() int64 {
	return a.Points - a.BlockedPoints
}

func NewAccount(userID uuid.UUID, now time.Time) *Account {
	return &Account{
		UserID:         userID,
		Credits:        decimal.Zero,
		BlockedCredits: decimal.Zero,
		UpdatedAt:      now,
	}
}
