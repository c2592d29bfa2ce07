package response

import (
	"time"

	"club-booking/internal/data/entity"
)

type BalanceResponse struct {
	UserID           string `json:"user_id"`
	Credits          string `json:"credits"`
	BlockedCredits   string `json:"blocked_credits"`
	AvailableCredits string `json:"available_credits"`
	Points           int64  `json:"points"`
	BlockedPoints    int64  `json:"blocked_points"`
	AvailablePoints  int64  `json:"available_points"`
}

type TransactionResponse struct {
	ID        string          `json:"id"`
	Currency  entity.Currency `json:"currency"`
	Action    entity.TxAction `json:"action"`
	Amount    string          `json:"amount"`
	Balance   string          `json:"balance"`
	Concept   string          `json:"concept"`
	RefID     string          `json:"ref_id"`
	RefType   string          `json:"ref_type"`
	CreatedAt time.Time       `json:"created_at"`
}

func AccountToBalanceResponse(a *entity.Account) *BalanceResponse {
	return &BalanceResponse{
		UserID:           a.UserID.String(),
		Credits:          a.Credits.StringFixed(2),
		BlockedCredits:   a.BlockedCredits.StringFixed(2),
		AvailableCredits: a.AvailableCredits().StringFixed(2),
		Points:           a.Points,
		BlockedPoints:    a.BlockedPoints,
		AvailablePoints:  a.AvailablePoints(),
	}
}

func TransactionToResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID.String(),
		Currency:  t.Currency,
		Action:    t.Action,
		Amount:    t.Amount.StringFixed(2),
		Balance:   t.Balance.StringFixed(2),
		Concept:   t.Concept,
		RefID:     t.RefID.String(),
		RefType:   t.RefType,
		CreatedAt: t.CreatedAt,
	}
}
