package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TxAction string

const (
	TxActionBlock    TxAction = "block"
	TxActionUnblock  TxAction = "unblock"
	TxActionSubtract TxAction = "subtract" // settle: blocked funds actually spent
	TxActionRefund   TxAction = "refund"   // settled funds returned
	TxActionAdd      TxAction = "add"      // pure grant (compensation points)
)

// Transaction is an append-only ledger entry. Rows are never updated or
// deleted; corrections are new entries.
type Transaction struct {
	BaseSimple
	UserID   uuid.UUID       `db:"user_id"`
	Currency Currency        `db:"currency"`
	Action   TxAction        `db:"action"`
	Amount   decimal.Decimal `db:"amount"`
	Balance  decimal.Decimal `db:"balance"` // total balance after the mutation
	Concept  string          `db:"concept"`
	RefID    uuid.UUID       `db:"ref_id"` // triggering booking/slot
	RefType  string          `db:"ref_type"`
}
