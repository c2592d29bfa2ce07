package usecase

import (
	"context"
	"fmt"

	"club-booking/internal/data/entity"
	"club-booking/internal/data/repository"
	"club-booking/internal/dto/request"
	"club-booking/internal/dto/response"
	"club-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger mutates account balances and writes the append-only transaction log.
// Every method runs against the caller's transaction-bound repository set so
// that balance changes commit or roll back together with the booking state
// change that triggered them.
type Ledger struct {
	clock utils.Clock
	log   *zap.Logger
}

func NewLedger(clock utils.Clock, log *zap.Logger) *Ledger {
	return &Ledger{
		clock: clock,
		log:   log.With(zap.String("service", "ledger")),
	}
}

// Block moves amount from available to blocked. Fails with
// ErrInsufficientFunds when amount exceeds the available balance.
func (l *Ledger) Block(ctx context.Context, r *repository.Repository, acc *entity.Account, currency entity.Currency, amount decimal.Decimal, concept string, refID uuid.UUID, refType string) error {
	switch currency {
	case entity.CurrencyCredits:
		if amount.GreaterThan(acc.AvailableCredits()) {
			return ErrInsufficientFunds
		}
		acc.BlockedCredits = acc.BlockedCredits.Add(amount)
	case entity.CurrencyPoints:
		if amount.IntPart() > acc.AvailablePoints() {
			return ErrInsufficientFunds
		}
		acc.BlockedPoints += amount.IntPart()
	}
	return l.apply(ctx, r, acc, currency, entity.TxActionBlock, amount, concept, refID, refType)
}

// Unblock returns a blocked amount to the available pool without leaving the
// account. Used when a pending booking is cancelled before being charged.
func (l *Ledger) Unblock(ctx context.Context, r *repository.Repository, acc *entity.Account, currency entity.Currency, amount decimal.Decimal, concept string, refID uuid.UUID, refType string) error {
	switch currency {
	case entity.CurrencyCredits:
		acc.BlockedCredits = acc.BlockedCredits.Sub(amount)
	case entity.CurrencyPoints:
		acc.BlockedPoints -= amount.IntPart()
	}
	return l.apply(ctx, r, acc, currency, entity.TxActionUnblock, amount, concept, refID, refType)
}

// Settle spends a blocked amount: both blocked and total decrease. Used when
// a booking is confirmed.
func (l *Ledger) Settle(ctx context.Context, r *repository.Repository, acc *entity.Account, currency entity.Currency, amount decimal.Decimal, concept string, refID uuid.UUID, refType string) error {
	switch currency {
	case entity.CurrencyCredits:
		acc.BlockedCredits = acc.BlockedCredits.Sub(amount)
		acc.Credits = acc.Credits.Sub(amount)
	case entity.CurrencyPoints:
		acc.BlockedPoints -= amount.IntPart()
		acc.Points -= amount.IntPart()
	}
	return l.apply(ctx, r, acc, currency, entity.TxActionSubtract, amount, concept, refID, refType)
}

// Refund returns an already-settled amount to the account total.
func (l *Ledger) Refund(ctx context.Context, r *repository.Repository, acc *entity.Account, currency entity.Currency, amount decimal.Decimal, concept string, refID uuid.UUID, refType string) error {
	switch currency {
	case entity.CurrencyCredits:
		acc.Credits = acc.Credits.Add(amount)
	case entity.CurrencyPoints:
		acc.Points += amount.IntPart()
	}
	return l.apply(ctx, r, acc, currency, entity.TxActionRefund, amount, concept, refID, refType)
}

// GrantCompensationPoints converts settled credits into loyalty points at the
// fixed 1 unit : 1 point ratio, floored. A pure grant with no prior block.
func (l *Ledger) GrantCompensationPoints(ctx context.Context, r *repository.Repository, acc *entity.Account, settled decimal.Decimal, refID uuid.UUID, refType string) (int64, error) {
	points := settled.IntPart()
	acc.Points += points
	err := l.apply(ctx, r, acc, entity.CurrencyPoints, entity.TxActionAdd, decimal.NewFromInt(points), "Compensation for cancelled confirmed booking", refID, refType)
	if err != nil {
		return 0, err
	}
	return points, nil
}

func (l *Ledger) apply(ctx context.Context, r *repository.Repository, acc *entity.Account, currency entity.Currency, action entity.TxAction, amount decimal.Decimal, concept string, refID uuid.UUID, refType string) error {
	now := l.clock.Now()

	balance := acc.Credits
	if currency == entity.CurrencyPoints {
		balance = decimal.NewFromInt(acc.Points)
	}

	acc.UpdatedAt = now
	if err := r.Account.Update(ctx, acc); err != nil {
		return fmt.Errorf("apply %s: %w", action, err)
	}

	tx := &entity.Transaction{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     acc.UserID,
		Currency:   currency,
		Action:     action,
		Amount:     amount,
		Balance:    balance,
		Concept:    concept,
		RefID:      refID,
		RefType:    refType,
	}
	if err := r.Transaction.Append(ctx, tx); err != nil {
		return fmt.Errorf("apply %s: %w", action, err)
	}

	l.log.Debug("Ledger mutation applied",
		zap.String("user_id", acc.UserID.String()),
		zap.String("currency", string(currency)),
		zap.String("action", string(action)),
		zap.String("amount", amount.String()),
	)

	return nil
}

// LedgerService is the caller-facing read surface over accounts and the
// transaction log.
type LedgerService interface {
	GetBalance(ctx context.Context, userID string) (*response.BalanceResponse, error)
	GetTransactions(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error)
}

type ledgerService struct {
	repo  *repository.Repository
	clock utils.Clock
	log   *zap.Logger
}

func NewLedgerService(repo *repository.Repository, clock utils.Clock, log *zap.Logger) LedgerService {
	return &ledgerService{
		repo:  repo,
		clock: clock,
		log:   log.With(zap.String("service", "ledger")),
	}
}

func (s *ledgerService) GetBalance(ctx context.Context, userID string) (*response.BalanceResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user ID %s", ErrInvalidInput, userID)
	}

	user, err := s.repo.User.FindByID(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	account, err := s.repo.Account.FindByUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = entity.NewAccount(userUUID, s.clock.Now())
	}

	return response.AccountToBalanceResponse(account), nil
}

func (s *ledgerService) GetTransactions(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user ID %s", ErrInvalidInput, userID)
	}

	txs, err := s.repo.Transaction.FindByUser(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Transaction.CountByUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	items := make([]response.TransactionResponse, len(txs))
	for i, tx := range txs {
		items[i] = response.TransactionToResponse(tx)
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}
