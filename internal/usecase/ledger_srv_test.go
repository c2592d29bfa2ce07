package usecase

import (
	"context"
	"testing"

	"club-booking/internal/data/entity"
	"club-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLedgerBlockInsufficientFunds(t *testing.T) {
	e := newTestEnv()
	user := e.addUser("ana", 2.0, entity.GenderFemale, 10, 5)
	ledger := NewLedger(e.clock, zap.NewNop())
	ctx := context.Background()
	ref := uuid.New()

	acc := e.account(user.ID)
	err := ledger.Block(ctx, e.repo, acc, entity.CurrencyCredits, decimal.NewFromInt(11), "test", ref, "booking")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	err = ledger.Block(ctx, e.repo, acc, entity.CurrencyPoints, decimal.NewFromInt(6), "test", ref, "booking")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Empty(t, e.store.txs)
	assert.True(t, acc.BlockedCredits.IsZero())
	assert.Zero(t, acc.BlockedPoints)
}

func TestLedgerBlockSettleLifecycle(t *testing.T) {
	e := newTestEnv()
	user := e.addUser("ana", 2.0, entity.GenderFemale, 50, 0)
	ledger := NewLedger(e.clock, zap.NewNop())
	ctx := context.Background()
	ref := uuid.New()
	acc := e.account(user.ID)

	amount := decimal.RequireFromString("12.50")
	require.NoError(t, ledger.Block(ctx, e.repo, acc, entity.CurrencyCredits, amount, "deposit", ref, "booking"))
	assert.Equal(t, "12.5", acc.BlockedCredits.String())
	assert.Equal(t, "37.5", acc.AvailableCredits().String())
	assert.Equal(t, "50", acc.Credits.String())

	require.NoError(t, ledger.Settle(ctx, e.repo, acc, entity.CurrencyCredits, amount, "settle", ref, "booking"))
	assert.True(t, acc.BlockedCredits.IsZero())
	assert.Equal(t, "37.5", acc.Credits.String())

	require.NoError(t, ledger.Refund(ctx, e.repo, acc, entity.CurrencyCredits, amount, "refund", ref, "booking"))
	assert.Equal(t, "50", acc.Credits.String())

	require.Len(t, e.store.txs, 3)
	actions := []entity.TxAction{e.store.txs[0].Action, e.store.txs[1].Action, e.store.txs[2].Action}
	assert.Equal(t, []entity.TxAction{entity.TxActionBlock, entity.TxActionSubtract, entity.TxActionRefund}, actions)

	// Balance snapshots track the running total.
	assert.Equal(t, "50", e.store.txs[0].Balance.String())
	assert.Equal(t, "37.5", e.store.txs[1].Balance.String())
	assert.Equal(t, "50", e.store.txs[2].Balance.String())
}

func TestLedgerCompensationFloorsAmount(t *testing.T) {
	e := newTestEnv()
	user := e.addUser("ana", 2.0, entity.GenderFemale, 0, 0)
	ledger := NewLedger(e.clock, zap.NewNop())
	acc := e.account(user.ID)

	points, err := ledger.GrantCompensationPoints(context.Background(), e.repo, acc, decimal.RequireFromString("6.75"), uuid.New(), "booking")
	require.NoError(t, err)

	assert.Equal(t, int64(6), points)
	assert.Equal(t, int64(6), acc.Points)
	require.Len(t, e.store.txs, 1)
	assert.Equal(t, entity.TxActionAdd, e.store.txs[0].Action)
	assert.Equal(t, entity.CurrencyPoints, e.store.txs[0].Currency)
}

func TestLedgerServiceBalanceAndHistory(t *testing.T) {
	e := newTestEnv()
	user := e.addUser("ana", 2.0, entity.GenderFemale, 100, 12)
	ledger := NewLedger(e.clock, zap.NewNop())
	ctx := context.Background()
	acc := e.account(user.ID)

	require.NoError(t, ledger.Block(ctx, e.repo, acc, entity.CurrencyCredits, decimal.NewFromInt(6), "deposit", uuid.New(), "booking"))

	balance, err := e.svc.Ledger.GetBalance(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "100.00", balance.Credits)
	assert.Equal(t, "6.00", balance.BlockedCredits)
	assert.Equal(t, "94.00", balance.AvailableCredits)
	assert.Equal(t, int64(12), balance.Points)

	history, err := e.svc.Ledger.GetTransactions(ctx, user.ID.String(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, history.Data, 1)
	assert.Equal(t, int64(1), history.Pagination.Total)

	_, err = e.svc.Ledger.GetBalance(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
