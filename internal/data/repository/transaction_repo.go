package repository

import (
	"context"
	"fmt"

	"club-booking/internal/data/entity"
	"club-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransactionRepository is append-only: ledger entries are never updated or
// deleted.
type TransactionRepository interface {
	Append(ctx context.Context, tx *entity.Transaction) error
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Transaction, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type transactionRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewTransactionRepository(db database.Querier, log *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "transaction")),
	}
}

func (r *transactionRepository) Append(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, currency, action, amount, balance, concept, ref_id, ref_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Currency,
		tx.Action,
		tx.Amount,
		tx.Balance,
		tx.Concept,
		tx.RefID,
		tx.RefType,
		tx.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to append transaction",
			zap.Error(err),
			zap.String("user_id", tx.UserID.String()),
			zap.String("action", string(tx.Action)),
		)
		return fmt.Errorf("append transaction for user %s: %w", tx.UserID.String(), err)
	}

	return nil
}

func (r *transactionRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	query := `
		SELECT id, user_id, currency, action, amount, balance, concept, ref_id, ref_type, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find transactions by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find transactions for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var txs []*entity.Transaction
	for rows.Next() {
		var tx entity.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Currency,
			&tx.Action,
			&tx.Amount,
			&tx.Balance,
			&tx.Concept,
			&tx.RefID,
			&tx.RefType,
			&tx.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, &tx)
	}

	return txs, nil
}

func (r *transactionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count transactions by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count transactions for user %s: %w", userID.String(), err)
	}

	return count, nil
}
