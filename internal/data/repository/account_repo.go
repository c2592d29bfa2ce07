package repository

import (
	"context"
	"errors"
	"fmt"

	"club-booking/internal/data/entity"
	"club-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	FindByUser(ctx context.Context, userID uuid.UUID) (*entity.Account, error)
	// FindByUserForUpdate locks the account row so concurrent joins cannot
	// over-commit the same available balance.
	FindByUserForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Account, error)
	Update(ctx context.Context, account *entity.Account) error
}

type accountRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewAccountRepository(db database.Querier, log *zap.Logger) AccountRepository {
	return &accountRepository{
		db:  db,
		log: log.With(zap.String("repository", "account")),
	}
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	query := `
		INSERT INTO accounts (user_id, credits, blocked_credits, points, blocked_points, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		account.UserID,
		account.Credits,
		account.BlockedCredits,
		account.Points,
		account.BlockedPoints,
		account.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create account",
			zap.Error(err),
			zap.String("user_id", account.UserID.String()),
		)
		return fmt.Errorf("create account for user %s: %w", account.UserID.String(), err)
	}

	return nil
}

func (r *accountRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*entity.Account, error) {
	query := `
		SELECT user_id, credits, blocked_credits, points, blocked_points, updated_at
		FROM accounts
		WHERE user_id = $1
	`
	return r.findOne(ctx, query, userID)
}

func (r *accountRepository) FindByUserForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Account, error) {
	query := `
		SELECT user_id, credits, blocked_credits, points, blocked_points, updated_at
		FROM accounts
		WHERE user_id = $1
		FOR UPDATE
	`
	return r.findOne(ctx, query, userID)
}

func (r *accountRepository) findOne(ctx context.Context, query string, userID uuid.UUID) (*entity.Account, error) {
	var account entity.Account
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Credits,
		&account.BlockedCredits,
		&account.Points,
		&account.BlockedPoints,
		&account.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find account",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find account for user %s: %w", userID.String(), err)
	}

	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	query := `
		UPDATE accounts
		SET credits = $2, blocked_credits = $3, points = $4, blocked_points = $5, updated_at = $6
		WHERE user_id = $1
	`

	result, err := r.db.Exec(ctx, query,
		account.UserID,
		account.Credits,
		account.BlockedCredits,
		account.Points,
		account.BlockedPoints,
		account.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update account",
			zap.Error(err),
			zap.String("user_id", account.UserID.String()),
		)
		return fmt.Errorf("update account for user %s: %w", account.UserID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account for user %s not found", account.UserID.String())
	}

	return nil
}
