package repository

import (
	"context"
	"fmt"

	"club-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Club        ClubRepository
	Court       CourtRepository
	Instructor  InstructorRepository
	Slot        SlotRepository
	Booking     BookingRepository
	Account     AccountRepository
	Transaction TransactionRepository

	db  database.PgxIface
	log *zap.Logger
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	r := bind(db, log)
	r.db = db
	return r
}

func bind(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(q, log),
		Club:        NewClubRepository(q, log),
		Court:       NewCourtRepository(q, log),
		Instructor:  NewInstructorRepository(q, log),
		Slot:        NewSlotRepository(q, log),
		Booking:     NewBookingRepository(q, log),
		Account:     NewAccountRepository(q, log),
		Transaction: NewTransactionRepository(q, log),
		log:         log,
	}
}

// WithinTx runs fn against a transaction-bound copy of the repository set.
// Any error rolls the transaction back. A Repository assembled without a
// database handle (in-memory test fakes) runs fn directly.
func (r *Repository) WithinTx(ctx context.Context, fn func(*Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(bind(tx, r.log)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.log.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
