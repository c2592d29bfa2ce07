package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"club-booking/internal/data/entity"
	"club-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SlotRepository interface {
	Create(ctx context.Context, slot *entity.Slot) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	Update(ctx context.Context, slot *entity.Slot) error

	// Business queries
	FindByClubAndDay(ctx context.Context, clubID uuid.UUID, dayStart, dayEnd time.Time) ([]*entity.Slot, error)
	// FindCourtlessByWindow returns the slots still racing for a court at
	// the exact club/time window, excluding the given slot.
	FindCourtlessByWindow(ctx context.Context, clubID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*entity.Slot, error)
	FindConfirmedByInstructorOverlapping(ctx context.Context, instructorID uuid.UUID, start, end time.Time) ([]*entity.Slot, error)
	// OpenProposalExists reports whether an open unclassified courtless slot
	// already exists for the key (club, kind, instructor, start).
	OpenProposalExists(ctx context.Context, clubID uuid.UUID, kind entity.SlotKind, instructorID *uuid.UUID, start time.Time) (bool, error)
	// DeleteEmptyOpenProposals removes open unclassified proposals of the
	// instructor starting inside [from, to) that have no bookings at all.
	DeleteEmptyOpenProposals(ctx context.Context, instructorID uuid.UUID, from, to time.Time) (int64, error)
	// DeleteOpenDuplicates removes open unclassified proposals sharing the
	// slot's club/kind/instructor/start other than the slot itself, keeping
	// exactly one open proposal per key. Only proposals with no bookings are
	// removed.
	DeleteOpenDuplicates(ctx context.Context, slot *entity.Slot) (int64, error)
}

const slotColumns = `id, club_id, kind, instructor_id, court_id, starts_at, ends_at, capacity, price, level_min, level_max, gender, classified, recycled_units, created_at, updated_at`

func scanSlot(row pgx.Row) (*entity.Slot, error) {
	var slot entity.Slot
	err := row.Scan(
		&slot.ID,
		&slot.ClubID,
		&slot.Kind,
		&slot.InstructorID,
		&slot.CourtID,
		&slot.StartsAt,
		&slot.EndsAt,
		&slot.Capacity,
		&slot.Price,
		&slot.LevelMin,
		&slot.LevelMax,
		&slot.Gender,
		&slot.Classified,
		&slot.RecycledUnits,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

type slotRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewSlotRepository(db database.Querier, log *zap.Logger) SlotRepository {
	return &slotRepository{
		db:  db,
		log: log.With(zap.String("repository", "slot")),
	}
}

func (r *slotRepository) Create(ctx context.Context, slot *entity.Slot) error {
	query := `
		INSERT INTO slots (` + slotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(ctx, query,
		slot.ID,
		slot.ClubID,
		slot.Kind,
		slot.InstructorID,
		slot.CourtID,
		slot.StartsAt,
		slot.EndsAt,
		slot.Capacity,
		slot.Price,
		slot.LevelMin,
		slot.LevelMax,
		slot.Gender,
		slot.Classified,
		slot.RecycledUnits,
		slot.CreatedAt,
		slot.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create slot",
			zap.Error(err),
			zap.String("slot_id", slot.ID.String()),
			zap.String("club_id", slot.ClubID.String()),
		)
		return fmt.Errorf("create slot %s: %w", slot.ID.String(), err)
	}

	return nil
}

func (r *slotRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *slotRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *slotRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Slot, error) {
	slot, err := scanSlot(r.db.QueryRow(ctx, query, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find slot by ID",
			zap.Error(err),
			zap.String("slot_id", id.String()),
		)
		return nil, fmt.Errorf("find slot by ID %s: %w", id.String(), err)
	}

	return slot, nil
}

func (r *slotRepository) Update(ctx context.Context, slot *entity.Slot) error {
	query := `
		UPDATE slots
		SET court_id = $2, capacity = $3, price = $4, level_min = $5, level_max = $6,
		    gender = $7, classified = $8, recycled_units = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		slot.ID,
		slot.CourtID,
		slot.Capacity,
		slot.Price,
		slot.LevelMin,
		slot.LevelMax,
		slot.Gender,
		slot.Classified,
		slot.RecycledUnits,
		slot.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update slot",
			zap.Error(err),
			zap.String("slot_id", slot.ID.String()),
		)
		return fmt.Errorf("update slot %s: %w", slot.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("slot %s not found", slot.ID.String())
	}

	return nil
}

func (r *slotRepository) FindByClubAndDay(ctx context.Context, clubID uuid.UUID, dayStart, dayEnd time.Time) ([]*entity.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE club_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at
	`
	return r.findMany(ctx, query, clubID, dayStart, dayEnd)
}

func (r *slotRepository) FindCourtlessByWindow(ctx context.Context, clubID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*entity.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE club_id = $1 AND starts_at = $2 AND ends_at = $3 AND court_id IS NULL AND id <> $4
		ORDER BY created_at
	`
	return r.findMany(ctx, query, clubID, start, end, exclude)
}

func (r *slotRepository) FindConfirmedByInstructorOverlapping(ctx context.Context, instructorID uuid.UUID, start, end time.Time) ([]*entity.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE instructor_id = $1 AND court_id IS NOT NULL AND starts_at < $3 AND ends_at > $2
		ORDER BY starts_at
	`
	return r.findMany(ctx, query, instructorID, start, end)
}

func (r *slotRepository) findMany(ctx context.Context, query string, args ...any) ([]*entity.Slot, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query slots", zap.Error(err))
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	var slots []*entity.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			r.log.Error("Failed to scan slot row", zap.Error(err))
			return nil, fmt.Errorf("scan slot row: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

func (r *slotRepository) OpenProposalExists(ctx context.Context, clubID uuid.UUID, kind entity.SlotKind, instructorID *uuid.UUID, start time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM slots
			WHERE club_id = $1 AND kind = $2
			  AND (instructor_id = $3 OR ($3 IS NULL AND instructor_id IS NULL))
			  AND starts_at = $4 AND court_id IS NULL AND NOT classified
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, clubID, kind, instructorID, start).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check open proposal",
			zap.Error(err),
			zap.String("club_id", clubID.String()),
			zap.Time("start", start),
		)
		return false, fmt.Errorf("check open proposal for club %s: %w", clubID.String(), err)
	}

	return exists, nil
}

func (r *slotRepository) DeleteEmptyOpenProposals(ctx context.Context, instructorID uuid.UUID, from, to time.Time) (int64, error) {
	query := `
		DELETE FROM slots s
		WHERE s.instructor_id = $1 AND s.starts_at >= $2 AND s.starts_at < $3
		  AND s.court_id IS NULL AND NOT s.classified
		  AND NOT EXISTS (SELECT 1 FROM bookings b WHERE b.slot_id = s.id)
	`

	result, err := r.db.Exec(ctx, query, instructorID, from, to)
	if err != nil {
		r.log.Error("Failed to delete empty open proposals",
			zap.Error(err),
			zap.String("instructor_id", instructorID.String()),
		)
		return 0, fmt.Errorf("delete empty open proposals for instructor %s: %w", instructorID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *slotRepository) DeleteOpenDuplicates(ctx context.Context, slot *entity.Slot) (int64, error) {
	query := `
		DELETE FROM slots s
		WHERE s.club_id = $1 AND s.kind = $2
		  AND (s.instructor_id = $3 OR ($3 IS NULL AND s.instructor_id IS NULL))
		  AND s.starts_at = $4 AND s.court_id IS NULL AND NOT s.classified
		  AND s.id <> $5
		  AND NOT EXISTS (SELECT 1 FROM bookings b WHERE b.slot_id = s.id)
	`

	result, err := r.db.Exec(ctx, query, slot.ClubID, slot.Kind, slot.InstructorID, slot.StartsAt, slot.ID)
	if err != nil {
		r.log.Error("Failed to delete duplicate open proposals",
			zap.Error(err),
			zap.String("slot_id", slot.ID.String()),
			zap.Time("start", slot.StartsAt),
		)
		return 0, fmt.Errorf("delete duplicate open proposals for slot %s: %w", slot.ID.String(), err)
	}

	return result.RowsAffected(), nil
}
