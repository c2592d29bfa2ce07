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

type ClubRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Club, error)
	// LockByID takes a row lock on the club, serializing court assignment
	// for all slots of the club.
	LockByID(ctx context.Context, id uuid.UUID) error
	FindOpeningHours(ctx context.Context, clubID uuid.UUID, weekday int) (*entity.OpeningHours, error)
}

type clubRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewClubRepository(db database.Querier, log *zap.Logger) ClubRepository {
	return &clubRepository{
		db:  db,
		log: log.With(zap.String("repository", "club")),
	}
}

func (r *clubRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Club, error) {
	query := `
		SELECT id, name, level_tolerance, peak_rate, off_peak_rate, peak_start_hour, peak_end_hour, active, created_at, updated_at
		FROM clubs
		WHERE id = $1
	`

	var club entity.Club
	err := r.db.QueryRow(ctx, query, id).Scan(
		&club.ID,
		&club.Name,
		&club.LevelTolerance,
		&club.PeakRate,
		&club.OffPeakRate,
		&club.PeakStartHour,
		&club.PeakEndHour,
		&club.Active,
		&club.CreatedAt,
		&club.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find club by ID",
			zap.Error(err),
			zap.String("club_id", id.String()),
		)
		return nil, fmt.Errorf("find club by ID %s: %w", id.String(), err)
	}

	return &club, nil
}

func (r *clubRepository) LockByID(ctx context.Context, id uuid.UUID) error {
	query := `SELECT id FROM clubs WHERE id = $1 FOR UPDATE`

	var locked uuid.UUID
	err := r.db.QueryRow(ctx, query, id).Scan(&locked)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("club %s not found", id.String())
	}
	if err != nil {
		r.log.Error("Failed to lock club",
			zap.Error(err),
			zap.String("club_id", id.String()),
		)
		return fmt.Errorf("lock club %s: %w", id.String(), err)
	}

	return nil
}

func (r *clubRepository) FindOpeningHours(ctx context.Context, clubID uuid.UUID, weekday int) (*entity.OpeningHours, error) {
	query := `
		SELECT club_id, weekday, bitmap
		FROM opening_hours
		WHERE club_id = $1 AND weekday = $2
	`

	var hours entity.OpeningHours
	err := r.db.QueryRow(ctx, query, clubID, weekday).Scan(
		&hours.ClubID,
		&hours.Weekday,
		&hours.Bitmap,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find opening hours",
			zap.Error(err),
			zap.String("club_id", clubID.String()),
			zap.Int("weekday", weekday),
		)
		return nil, fmt.Errorf("find opening hours for club %s weekday %d: %w", clubID.String(), weekday, err)
	}

	return &hours, nil
}
