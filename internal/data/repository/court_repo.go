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

type CourtRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Court, error)
	FindActiveByClub(ctx context.Context, clubID uuid.UUID) ([]*entity.Court, error)
	// FindFreeByWindow returns the lowest-numbered active court of the club
	// with no confirmed slot overlapping [start, end), or nil if every court
	// is taken. Class and match occupancy both count.
	FindFreeByWindow(ctx context.Context, clubID uuid.UUID, start, end time.Time) (*entity.Court, error)
	CountFreeByWindow(ctx context.Context, clubID uuid.UUID, start, end time.Time) (int, error)
}

type courtRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewCourtRepository(db database.Querier, log *zap.Logger) CourtRepository {
	return &courtRepository{
		db:  db,
		log: log.With(zap.String("repository", "court")),
	}
}

func (r *courtRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Court, error) {
	query := `
		SELECT id, club_id, number, active, created_at, updated_at
		FROM courts
		WHERE id = $1
	`

	var court entity.Court
	err := r.db.QueryRow(ctx, query, id).Scan(
		&court.ID,
		&court.ClubID,
		&court.Number,
		&court.Active,
		&court.CreatedAt,
		&court.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find court by ID",
			zap.Error(err),
			zap.String("court_id", id.String()),
		)
		return nil, fmt.Errorf("find court by ID %s: %w", id.String(), err)
	}

	return &court, nil
}

func (r *courtRepository) FindActiveByClub(ctx context.Context, clubID uuid.UUID) ([]*entity.Court, error) {
	query := `
		SELECT id, club_id, number, active, created_at, updated_at
		FROM courts
		WHERE club_id = $1 AND active
		ORDER BY number
	`

	rows, err := r.db.Query(ctx, query, clubID)
	if err != nil {
		r.log.Error("Failed to find active courts by club",
			zap.Error(err),
			zap.String("club_id", clubID.String()),
		)
		return nil, fmt.Errorf("find active courts for club %s: %w", clubID.String(), err)
	}
	defer rows.Close()

	var courts []*entity.Court
	for rows.Next() {
		var court entity.Court
		err := rows.Scan(
			&court.ID,
			&court.ClubID,
			&court.Number,
			&court.Active,
			&court.CreatedAt,
			&court.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan court row", zap.Error(err))
			return nil, fmt.Errorf("scan court row: %w", err)
		}
		courts = append(courts, &court)
	}

	return courts, nil
}

func (r *courtRepository) FindFreeByWindow(ctx context.Context, clubID uuid.UUID, start, end time.Time) (*entity.Court, error) {
	query := `
		SELECT c.id, c.club_id, c.number, c.active, c.created_at, c.updated_at
		FROM courts c
		WHERE c.club_id = $1 AND c.active
		  AND NOT EXISTS (
			SELECT 1 FROM slots s
			WHERE s.court_id = c.id AND s.starts_at < $3 AND s.ends_at > $2
		  )
		ORDER BY c.number
		LIMIT 1
	`

	var court entity.Court
	err := r.db.QueryRow(ctx, query, clubID, start, end).Scan(
		&court.ID,
		&court.ClubID,
		&court.Number,
		&court.Active,
		&court.CreatedAt,
		&court.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find free court",
			zap.Error(err),
			zap.String("club_id", clubID.String()),
			zap.Time("start", start),
			zap.Time("end", end),
		)
		return nil, fmt.Errorf("find free court for club %s: %w", clubID.String(), err)
	}

	return &court, nil
}

func (r *courtRepository) CountFreeByWindow(ctx context.Context, clubID uuid.UUID, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM courts c
		WHERE c.club_id = $1 AND c.active
		  AND NOT EXISTS (
			SELECT 1 FROM slots s
			WHERE s.court_id = c.id AND s.starts_at < $3 AND s.ends_at > $2
		  )
	`

	var count int
	err := r.db.QueryRow(ctx, query, clubID, start, end).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count free courts",
			zap.Error(err),
			zap.String("club_id", clubID.String()),
		)
		return 0, fmt.Errorf("count free courts for club %s: %w", clubID.String(), err)
	}

	return count, nil
}
