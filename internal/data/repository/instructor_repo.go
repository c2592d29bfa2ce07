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

type InstructorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Instructor, error)
	FindActiveByClub(ctx context.Context, clubID uuid.UUID) ([]*entity.Instructor, error)
	FindAbsences(ctx context.Context, instructorID uuid.UUID, from, to time.Time) ([]*entity.InstructorAbsence, error)
}

type instructorRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewInstructorRepository(db database.Querier, log *zap.Logger) InstructorRepository {
	return &instructorRepository{
		db:  db,
		log: log.With(zap.String("repository", "instructor")),
	}
}

func (r *instructorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Instructor, error) {
	query := `
		SELECT id, club_id, name, hourly_rate, active, created_at, updated_at
		FROM instructors
		WHERE id = $1
	`

	var instructor entity.Instructor
	err := r.db.QueryRow(ctx, query, id).Scan(
		&instructor.ID,
		&instructor.ClubID,
		&instructor.Name,
		&instructor.HourlyRate,
		&instructor.Active,
		&instructor.CreatedAt,
		&instructor.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find instructor by ID",
			zap.Error(err),
			zap.String("instructor_id", id.String()),
		)
		return nil, fmt.Errorf("find instructor by ID %s: %w", id.String(), err)
	}

	return &instructor, nil
}

func (r *instructorRepository) FindActiveByClub(ctx context.Context, clubID uuid.UUID) ([]*entity.Instructor, error) {
	query := `
		SELECT id, club_id, name, hourly_rate, active, created_at, updated_at
		FROM instructors
		WHERE club_id = $1 AND active
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, clubID)
	if err != nil {
		r.log.Error("Failed to find active instructors by club",
			zap.Error(err),
			zap.String("club_id", clubID.String()),
		)
		return nil, fmt.Errorf("find active instructors for club %s: %w", clubID.String(), err)
	}
	defer rows.Close()

	var instructors []*entity.Instructor
	for rows.Next() {
		var instructor entity.Instructor
		err := rows.Scan(
			&instructor.ID,
			&instructor.ClubID,
			&instructor.Name,
			&instructor.HourlyRate,
			&instructor.Active,
			&instructor.CreatedAt,
			&instructor.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan instructor row", zap.Error(err))
			return nil, fmt.Errorf("scan instructor row: %w", err)
		}
		instructors = append(instructors, &instructor)
	}

	return instructors, nil
}

func (r *instructorRepository) FindAbsences(ctx context.Context, instructorID uuid.UUID, from, to time.Time) ([]*entity.InstructorAbsence, error) {
	query := `
		SELECT id, instructor_id, starts_at, ends_at, created_at
		FROM instructor_absences
		WHERE instructor_id = $1 AND starts_at < $3 AND ends_at > $2
		ORDER BY starts_at
	`

	rows, err := r.db.Query(ctx, query, instructorID, from, to)
	if err != nil {
		r.log.Error("Failed to find instructor absences",
			zap.Error(err),
			zap.String("instructor_id", instructorID.String()),
		)
		return nil, fmt.Errorf("find absences for instructor %s: %w", instructorID.String(), err)
	}
	defer rows.Close()

	var absences []*entity.InstructorAbsence
	for rows.Next() {
		var absence entity.InstructorAbsence
		err := rows.Scan(
			&absence.ID,
			&absence.InstructorID,
			&absence.StartsAt,
			&absence.EndsAt,
			&absence.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan absence row", zap.Error(err))
			return nil, fmt.Errorf("scan absence row: %w", err)
		}
		absences = append(absences, &absence)
	}

	return absences, nil
}
