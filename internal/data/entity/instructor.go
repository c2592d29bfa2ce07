package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Instructor struct {
	Base
	ClubID     uuid.UUID       `db:"club_id"`
	Name       string          `db:"name"`
	HourlyRate decimal.Decimal `db:"hourly_rate"`
	Active     bool            `db:"active"`
}

// InstructorAbsence is a declared unavailability override. Any slot window
// overlapping an absence is skipped by the proposal generator.
type InstructorAbsence struct {
	BaseSimple
	InstructorID uuid.UUID `db:"instructor_id"`
	StartsAt     time.Time `db:"starts_at"`
	EndsAt       time.Time `db:"ends_at"`
}

// Covers reports whether the absence overlaps the [start, end) window.
func (a *InstructorAbsence) Covers(start, end time.Time) bool {
	return a.StartsAt.Before(end) && a.EndsAt.After(start)
}
