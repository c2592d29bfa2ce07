package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SlotKind string

const (
	SlotKindClass SlotKind = "class"
	SlotKindMatch SlotKind = "match"
)

type GenderCategory string

const (
	// GenderCategoryOpen is the unclassified default ("abierto" in the
	// club jargon): any profile may join.
	GenderCategoryOpen  GenderCategory = "open"
	GenderCategoryMen   GenderCategory = "men"
	GenderCategoryWomen GenderCategory = "women"
	GenderCategoryMixed GenderCategory = "mixed"
)

// Slot is one bookable instance of a class or match. A slot starts life as an
// open, unclassified proposal with no court; the first booking classifies it,
// and the court is assigned exactly once, when active bookings reach capacity.
type Slot struct {
	Base
	ClubID        uuid.UUID       `db:"club_id"`
	Kind          SlotKind        `db:"kind"`
	InstructorID  *uuid.UUID      `db:"instructor_id"` // classes only
	CourtID       *uuid.UUID      `db:"court_id"`      // nil until confirmed
	StartsAt      time.Time       `db:"starts_at"`
	EndsAt        time.Time       `db:"ends_at"`
	Capacity      int             `db:"capacity"`
	Price         decimal.Decimal `db:"price"` // whole-slot price; each spot costs Price/Capacity
	LevelMin      *float64        `db:"level_min"` // nil = open level
	LevelMax      *float64        `db:"level_max"`
	Gender        GenderCategory  `db:"gender"`
	Classified    bool            `db:"classified"`
	RecycledUnits int             `db:"recycled_units"` // vacated confirmed spots, points-only
}

// SharePrice is the per-participant cost of one spot.
func (s *Slot) SharePrice() decimal.Decimal {
	return s.Price.Div(decimal.NewFromInt(int64(s.Capacity)))
}

// Confirmed reports whether a court has been committed to this slot.
func (s *Slot) Confirmed() bool {
	return s.CourtID != nil
}

// AcceptsLevel reports whether a player of the given level fits the slot's
// level window. An open slot accepts any level.
func (s *Slot) AcceptsLevel(level float64) bool {
	if s.LevelMin != nil && level < *s.LevelMin {
		return false
	}
	if s.LevelMax != nil && level > *s.LevelMax {
		return false
	}
	return true
}

// AcceptsGender reports whether a player of the given gender fits the slot's
// gender category.
func (s *Slot) AcceptsGender(g Gender) bool {
	switch s.Gender {
	case GenderCategoryMen:
		return g == GenderMale
	case GenderCategoryWomen:
		return g == GenderFemale
	default:
		return true
	}
}

// Classify fixes the slot's constraints from its first participant. Matches
// take the joiner's level +/- tolerance and gender; classes keep the open
// level and mixed category.
func (s *Slot) Classify(u *User, tolerance float64) {
	s.Classified = true
	if s.Kind == SlotKindMatch {
		min := u.Level - tolerance
		max := u.Level + tolerance
		s.LevelMin = &min
		s.LevelMax = &max
		if u.Gender == GenderFemale {
			s.Gender = GenderCategoryWomen
		} else {
			s.Gender = GenderCategoryMen
		}
		return
	}
	s.Gender = GenderCategoryMixed
}

// Reset returns a fully-emptied slot to the open, unclassified, courtless
// state so it can be offered again as a proposal.
func (s *Slot) Reset() {
	s.CourtID = nil
	s.LevelMin = nil
	s.LevelMax = nil
	s.Gender = GenderCategoryOpen
	s.Classified = false
	s.RecycledUnits = 0
}

// SameWindow reports whether another slot occupies the exact same time window.
func (s *Slot) SameWindow(other *Slot) bool {
	return s.StartsAt.Equal(other.StartsAt) && s.EndsAt.Equal(other.EndsAt)
}
