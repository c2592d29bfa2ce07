package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Club struct {
	Base
	Name           string          `db:"name"`
	LevelTolerance *float64        `db:"level_tolerance"` // nil falls back to the engine default
	PeakRate       decimal.Decimal `db:"peak_rate"`       // court rate per slot during peak hours
	OffPeakRate    decimal.Decimal `db:"off_peak_rate"`
	PeakStartHour  int             `db:"peak_start_hour"`
	PeakEndHour    int             `db:"peak_end_hour"`
	Active         bool            `db:"active"`
}

// CourtRate returns the time-of-day court rate for a slot starting at the
// given hour.
func (c *Club) CourtRate(hour int) decimal.Decimal {
	if hour >= c.PeakStartHour && hour < c.PeakEndHour {
		return c.PeakRate
	}
	return c.OffPeakRate
}

// OpeningHours is the per-weekday opening bitmap of a club. Bit i covers the
// half hour starting at i*30 minutes after midnight.
type OpeningHours struct {
	ClubID  uuid.UUID `db:"club_id"`
	Weekday int       `db:"weekday"` // 0 = Sunday, matching time.Weekday
	Bitmap  int64     `db:"bitmap"`
}

// IsOpen reports whether the half-hour index [0,48) is inside the opening
// window.
func (o *OpeningHours) IsOpen(halfHour int) bool {
	if halfHour < 0 || halfHour >= 48 {
		return false
	}
	return o.Bitmap&(1<<uint(halfHour)) != 0
}

// WindowBitmap builds a bitmap covering [openHour, closeHour). Used as the
// fallback when a club has no configured row for a weekday.
func WindowBitmap(openHour, closeHour int) int64 {
	var bitmap int64
	for h := openHour * 2; h < closeHour*2 && h < 48; h++ {
		bitmap |= 1 << uint(h)
	}
	return bitmap
}

type Court struct {
	Base
	ClubID uuid.UUID `db:"club_id"`
	Number int       `db:"number"`
	Active bool      `db:"active"`
}
