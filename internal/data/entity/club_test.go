package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClubCourtRate(t *testing.T) {
	club := &Club{
		PeakRate:      decimal.NewFromInt(12),
		OffPeakRate:   decimal.NewFromInt(8),
		PeakStartHour: 17,
		PeakEndHour:   22,
	}

	assert.Equal(t, "8", club.CourtRate(9).String())
	assert.Equal(t, "8", club.CourtRate(16).String())
	assert.Equal(t, "12", club.CourtRate(17).String())
	assert.Equal(t, "12", club.CourtRate(21).String())
	assert.Equal(t, "8", club.CourtRate(22).String())
}

func TestWindowBitmap(t *testing.T) {
	hours := &OpeningHours{Bitmap: WindowBitmap(9, 22)}

	assert.False(t, hours.IsOpen(17)) // 08:30
	assert.True(t, hours.IsOpen(18))  // 09:00
	assert.True(t, hours.IsOpen(43))  // 21:30
	assert.False(t, hours.IsOpen(44)) // 22:00

	assert.False(t, hours.IsOpen(-1))
	assert.False(t, hours.IsOpen(48))
}

func TestWindowBitmapClampsToDay(t *testing.T) {
	hours := &OpeningHours{Bitmap: WindowBitmap(0, 30)}
	assert.True(t, hours.IsOpen(0))
	assert.True(t, hours.IsOpen(47))
}
