package response

import (
	"time"

	"club-booking/internal/data/entity"
)

type SlotResponse struct {
	ID             string                `json:"id"`
	ClubID         string                `json:"club_id"`
	Kind           entity.SlotKind       `json:"kind"`
	InstructorID   *string               `json:"instructor_id,omitempty"`
	CourtID        *string               `json:"court_id,omitempty"`
	StartsAt       time.Time             `json:"starts_at"`
	EndsAt         time.Time             `json:"ends_at"`
	Capacity       int                   `json:"capacity"`
	Price          string                `json:"price"`
	SharePrice     string                `json:"share_price"`
	LevelMin       *float64              `json:"level_min,omitempty"`
	LevelMax       *float64              `json:"level_max,omitempty"`
	Gender         entity.GenderCategory `json:"gender"`
	Classified     bool                  `json:"classified"`
	RecycledUnits  int                   `json:"recycled_units"`
	ActiveBookings int                   `json:"active_bookings"`
	SpotsLeft      int                   `json:"spots_left"`
}

type SlotDetailResponse struct {
	SlotResponse
	Bookings []BookingResponse `json:"bookings"`
}

func SlotToResponse(s *entity.Slot, activeBookings int) *SlotResponse {
	res := &SlotResponse{
		ID:             s.ID.String(),
		ClubID:         s.ClubID.String(),
		Kind:           s.Kind,
		StartsAt:       s.StartsAt,
		EndsAt:         s.EndsAt,
		Capacity:       s.Capacity,
		Price:          s.Price.StringFixed(2),
		SharePrice:     s.SharePrice().StringFixed(2),
		LevelMin:       s.LevelMin,
		LevelMax:       s.LevelMax,
		Gender:         s.Gender,
		Classified:     s.Classified,
		RecycledUnits:  s.RecycledUnits,
		ActiveBookings: activeBookings,
		SpotsLeft:      s.Capacity - activeBookings,
	}
	if s.InstructorID != nil {
		id := s.InstructorID.String()
		res.InstructorID = &id
	}
	if s.CourtID != nil {
		id := s.CourtID.String()
		res.CourtID = &id
	}
	return res
}
