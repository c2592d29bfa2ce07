package usecase

import (
	"context"
	"fmt"
	"time"

	"club-booking/internal/data/entity"
	"club-booking/internal/data/repository"
	"club-booking/internal/dto/response"
	"club-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RaceService resolves the fallout of a slot winning its court: confirmed
// participants drop their other same-day holdings, and competing courtless
// slots in the same window are voided with full refunds. Both sweeps are
// idempotent; each cancellation runs in its own transaction so one failed
// refund never blocks the rest.
type RaceService interface {
	ResolveAfterConfirm(ctx context.Context, slotID uuid.UUID) *response.RaceReport
	// ResolveSameDayForUser runs only the same-day sweep for one participant.
	// Used when a recycled-unit join confirms onto an already-confirmed slot.
	ResolveSameDayForUser(ctx context.Context, userID, slotID uuid.UUID) *response.RaceReport
}

type raceService struct {
	settlement
	repo *repository.Repository
}

func NewRaceService(repo *repository.Repository, proposals ProposalService, ledger *Ledger, engine utils.EngineConfig, clock utils.Clock, log *zap.Logger) RaceService {
	return &raceService{
		settlement: settlement{
			proposals: proposals,
			ledger:    ledger,
			engine:    engine,
			clock:     clock,
			log:       log.With(zap.String("service", "race")),
		},
		repo: repo,
	}
}

func (s *raceService) ResolveAfterConfirm(ctx context.Context, slotID uuid.UUID) *response.RaceReport {
	report := &response.RaceReport{}

	slot, err := s.repo.Slot.FindByID(ctx, slotID)
	if err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("load slot %s: %v", slotID.String(), err))
		return report
	}
	if slot == nil || slot.CourtID == nil {
		return report
	}

	winners, err := s.repo.Booking.FindActiveBySlot(ctx, slot.ID)
	if err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("load bookings of slot %s: %v", slot.ID.String(), err))
		return report
	}

	for _, winner := range winners {
		s.sweepSameDay(ctx, winner.UserID, slot, report)
	}
	s.sweepCompetitors(ctx, slot, report)

	s.log.Info("Race resolution finished",
		zap.String("slot_id", slot.ID.String()),
		zap.Int("same_day_cancellations", report.SameDayCancellations),
		zap.Int("competitor_cancellations", report.CompetitorCancellations),
		zap.Int("competitor_slots_reset", report.CompetitorSlotsReset),
		zap.Int("failures", len(report.Failures)),
	)

	return report
}

func (s *raceService) ResolveSameDayForUser(ctx context.Context, userID, slotID uuid.UUID) *response.RaceReport {
	report := &response.RaceReport{}

	slot, err := s.repo.Slot.FindByID(ctx, slotID)
	if err != nil || slot == nil {
		report.Failures = append(report.Failures, fmt.Sprintf("load slot %s: %v", slotID.String(), err))
		return report
	}

	s.sweepSameDay(ctx, userID, slot, report)
	return report
}

// sweepSameDay cancels every other active booking the participant holds on
// the confirmed slot's calendar day. One confirmed activity per day.
func (s *raceService) sweepSameDay(ctx context.Context, userID uuid.UUID, slot *entity.Slot, report *response.RaceReport) {
	dayStart := time.Date(slot.StartsAt.Year(), slot.StartsAt.Month(), slot.StartsAt.Day(), 0, 0, 0, 0, slot.StartsAt.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	others, err := s.repo.Booking.FindActiveByUserInRange(ctx, userID, dayStart, dayEnd, slot.ID)
	if err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("same-day sweep for user %s: %v", userID.String(), err))
		return
	}

	for _, other := range others {
		if err := s.cancelOne(ctx, other.ID); err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("cancel booking %s: %v", other.ID.String(), err))
			continue
		}
		report.SameDayCancellations++
	}
}

// sweepCompetitors voids every other courtless slot at the same club and
// exact window. First to the court wins; the losers' participants get their
// deposits back in full.
func (s *raceService) sweepCompetitors(ctx context.Context, slot *entity.Slot, report *response.RaceReport) {
	competitors, err := s.repo.Slot.FindCourtlessByWindow(ctx, slot.ClubID, slot.StartsAt, slot.EndsAt, slot.ID)
	if err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("competitor sweep for slot %s: %v", slot.ID.String(), err))
		return
	}

	for _, competitor := range competitors {
		if !competitor.Classified {
			continue // still an untouched open proposal
		}

		cancelled := 0
		err := s.repo.WithinTx(ctx, func(r *repository.Repository) error {
			locked, err := r.Slot.FindByIDForUpdate(ctx, competitor.ID)
			if err != nil {
				return err
			}
			if locked == nil || locked.CourtID != nil {
				return nil // gone or confirmed meanwhile
			}

			bookings, err := r.Booking.FindActiveBySlot(ctx, locked.ID)
			if err != nil {
				return err
			}
			if len(bookings) == 0 {
				return s.resetEmptiedSlot(ctx, r, locked)
			}

			for _, booking := range bookings {
				held, err := r.Booking.FindByIDForUpdate(ctx, booking.ID)
				if err != nil {
					return err
				}
				if held == nil || held.Status == entity.BookingStatusCancelled {
					continue
				}
				if err := s.cancelActiveBooking(ctx, r, held); err != nil {
					return err
				}
				cancelled++
			}
			return nil
		})
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("void competitor slot %s: %v", competitor.ID.String(), err))
			continue
		}

		report.CompetitorCancellations += cancelled
		report.CompetitorSlotsReset++
	}
}

// cancelOne cancels a single booking in its own transaction, tolerating the
// booking having been cancelled meanwhile.
func (s *raceService) cancelOne(ctx context.Context, bookingID uuid.UUID) error {
	return s.repo.WithinTx(ctx, func(r *repository.Repository) error {
		booking, err := r.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil || booking.Status == entity.BookingStatusCancelled {
			return nil
		}
		return s.cancelActiveBooking(ctx, r, booking)
	})
}
