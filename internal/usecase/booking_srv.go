package usecase

import (
	"context"
	"fmt"
	"time"

	"club-booking/internal/data/entity"
	"club-booking/internal/data/repository"
	"club-booking/internal/dto/request"
	"club-booking/internal/dto/response"
	"club-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	JoinActivity(ctx context.Context, req *request.JoinActivityRequest) (*response.JoinActivityResponse, error)
	GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)
}

type bookingService struct {
	settlement
	repo   *repository.Repository
	config ConfigService
	race   RaceService
}

func NewBookingService(repo *repository.Repository, config ConfigService, proposals ProposalService, race RaceService, ledger *Ledger, engine utils.EngineConfig, clock utils.Clock, log *zap.Logger) BookingService {
	return &bookingService{
		settlement: settlement{
			proposals: proposals,
			ledger:    ledger,
			engine:    engine,
			clock:     clock,
			log:       log.With(zap.String("service", "booking")),
		},
		repo:   repo,
		config: config,
		race:   race,
	}
}

// JoinActivity runs the whole join state machine in one transaction: guards,
// deposit block, first-booking classification and sibling spawn, quorum
// detection, court assignment and settlement. Race sweeps run after commit.
func (s *bookingService) JoinActivity(ctx context.Context, req *request.JoinActivityRequest) (*response.JoinActivityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Join activity validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationErrors(errs))
	}

	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("%w: slot ID %s", ErrInvalidInput, req.SlotID)
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user ID %s", ErrInvalidInput, req.UserID)
	}
	method := entity.PaymentMethod(req.Method)

	var (
		result   *response.JoinActivityResponse
		outcome  string
		recycled bool
	)

	err = s.repo.WithinTx(ctx, func(r *repository.Repository) error {
		slot, err := r.Slot.FindByIDForUpdate(ctx, slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return ErrSlotNotFound
		}

		user, err := r.User.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil || !user.Active {
			return ErrUserNotFound
		}

		active, err := r.Booking.FindActiveBySlot(ctx, slot.ID)
		if err != nil {
			return err
		}
		for _, b := range active {
			if b.UserID == user.ID {
				return ErrAlreadyBooked
			}
		}
		if len(active) >= slot.Capacity {
			return ErrSlotFull
		}

		if slot.Classified && (!slot.AcceptsLevel(user.Level) || !slot.AcceptsGender(user.Gender)) {
			return ErrIncompatibleProfile
		}

		if slot.Confirmed() {
			booking, err := s.joinRecycled(ctx, r, slot, user, method)
			if err != nil {
				return err
			}
			outcome = response.JoinOutcomeConfirmed
			recycled = true
			result = &response.JoinActivityResponse{
				Outcome: outcome,
				Booking: response.BookingToResponse(booking),
				Slot:    response.SlotToResponse(slot, len(active)+1),
			}
			return nil
		}

		booking, err := s.createPending(ctx, r, slot, user, method)
		if err != nil {
			return err
		}

		if !slot.Classified {
			tolerance, err := s.config.LevelTolerance(ctx, slot.ClubID)
			if err != nil {
				return err
			}
			slot.Classify(user, tolerance)
			// Keep one open slot perpetually available for later users.
			if err := s.proposals.EnsureOpenProposal(ctx, r, slot); err != nil {
				return err
			}
		}
		slot.UpdatedAt = s.clock.Now()
		if err := r.Slot.Update(ctx, slot); err != nil {
			return err
		}

		cohort := append(active, booking)
		if len(cohort) < slot.Capacity {
			outcome = response.JoinOutcomePending
			result = &response.JoinActivityResponse{
				Outcome: outcome,
				Booking: response.BookingToResponse(booking),
				Slot:    response.SlotToResponse(slot, len(cohort)),
			}
			return nil
		}

		// Quorum reached. Court assignment serializes on the club row: the
		// first transaction to take this lock wins the window.
		if err := r.Club.LockByID(ctx, slot.ClubID); err != nil {
			return err
		}

		court, err := r.Court.FindFreeByWindow(ctx, slot.ClubID, slot.StartsAt, slot.EndsAt)
		if err != nil {
			return err
		}
		if court == nil {
			refunded, err := s.voidWindow(ctx, r, slot)
			if err != nil {
				return err
			}
			outcome = response.JoinOutcomeNoCourts
			result = &response.JoinActivityResponse{
				Outcome: outcome,
				Message: fmt.Sprintf("your booking could not be completed and all deposits were returned (%d bookings refunded)", refunded),
				Slot:    response.SlotToResponse(slot, 0),
			}
			return nil
		}

		if err := s.confirmSlot(ctx, r, slot, court, cohort); err != nil {
			return err
		}
		outcome = response.JoinOutcomeConfirmed
		result = &response.JoinActivityResponse{
			Outcome: outcome,
			Booking: response.BookingToResponse(booking),
			Slot:    response.SlotToResponse(slot, len(cohort)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit sweeps. A recycled join only affects its own participant's
	// day; a quorum confirmation resolves the whole window.
	if outcome == response.JoinOutcomeConfirmed {
		var report *response.RaceReport
		if recycled {
			report = s.race.ResolveSameDayForUser(ctx, userID, slotID)
		} else {
			report = s.race.ResolveAfterConfirm(ctx, slotID)
		}
		if len(report.Failures) > 0 {
			s.log.Warn("Race resolution reported failures",
				zap.String("slot_id", slotID.String()),
				zap.Strings("failures", report.Failures),
			)
		}
	}

	s.log.Info("Join activity processed",
		zap.String("slot_id", slotID.String()),
		zap.String("user_id", userID.String()),
		zap.String("outcome", outcome),
	)

	return result, nil
}

// createPending blocks the participant's share and records the booking.
func (s *bookingService) createPending(ctx context.Context, r *repository.Repository, slot *entity.Slot, user *entity.User, method entity.PaymentMethod) (*entity.Booking, error) {
	account, err := s.lockAccount(ctx, r, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	booking := &entity.Booking{
		Base:   entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		SlotID: slot.ID,
		UserID: user.ID,
		Status: entity.BookingStatusPending,
		Method: method,
	}

	share := slot.SharePrice()
	switch method {
	case entity.PaymentMethodCredits:
		if err := s.ledger.Block(ctx, r, account, entity.CurrencyCredits, share, "Booking deposit blocked", booking.ID, "booking"); err != nil {
			return nil, err
		}
		booking.AmountBlocked = share
	case entity.PaymentMethodPoints:
		points := share.Ceil()
		if err := s.ledger.Block(ctx, r, account, entity.CurrencyPoints, points, "Booking deposit blocked", booking.ID, "booking"); err != nil {
			return nil, err
		}
		booking.PointsUsed = points.IntPart()
	}

	if err := r.Booking.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// joinRecycled fills a vacated spot on an already-confirmed slot. Points
// only, charged immediately: the court is already paid for.
func (s *bookingService) joinRecycled(ctx context.Context, r *repository.Repository, slot *entity.Slot, user *entity.User, method entity.PaymentMethod) (*entity.Booking, error) {
	if slot.RecycledUnits == 0 {
		return nil, ErrSlotFull
	}
	if method != entity.PaymentMethodPoints {
		return nil, ErrPointsOnly
	}

	account, err := s.lockAccount(ctx, r, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	booking := &entity.Booking{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		SlotID:        slot.ID,
		UserID:        user.ID,
		Status:        entity.BookingStatusConfirmed,
		Method:        entity.PaymentMethodPoints,
		EverConfirmed: true,
	}

	points := slot.SharePrice().Ceil()
	if err := s.ledger.Block(ctx, r, account, entity.CurrencyPoints, points, "Recycled spot deposit blocked", booking.ID, "booking"); err != nil {
		return nil, err
	}
	if err := s.ledger.Settle(ctx, r, account, entity.CurrencyPoints, points, "Recycled spot settled", booking.ID, "booking"); err != nil {
		return nil, err
	}
	booking.PointsUsed = points.IntPart()

	if err := r.Booking.Create(ctx, booking); err != nil {
		return nil, err
	}

	slot.RecycledUnits--
	slot.UpdatedAt = now
	if err := r.Slot.Update(ctx, slot); err != nil {
		return nil, err
	}

	return booking, nil
}

// confirmSlot assigns the court and settles every pending booking of the
// cohort atomically, then removes the now-stale precursor proposals.
func (s *bookingService) confirmSlot(ctx context.Context, r *repository.Repository, slot *entity.Slot, court *entity.Court, cohort []*entity.Booking) error {
	now := s.clock.Now()

	courtID := court.ID
	slot.CourtID = &courtID
	slot.UpdatedAt = now
	if err := r.Slot.Update(ctx, slot); err != nil {
		return err
	}

	for _, booking := range cohort {
		if booking.Status != entity.BookingStatusPending {
			continue
		}
		account, err := s.lockAccount(ctx, r, booking.UserID)
		if err != nil {
			return err
		}
		currency, amount := bookingFunds(booking)
		if err := s.ledger.Settle(ctx, r, account, currency, amount, "Booking settled on confirmation", booking.ID, "booking"); err != nil {
			return err
		}
		booking.Status = entity.BookingStatusConfirmed
		booking.EverConfirmed = true
		booking.UpdatedAt = now
		if err := r.Booking.Update(ctx, booking); err != nil {
			return err
		}
	}

	// Drop the empty upcoming proposals this confirmation makes stale.
	if slot.InstructorID != nil {
		lookback := time.Duration(s.engine.LookbackMinutes) * time.Minute
		removed, err := r.Slot.DeleteEmptyOpenProposals(ctx, *slot.InstructorID, slot.StartsAt.Add(-lookback), slot.StartsAt)
		if err != nil {
			return err
		}
		if removed > 0 {
			s.log.Info("Stale precursor proposals removed",
				zap.String("slot_id", slot.ID.String()),
				zap.Int64("removed", removed),
			)
		}
	}

	s.log.Info("Slot confirmed",
		zap.String("slot_id", slot.ID.String()),
		zap.String("court_id", courtID.String()),
		zap.Int("cohort", len(cohort)),
	)

	return nil
}

// voidWindow handles NoCourtsAvailable: every booking of every unconfirmed
// slot sharing the window is cancelled and its deposit returned, this slot's
// cohort included. A compensating global failure, not an isolated one.
func (s *bookingService) voidWindow(ctx context.Context, r *repository.Repository, slot *entity.Slot) (int, error) {
	competitors, err := r.Slot.FindCourtlessByWindow(ctx, slot.ClubID, slot.StartsAt, slot.EndsAt, slot.ID)
	if err != nil {
		return 0, err
	}

	refunded := 0
	for _, sl := range append([]*entity.Slot{slot}, competitors...) {
		if sl.ID != slot.ID {
			locked, err := r.Slot.FindByIDForUpdate(ctx, sl.ID)
			if err != nil {
				return refunded, err
			}
			if locked == nil || locked.CourtID != nil {
				continue
			}
			sl = locked
		}

		bookings, err := r.Booking.FindActiveBySlot(ctx, sl.ID)
		if err != nil {
			return refunded, err
		}
		for _, booking := range bookings {
			account, err := s.lockAccount(ctx, r, booking.UserID)
			if err != nil {
				return refunded, err
			}
			currency, amount := bookingFunds(booking)
			if err := s.ledger.Unblock(ctx, r, account, currency, amount, "No courts available, deposit returned", booking.ID, "booking"); err != nil {
				return refunded, err
			}
			booking.Status = entity.BookingStatusCancelled
			booking.UpdatedAt = s.clock.Now()
			if err := r.Booking.Update(ctx, booking); err != nil {
				return refunded, err
			}
			refunded++
		}

		if sl.Classified {
			if err := s.resetEmptiedSlot(ctx, r, sl); err != nil {
				return refunded, err
			}
		}
	}

	s.log.Warn("No courts available, window voided",
		zap.String("slot_id", slot.ID.String()),
		zap.String("club_id", slot.ClubID.String()),
		zap.Time("start", slot.StartsAt),
		zap.Int("refunded", refunded),
	)

	return refunded, nil
}

// lockAccount takes the account row lock, lazily creating an empty account
// for users that never held funds.
func (s *bookingService) lockAccount(ctx context.Context, r *repository.Repository, userID uuid.UUID) (*entity.Account, error) {
	account, err := r.Account.FindByUserForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = entity.NewAccount(userID, s.clock.Now())
		if err := r.Account.Create(ctx, account); err != nil {
			return nil, err
		}
	}
	return account, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: booking ID %s", ErrInvalidInput, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	return response.BookingToResponse(booking), nil
}
