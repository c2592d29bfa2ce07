package usecase

import (
	"context"
	"fmt"

	"club-booking/internal/data/entity"
	"club-booking/internal/data/repository"
	"club-booking/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// settlement is the cancel branch logic shared by the participant-facing
// cancellation handler and the race resolver sweeps. All methods run on the
// caller's transaction.
type settlement struct {
	proposals ProposalService
	ledger    *Ledger
	engine    utils.EngineConfig
	clock     utils.Clock
	log       *zap.Logger
}

// cancelActiveBooking cancels one non-cancelled booking: pending deposits are
// unblocked, confirmed charges become compensation (points grant for credits
// payments, points refund for point payments). Slot bookkeeping follows: a
// freed confirmed spot becomes a recycled, points-only unit; an emptied slot
// resets to an open proposal and, when it had a court, its removed precursor
// proposals are restored.
func (s *settlement) cancelActiveBooking(ctx context.Context, r *repository.Repository, booking *entity.Booking) error {
	slot, err := r.Slot.FindByIDForUpdate(ctx, booking.SlotID)
	if err != nil {
		return err
	}
	if slot == nil {
		return fmt.Errorf("slot %s of booking %s: %w", booking.SlotID.String(), booking.ID.String(), ErrSlotNotFound)
	}

	account, err := r.Account.FindByUserForUpdate(ctx, booking.UserID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("account of user %s: %w", booking.UserID.String(), ErrUserNotFound)
	}

	wasConfirmed := booking.Status == entity.BookingStatusConfirmed

	switch booking.Status {
	case entity.BookingStatusPending:
		currency, amount := bookingFunds(booking)
		if err := s.ledger.Unblock(ctx, r, account, currency, amount, "Booking cancelled, deposit released", booking.ID, "booking"); err != nil {
			return err
		}

	case entity.BookingStatusConfirmed:
		if booking.Method == entity.PaymentMethodCredits {
			points, err := s.ledger.GrantCompensationPoints(ctx, r, account, booking.AmountBlocked, booking.ID, "booking")
			if err != nil {
				return err
			}
			s.log.Info("Compensation points granted",
				zap.String("booking_id", booking.ID.String()),
				zap.String("user_id", booking.UserID.String()),
				zap.Int64("points", points),
			)
		} else {
			amount := decimal.NewFromInt(booking.PointsUsed)
			if err := s.ledger.Refund(ctx, r, account, entity.CurrencyPoints, amount, "Booking cancelled, points returned", booking.ID, "booking"); err != nil {
				return err
			}
		}
	}

	now := s.clock.Now()
	booking.Status = entity.BookingStatusCancelled
	booking.UpdatedAt = now
	if err := r.Booking.Update(ctx, booking); err != nil {
		return err
	}

	remaining, err := r.Booking.FindActiveBySlot(ctx, slot.ID)
	if err != nil {
		return err
	}

	if len(remaining) == 0 {
		return s.resetEmptiedSlot(ctx, r, slot)
	}

	if wasConfirmed {
		// The cohort already paid for the court; the freed spot is
		// re-offered points-only so nobody is billed credits twice.
		slot.RecycledUnits++
		slot.UpdatedAt = now
		if err := r.Slot.Update(ctx, slot); err != nil {
			return err
		}
	}

	return nil
}

// resetEmptiedSlot returns a slot with no active bookings to the open,
// unclassified, courtless state and restores the proposal landscape around it.
func (s *settlement) resetEmptiedSlot(ctx context.Context, r *repository.Repository, slot *entity.Slot) error {
	hadCourt := slot.CourtID != nil

	slot.Reset()
	slot.UpdatedAt = s.clock.Now()
	if err := r.Slot.Update(ctx, slot); err != nil {
		return err
	}

	// The reset slot is itself the open proposal for its window again. The
	// sibling spawned when it classified would now be a duplicate; exactly one
	// open proposal survives per club/kind/instructor/window.
	removed, err := r.Slot.DeleteOpenDuplicates(ctx, slot)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.log.Info("Duplicate open proposals removed",
			zap.String("slot_id", slot.ID.String()),
			zap.Int64("removed", removed),
		)
	}

	if hadCourt {
		created, err := s.proposals.RegeneratePrecursors(ctx, r, slot)
		if err != nil {
			return err
		}
		if created > 0 {
			s.log.Info("Precursor proposals restored",
				zap.String("slot_id", slot.ID.String()),
				zap.Int("created", created),
			)
		}
	}

	return nil
}

// bookingFunds returns the currency and amount a booking holds against the
// ledger.
func bookingFunds(b *entity.Booking) (entity.Currency, decimal.Decimal) {
	if b.Method == entity.PaymentMethodPoints {
		return entity.CurrencyPoints, decimal.NewFromInt(b.PointsUsed)
	}
	return entity.CurrencyCredits, b.AmountBlocked
}
