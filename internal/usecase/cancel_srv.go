package usecase

import (
	"context"
	"fmt"

	"club-booking/internal/data/entity"
	"club-booking/internal/data/repository"
	"club-booking/internal/dto/response"
	"club-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CancelService interface {
	CancelBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)
}

type cancelService struct {
	settlement
	repo *repository.Repository
}

func NewCancelService(repo *repository.Repository, proposals ProposalService, ledger *Ledger, engine utils.EngineConfig, clock utils.Clock, log *zap.Logger) CancelService {
	return &cancelService{
		settlement: settlement{
			proposals: proposals,
			ledger:    ledger,
			engine:    engine,
			clock:     clock,
			log:       log.With(zap.String("service", "cancel")),
		},
		repo: repo,
	}
}

func (s *cancelService) CancelBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: booking ID %s", ErrInvalidInput, bookingID)
	}

	var cancelled *entity.Booking
	err = s.repo.WithinTx(ctx, func(r *repository.Repository) error {
		booking, err := r.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if booking.Status == entity.BookingStatusCancelled {
			return ErrAlreadyCancelled
		}

		if err := s.cancelActiveBooking(ctx, r, booking); err != nil {
			return err
		}

		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", cancelled.ID.String()),
		zap.String("user_id", cancelled.UserID.String()),
	)

	return response.BookingToResponse(cancelled), nil
}
