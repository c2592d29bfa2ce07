package usecase

import (
	"context"
	"fmt"
	"time"

	"club-booking/internal/data/repository"
	"club-booking/internal/dto/request"
	"club-booking/internal/dto/response"
	"club-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SlotService interface {
	ListSlots(ctx context.Context, req *request.ListSlotsRequest) ([]*response.SlotResponse, error)
	GetSlot(ctx context.Context, slotID string) (*response.SlotDetailResponse, error)
}

type slotService struct {
	repo   *repository.Repository
	config ConfigService
	log    *zap.Logger
}

func NewSlotService(repo *repository.Repository, config ConfigService, log *zap.Logger) SlotService {
	return &slotService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "slot")),
	}
}

func (s *slotService) ListSlots(ctx context.Context, req *request.ListSlotsRequest) ([]*response.SlotResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("List slots validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationErrors(errs))
	}

	clubID, err := uuid.Parse(req.ClubID)
	if err != nil {
		return nil, fmt.Errorf("%w: club ID %s", ErrInvalidInput, req.ClubID)
	}

	if _, err := s.config.Club(ctx, clubID); err != nil {
		return nil, err
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %s", ErrInvalidInput, req.Date)
	}

	slots, err := s.repo.Slot.FindByClubAndDay(ctx, clubID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	results := make([]*response.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		active, err := s.repo.Booking.FindActiveBySlot(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, response.SlotToResponse(slot, len(active)))
	}

	return results, nil
}

func (s *slotService) GetSlot(ctx context.Context, slotID string) (*response.SlotDetailResponse, error) {
	id, err := uuid.Parse(slotID)
	if err != nil {
		return nil, fmt.Errorf("%w: slot ID %s", ErrInvalidInput, slotID)
	}

	slot, err := s.repo.Slot.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	bookings, err := s.repo.Booking.FindBySlot(ctx, slot.ID)
	if err != nil {
		return nil, err
	}

	active := 0
	items := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		if b.Active() {
			active++
		}
		items = append(items, *response.BookingToResponse(b))
	}

	return &response.SlotDetailResponse{
		SlotResponse: *response.SlotToResponse(slot, active),
		Bookings:     items,
	}, nil
}
