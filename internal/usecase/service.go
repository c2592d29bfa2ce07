package usecase

import (
	"club-booking/internal/data/repository"
	"club-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Config   ConfigService
	Proposal ProposalService
	Race     RaceService
	Booking  BookingService
	Cancel   CancelService
	Slot     SlotService
	Ledger   LedgerService
}

func NewService(repo *repository.Repository, config *utils.Config, clock utils.Clock, log *zap.Logger) *Service {
	engine := config.Engine
	ledger := NewLedger(clock, log)
	cfg := NewConfigService(repo, engine, log)
	proposals := NewProposalService(repo, cfg, engine, clock, log)
	race := NewRaceService(repo, proposals, ledger, engine, clock, log)

	return &Service{
		Config:   cfg,
		Proposal: proposals,
		Race:     race,
		Booking:  NewBookingService(repo, cfg, proposals, race, ledger, engine, clock, log),
		Cancel:   NewCancelService(repo, proposals, ledger, engine, clock, log),
		Slot:     NewSlotService(repo, cfg, log),
		Ledger:   NewLedgerService(repo, clock, log),
	}
}
