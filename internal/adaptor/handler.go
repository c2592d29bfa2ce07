package adaptor

import (
	"errors"
	"net/http"

	"club-booking/internal/usecase"
	"club-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking  *BookingHandler
	Slot     *SlotHandler
	Proposal *ProposalHandler
	Account  *AccountHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking:  NewBookingHandler(service.Booking, service.Cancel, log),
		Slot:     NewSlotHandler(service.Slot, log),
		Proposal: NewProposalHandler(service.Proposal, log),
		Account:  NewAccountHandler(service.Ledger, log),
	}
}

// handleServiceError maps the engine error taxonomy onto HTTP statuses:
// not-found 404, state conflicts 409, rejected preconditions 422.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrSlotNotFound),
		errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrClubNotFound),
		errors.Is(err, usecase.ErrBookingNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrSlotFull),
		errors.Is(err, usecase.ErrAlreadyBooked),
		errors.Is(err, usecase.ErrAlreadyCancelled):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrIncompatibleProfile),
		errors.Is(err, usecase.ErrInsufficientFunds),
		errors.Is(err, usecase.ErrPointsOnly):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseUnprocessable(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidInput):
		log.Warn(operation+" failed - bad input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
