package usecase

import "errors"

// Engine error taxonomy. Handlers map these with errors.Is; precondition
// failures never leave partial state behind.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUserNotFound        = errors.New("user not found")
	ErrClubNotFound        = errors.New("club not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotFull            = errors.New("slot is already at capacity")
	ErrAlreadyBooked       = errors.New("user already holds an active booking on this slot")
	ErrIncompatibleProfile = errors.New("user level or gender does not match the slot")
	ErrInsufficientFunds   = errors.New("insufficient available balance")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrPointsOnly          = errors.New("recycled spots can only be paid with points")
)
