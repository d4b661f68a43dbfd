package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the parent of every rejected-input error
	ErrValidation       = errors.New("validation failed")
	ErrStakeTooLow      = fmt.Errorf("%w: stake below minimum", ErrValidation)
	ErrInvalidSelection = fmt.Errorf("%w: selection must be home, draw or away", ErrValidation)
	ErrInvalidOdds      = fmt.Errorf("%w: odds must be greater than 1", ErrValidation)
	ErrMatchStarted     = fmt.Errorf("%w: match already started", ErrValidation)

	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrNotFound     = errors.New("not found")
	ErrUnknownMatch = fmt.Errorf("%w: unknown match", ErrNotFound)

	ErrOracleUnavailable = errors.New("match oracle unavailable")
	ErrPersistence       = errors.New("persistence failure")
)

// persistenceError tags a storage failure so callers can match it with errors.Is
func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
