package common

import (
	"errors"
	"fmt"

	"typerbot/service"
)

// UserMessage translates a service error into the text shown to the user.
// Persistence and unexpected errors get a generic message.
func UserMessage(err error, minStake int64) string {
	switch {
	case errors.Is(err, service.ErrStakeTooLow):
		return fmt.Sprintf("Minimalna stawka to **%d** punktów.", minStake)
	case errors.Is(err, service.ErrInsufficientBalance):
		return "Nie masz wystarczającej ilości punktów!"
	case errors.Is(err, service.ErrInvalidSelection):
		return "Nieprawidłowy typ zakładu. Wybierz 1, X lub 2."
	case errors.Is(err, service.ErrMatchStarted):
		return "Ten mecz już się rozpoczął lub zakończył!"
	case errors.Is(err, service.ErrUnknownMatch):
		return "Nie znaleziono meczu o podanym ID."
	case errors.Is(err, service.ErrInvalidOdds):
		return "Kurs dla tego meczu jest niedostępny."
	case errors.Is(err, service.ErrOracleUnavailable):
		return "Serwis z danymi meczów jest chwilowo niedostępny. Spróbuj ponownie za chwilę."
	case errors.Is(err, service.ErrValidation):
		return "Nieprawidłowe dane zakładu."
	}
	return "Wystąpił błąd. Spróbuj ponownie później."
}
