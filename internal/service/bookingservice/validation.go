package bookingservice

import (
	"fmt"
	"time"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
)

// validateStay confere o intervalo e o número de hóspedes contra as
// configurações e a capacidade da cabana. Retorna o número de noites.
func validateStay(settings domain.Settings, cabin domain.Cabin, start, end time.Time, numGuests int) (int, error) {
	if !start.Before(end) {
		return 0, apperror.NewValidationError("A data de início deve ser anterior à data de fim.")
	}

	nights := domain.NightsBetween(start, end)
	if nights < settings.MinBookingLength {
		return 0, apperror.NewValidationError(fmt.Sprintf("A estadia mínima é de %d noites.", settings.MinBookingLength))
	}
	if settings.MaxBookingLength > 0 && nights > settings.MaxBookingLength {
		return 0, apperror.NewValidationError(fmt.Sprintf("A estadia máxima é de %d noites.", settings.MaxBookingLength))
	}

	if numGuests < 1 {
		return 0, apperror.NewValidationError("A reserva deve ter pelo menos um hóspede.")
	}
	maxGuests := cabin.MaxCapacity
	if settings.MaxGuestsPerBooking > 0 && settings.MaxGuestsPerBooking < maxGuests {
		maxGuests = settings.MaxGuestsPerBooking
	}
	if numGuests > maxGuests {
		return 0, apperror.NewValidationError(fmt.Sprintf("O número máximo de hóspedes para esta cabana é %d.", maxGuests))
	}

	return nights, nil
}
