package bookingrepo

import (
	"context"
	"database/sql"
	"errors"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
)

// GetSettings carrega o registro singleton de configurações de reserva.
// A ausência do registro é um erro: não existe valor padrão aceitável.
func (r *BookingRepository) GetSettings(ctx context.Context) (domain.Settings, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT min_booking_length, max_booking_length, max_guests_per_booking, breakfast_price
        FROM settings
        LIMIT 1`

	var s domain.Settings
	err := r.DB.QueryRowContext(ctxTimeout, query).Scan(
		&s.MinBookingLength, &s.MaxBookingLength, &s.MaxGuestsPerBooking, &s.BreakfastPrice,
	)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Error("Registro de configurações ausente.", err)
		return domain.Settings{}, apperror.NewNotFoundError("Configurações de reserva não provisionadas.")
	}
	if err != nil {
		r.logger.Error("Falha ao carregar configurações no DB.", err)
		return domain.Settings{}, apperror.NewDBError("getSettings", err)
	}
	return s, nil
}
