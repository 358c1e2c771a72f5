package domain

// Settings é o registro singleton com as regras de reserva.
// É provisionado fora deste serviço e nunca possui valores padrão.
type Settings struct {
	MinBookingLength    int     `json:"min_booking_length"`
	MaxBookingLength    int     `json:"max_booking_length"`
	MaxGuestsPerBooking int     `json:"max_guests_per_booking"`
	BreakfastPrice      float64 `json:"breakfast_price"`
}
