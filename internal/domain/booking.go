package domain

import (
	"time"
)

// DateLayout é o formato de data de calendário usado na API e nas datas bloqueadas.
const DateLayout = "2006-01-02"

// BookingStatus é o estado de uma reserva.
type BookingStatus string

const (
	StatusUnconfirmed BookingStatus = "unconfirmed"
	StatusCheckedIn   BookingStatus = "checked-in"
	StatusCheckedOut  BookingStatus = "checked-out"
	StatusCancelled   BookingStatus = "cancelled"
)

// Valid informa se o status pertence ao conjunto fechado de estados.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusUnconfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// BlocksAvailability informa se uma reserva neste status ocupa as datas da cabana.
// Apenas reservas não confirmadas ou com check-in bloqueiam novas reservas.
func (s BookingStatus) BlocksAvailability() bool {
	return s == StatusUnconfirmed || s == StatusCheckedIn
}

// CanTransitionTo define a máquina de estados da reserva:
// unconfirmed -> checked-in -> checked-out, e unconfirmed|checked-in -> cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusUnconfirmed:
		return next == StatusCheckedIn || next == StatusCancelled
	case StatusCheckedIn:
		return next == StatusCheckedOut || next == StatusCancelled
	}
	return false
}

// Booking representa uma reserva de cabana de um hóspede.
type Booking struct {
	ID         string        `json:"id"`
	GuestID    string        `json:"guest_id"`
	CabinID    string        `json:"cabin_id"`
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
	NumNights  int           `json:"num_nights"`
	NumGuests  int           `json:"num_guests"`
	TotalPrice float64       `json:"total_price"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// BookingWithCabin é a reserva com os campos mínimos de exibição da cabana.
type BookingWithCabin struct {
	Booking
	Cabin CabinSummary `json:"cabin"`
}

// BookingDraft é o payload de criação de reserva já convertido para tipos de domínio.
// NumNights é sempre calculado a partir das datas.
type BookingDraft struct {
	CabinID    string
	StartDate  time.Time
	EndDate    time.Time
	NumGuests  int
	TotalPrice float64
}

// BookingUpdate representa uma atualização parcial de reserva.
// Campos nil não são alterados.
type BookingUpdate struct {
	StartDate  *time.Time
	EndDate    *time.Time
	NumNights  *int
	NumGuests  *int
	TotalPrice *float64
	Status     *BookingStatus
}

// IsEmpty informa se nenhum campo foi definido.
func (u BookingUpdate) IsEmpty() bool {
	return u.StartDate == nil && u.EndDate == nil && u.NumNights == nil &&
		u.NumGuests == nil && u.TotalPrice == nil && u.Status == nil
}

// Day trunca um instante para a data de calendário em UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NightsBetween retorna o número de noites entre duas datas de calendário.
func NightsBetween(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours() / 24)
}
