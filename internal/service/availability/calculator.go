package availability

import (
	"context"
	"sort"
	"time"

	"gocabin/internal/domain"
	"gocabin/internal/pkg/logger"
)

// BookingLister define o contrato de leitura das reservas ativas de uma cabana.
type BookingLister interface {
	ListActiveByCabin(ctx context.Context, cabinID string) ([]domain.Booking, error)
}

// Calculator deriva as datas bloqueadas de uma cabana a partir das reservas.
// Não há cache: cada chamada relê o banco.
type Calculator struct {
	repo   BookingLister
	logger logger.Logger
}

// NewCalculator cria o calculador de disponibilidade.
func NewCalculator(repo BookingLister, logger logger.Logger) *Calculator {
	return &Calculator{repo: repo, logger: logger}
}

// BlockedDates retorna as datas (yyyy-MM-dd) ocupadas por reservas unconfirmed
// ou checked-in da cabana. Cada reserva bloqueia do início ao fim, ambos inclusos.
// O resultado é um conjunto; a ordenação serve apenas para estabilidade.
func (c *Calculator) BlockedDates(ctx context.Context, cabinID string) ([]string, error) {
	return c.BlockedDatesExcluding(ctx, cabinID, "")
}

// BlockedDatesExcluding é como BlockedDates, mas ignora a reserva bookingID.
// Usado quando o hóspede altera as datas da própria reserva.
func (c *Calculator) BlockedDatesExcluding(ctx context.Context, cabinID, bookingID string) ([]string, error) {
	bookings, err := c.repo.ListActiveByCabin(ctx, cabinID)
	if err != nil {
		c.logger.Error("Falha ao carregar reservas para cálculo de disponibilidade.", err)
		return nil, err
	}

	set := make(map[string]struct{})
	for _, b := range bookings {
		if !b.Status.BlocksAvailability() || (bookingID != "" && b.ID == bookingID) {
			continue
		}
		for _, day := range ExpandInclusive(b.StartDate, b.EndDate) {
			set[day] = struct{}{}
		}
	}

	dates := make([]string, 0, len(set))
	for day := range set {
		dates = append(dates, day)
	}
	sort.Strings(dates)

	c.logger.Debug("Datas bloqueadas calculadas.", map[string]interface{}{"cabin_id": cabinID, "total": len(dates)})
	return dates, nil
}

// ExpandInclusive enumera dia a dia de start até end, ambos inclusos.
// Um intervalo invertido resulta em slice vazio.
func ExpandInclusive(start, end time.Time) []string {
	first, last := domain.Day(start), domain.Day(end)
	var days []string
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(domain.DateLayout))
	}
	return days
}

// IsRangeAvailable informa se nenhum dia do intervalo [start, end] está bloqueado.
func IsRangeAvailable(blocked []string, start, end time.Time) bool {
	set := make(map[string]struct{}, len(blocked))
	for _, day := range blocked {
		set[day] = struct{}{}
	}
	for _, day := range ExpandInclusive(start, end) {
		if _, taken := set[day]; taken {
			return false
		}
	}
	return true
}
