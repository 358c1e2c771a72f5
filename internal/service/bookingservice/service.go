package bookingservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/events"
	"gocabin/internal/pkg/logger"
	"gocabin/internal/pkg/metrics"
	"gocabin/internal/service/availability"
)

// BookingRepository define o contrato que o Serviço de Reservas espera da camada de Persistência.
type BookingRepository interface {
	ListByGuest(ctx context.Context, guestID string) ([]domain.BookingWithCabin, error)
	FindByID(ctx context.Context, id string) (domain.Booking, error)
	Create(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	Update(ctx context.Context, id string, update domain.BookingUpdate) (domain.Booking, error)
	Delete(ctx context.Context, id string) error
	GetSettings(ctx context.Context) (domain.Settings, error)
}

// CabinReader lê os dados de referência da cabana.
type CabinReader interface {
	FindByID(ctx context.Context, id string) (domain.Cabin, error)
}

// AvailabilityChecker calcula as datas bloqueadas de uma cabana.
type AvailabilityChecker interface {
	BlockedDates(ctx context.Context, cabinID string) ([]string, error)
	BlockedDatesExcluding(ctx context.Context, cabinID, bookingID string) ([]string, error)
}

// Service implementa o fluxo de reservas do hóspede.
//
// A verificação de disponibilidade e a inserção são chamadas separadas ao
// banco: duas criações simultâneas para as mesmas datas podem ambas passar.
type Service struct {
	bookings     BookingRepository
	cabins       CabinReader
	availability AvailabilityChecker
	publisher    events.Publisher
	logger       logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Reservas.
func NewService(bookings BookingRepository, cabins CabinReader, availability AvailabilityChecker, publisher events.Publisher, logger logger.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		bookings:     bookings,
		cabins:       cabins,
		availability: availability,
		publisher:    publisher,
		logger:       logger,
	}
}

// ListBookings retorna as reservas do hóspede; nenhuma reserva não é erro.
func (s *Service) ListBookings(ctx context.Context, guestID string) ([]domain.BookingWithCabin, error) {
	if guestID == "" {
		return nil, apperror.NewUnauthorizedError("Sessão sem hóspede associado.")
	}
	bookings, err := s.bookings.ListByGuest(ctx, guestID)
	if err != nil {
		s.logger.Error("Falha ao listar reservas do hóspede.", err)
		return nil, err
	}
	return bookings, nil
}

// GetBooking retorna uma reserva do hóspede. Reservas de outro hóspede são tratadas como inexistentes.
func (s *Service) GetBooking(ctx context.Context, guestID, bookingID string) (domain.Booking, error) {
	if err := validateBookingID(bookingID); err != nil {
		return domain.Booking{}, err
	}
	return s.ownedBooking(ctx, guestID, bookingID)
}

// CreateBooking valida o rascunho, confere a disponibilidade e insere a reserva como unconfirmed.
func (s *Service) CreateBooking(ctx context.Context, guestID string, draft domain.BookingDraft) (domain.Booking, error) {
	s.logger.Debug("Iniciando criação de reserva no serviço.", map[string]interface{}{"guest_id": guestID, "cabin_id": draft.CabinID})

	// 1. Validações de entrada
	if guestID == "" {
		return domain.Booking{}, apperror.NewUnauthorizedError("Sessão sem hóspede associado.")
	}
	if err := validateCabinID(draft.CabinID); err != nil {
		return domain.Booking{}, err
	}
	if draft.StartDate.IsZero() || draft.EndDate.IsZero() {
		return domain.Booking{}, apperror.NewValidationError("As datas de início e fim são obrigatórias.")
	}
	if draft.TotalPrice < 0 {
		return domain.Booking{}, apperror.NewValidationError("O preço total não pode ser negativo.")
	}
	start, end := domain.Day(draft.StartDate), domain.Day(draft.EndDate)

	// 2. Regras da cabana e das configurações
	cabin, err := s.cabins.FindByID(ctx, draft.CabinID)
	if err != nil {
		return domain.Booking{}, err
	}
	settings, err := s.bookings.GetSettings(ctx)
	if err != nil {
		s.logger.Error("Falha ao carregar configurações de reserva.", err)
		return domain.Booking{}, err
	}
	nights, err := validateStay(settings, cabin, start, end, draft.NumGuests)
	if err != nil {
		return domain.Booking{}, err
	}

	// 3. Checagem de disponibilidade imediatamente antes da inserção
	blocked, err := s.availability.BlockedDates(ctx, cabin.ID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !availability.IsRangeAvailable(blocked, start, end) {
		s.logger.Warn("Datas solicitadas já estão ocupadas.", map[string]interface{}{"cabin_id": cabin.ID, "start": start.Format(domain.DateLayout), "end": end.Format(domain.DateLayout)})
		return domain.Booking{}, apperror.NewConflictError("As datas selecionadas já estão reservadas para esta cabana.")
	}

	// 4. Persistência
	created, err := s.bookings.Create(ctx, domain.Booking{
		GuestID:    guestID,
		CabinID:    cabin.ID,
		StartDate:  start,
		EndDate:    end,
		NumNights:  nights,
		NumGuests:  draft.NumGuests,
		TotalPrice: draft.TotalPrice,
		Status:     domain.StatusUnconfirmed,
	})
	metrics.BookingOperation("create", err)
	if err != nil {
		s.logger.Error("Falha ao criar reserva no repositório.", err)
		return domain.Booking{}, err
	}

	s.publish(ctx, events.BookingCreated, created)
	s.logger.Info("Reserva criada com sucesso.", map[string]interface{}{"booking_id": created.ID, "cabin_id": created.CabinID})
	return created, nil
}

// UpdateBooking aplica uma atualização parcial numa reserva do hóspede.
// NumNights é sempre recalculado a partir das datas; o valor recebido é ignorado.
func (s *Service) UpdateBooking(ctx context.Context, guestID, bookingID string, update domain.BookingUpdate) (domain.Booking, error) {
	if err := validateBookingID(bookingID); err != nil {
		return domain.Booking{}, err
	}
	current, err := s.ownedBooking(ctx, guestID, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}

	update.NumNights = nil
	if update.IsEmpty() {
		return current, nil
	}

	// 1. Transição de status
	if update.Status != nil {
		next := *update.Status
		if !next.Valid() {
			return domain.Booking{}, apperror.NewValidationError(fmt.Sprintf("Status '%s' inválido.", next))
		}
		if !current.Status.CanTransitionTo(next) {
			return domain.Booking{}, apperror.NewValidationError(fmt.Sprintf("Não é possível alterar o status de '%s' para '%s'.", current.Status, next))
		}
	}

	// 2. Alteração de datas, hóspedes ou preço
	changesStay := update.StartDate != nil || update.EndDate != nil || update.NumGuests != nil
	if changesStay || update.TotalPrice != nil {
		if !current.Status.BlocksAvailability() {
			return domain.Booking{}, apperror.NewValidationError("Reservas encerradas ou canceladas não podem ser alteradas.")
		}
	}
	if update.TotalPrice != nil && *update.TotalPrice < 0 {
		return domain.Booking{}, apperror.NewValidationError("O preço total não pode ser negativo.")
	}
	if changesStay {
		if err := s.revalidateStay(ctx, current, &update); err != nil {
			return domain.Booking{}, err
		}
	}

	// 3. Persistência
	updated, err := s.bookings.Update(ctx, bookingID, update)
	metrics.BookingOperation("update", err)
	if err != nil {
		s.logger.Error("Falha ao atualizar reserva no repositório.", err)
		return domain.Booking{}, err
	}

	s.publish(ctx, events.BookingUpdated, updated)
	s.logger.Info("Reserva atualizada com sucesso.", map[string]interface{}{"booking_id": updated.ID, "status": updated.Status})
	return updated, nil
}

// CancelBooking muda o status da reserva para cancelled, liberando as datas.
func (s *Service) CancelBooking(ctx context.Context, guestID, bookingID string) (domain.Booking, error) {
	status := domain.StatusCancelled
	return s.UpdateBooking(ctx, guestID, bookingID, domain.BookingUpdate{Status: &status})
}

// DeleteBooking remove definitivamente uma reserva do hóspede.
// Um ID inexistente é reportado como NotFound.
func (s *Service) DeleteBooking(ctx context.Context, guestID, bookingID string) error {
	if err := validateBookingID(bookingID); err != nil {
		return err
	}
	current, err := s.ownedBooking(ctx, guestID, bookingID)
	if err != nil {
		return err
	}

	err = s.bookings.Delete(ctx, bookingID)
	metrics.BookingOperation("delete", err)
	if err != nil {
		s.logger.Error("Falha ao deletar reserva no repositório.", err)
		return err
	}

	s.publish(ctx, events.BookingDeleted, current)
	s.logger.Info("Reserva deletada com sucesso.", map[string]interface{}{"booking_id": bookingID})
	return nil
}

// BlockedDates retorna as datas ocupadas da cabana.
func (s *Service) BlockedDates(ctx context.Context, cabinID string) ([]string, error) {
	if err := validateCabinID(cabinID); err != nil {
		return nil, err
	}
	return s.availability.BlockedDates(ctx, cabinID)
}

// GetSettings retorna as configurações de reserva.
func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.bookings.GetSettings(ctx)
}

// revalidateStay aplica as regras de estadia sobre o resultado da atualização
// e confere as datas contra as demais reservas da cabana.
func (s *Service) revalidateStay(ctx context.Context, current domain.Booking, update *domain.BookingUpdate) error {
	start, end, guests := current.StartDate, current.EndDate, current.NumGuests
	if update.StartDate != nil {
		start = domain.Day(*update.StartDate)
		update.StartDate = &start
	}
	if update.EndDate != nil {
		end = domain.Day(*update.EndDate)
		update.EndDate = &end
	}
	if update.NumGuests != nil {
		guests = *update.NumGuests
	}

	cabin, err := s.cabins.FindByID(ctx, current.CabinID)
	if err != nil {
		return err
	}
	settings, err := s.bookings.GetSettings(ctx)
	if err != nil {
		return err
	}
	nights, err := validateStay(settings, cabin, start, end, guests)
	if err != nil {
		return err
	}

	if update.StartDate == nil && update.EndDate == nil {
		return nil
	}
	update.NumNights = &nights

	blocked, err := s.availability.BlockedDatesExcluding(ctx, current.CabinID, current.ID)
	if err != nil {
		return err
	}
	if !availability.IsRangeAvailable(blocked, start, end) {
		return apperror.NewConflictError("As novas datas já estão reservadas para esta cabana.")
	}
	return nil
}

func (s *Service) ownedBooking(ctx context.Context, guestID, bookingID string) (domain.Booking, error) {
	if guestID == "" {
		return domain.Booking{}, apperror.NewUnauthorizedError("Sessão sem hóspede associado.")
	}
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if booking.GuestID != guestID {
		s.logger.Warn("Hóspede tentou acessar reserva de outro hóspede.", map[string]interface{}{"guest_id": guestID, "booking_id": bookingID})
		return domain.Booking{}, apperror.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não encontrada.", bookingID))
	}
	return booking, nil
}

func (s *Service) publish(ctx context.Context, routingKey string, b domain.Booking) {
	if err := s.publisher.Publish(ctx, routingKey, events.NewBookingEvent(routingKey, b)); err != nil {
		s.logger.Warn("Falha ao publicar evento de reserva.", map[string]interface{}{"event": routingKey, "booking_id": b.ID, "error": err.Error()})
	}
}

func validateBookingID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da reserva deve ser um UUID válido.")
	}
	return nil
}

func validateCabinID(id string) error {
	if id == "" {
		return apperror.NewValidationError("A cabana é obrigatória.")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da cabana deve ser um UUID válido.")
	}
	return nil
}
