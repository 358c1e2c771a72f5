package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/logger"
	"gocabin/internal/pkg/middleware"
	"gocabin/internal/pkg/response"
)

// BookingService define o contrato que o Handler espera da camada de Serviço.
type BookingService interface {
	ListBookings(ctx context.Context, guestID string) ([]domain.BookingWithCabin, error)
	GetBooking(ctx context.Context, guestID, bookingID string) (domain.Booking, error)
	CreateBooking(ctx context.Context, guestID string, draft domain.BookingDraft) (domain.Booking, error)
	UpdateBooking(ctx context.Context, guestID, bookingID string, update domain.BookingUpdate) (domain.Booking, error)
	CancelBooking(ctx context.Context, guestID, bookingID string) (domain.Booking, error)
	DeleteBooking(ctx context.Context, guestID, bookingID string) error
	BlockedDates(ctx context.Context, cabinID string) ([]string, error)
	GetSettings(ctx context.Context) (domain.Settings, error)
}

// createRequest é o payload de POST /v1/bookings. Datas no formato YYYY-MM-DD.
type createRequest struct {
	CabinID    string  `json:"cabin_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	NumGuests  int     `json:"num_guests"`
	TotalPrice float64 `json:"total_price"`
}

// updateRequest é o payload de PATCH /v1/bookings/{id}; campos ausentes não mudam.
type updateRequest struct {
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"`
	NumGuests  *int     `json:"num_guests"`
	TotalPrice *float64 `json:"total_price"`
	Status     *string  `json:"status"`
}

type blockedDatesResponse struct {
	CabinID string   `json:"cabin_id"`
	Dates   []string `json:"dates"`
}

// Handler agrupa todos os métodos de Handler de reservas.
type Handler struct {
	Service BookingService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc BookingService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ListBookingsHandler lida com a requisição GET /v1/bookings.
func (h *Handler) ListBookingsHandler(w http.ResponseWriter, r *http.Request) {
	guestID, err := guestFromRequest(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	bookings, err := h.Service.ListBookings(r.Context(), guestID)
	response.Handle(w, r, h.Logger, bookings, err, http.StatusOK)
}

// CreateBookingHandler lida com a requisição POST /v1/bookings.
func (h *Handler) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	guestID, err := guestFromRequest(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.Logger, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.CreateBooking(r.Context(), guestID, domain.BookingDraft{
		CabinID:    req.CabinID,
		StartDate:  start,
		EndDate:    end,
		NumGuests:  req.NumGuests,
		TotalPrice: req.TotalPrice,
	})
	response.Handle(w, r, h.Logger, created, err, http.StatusCreated)
}

// GetBookingHandler lida com a requisição GET /v1/bookings/{id}.
func (h *Handler) GetBookingHandler(w http.ResponseWriter, r *http.Request) {
	guestID, err := guestFromRequest(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	b, err := h.Service.GetBooking(r.Context(), guestID, r.PathValue("id"))
	response.Handle(w, r, h.Logger, b, err, http.StatusOK)
}

// UpdateBookingHandler lida com a requisição PATCH /v1/bookings/{id}.
func (h *Handler) UpdateBookingHandler(w http.ResponseWriter, r *http.Request) {
	guestID, err := guestFromRequest(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.Logger, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	update, err := req.toUpdate()
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.UpdateBooking(r.Context(), guestID, r.PathValue("id"), update)
	response.Handle(w, r, h.Logger, updated, err, http.StatusOK)
}

// CancelBookingHandler lida com a requisição POST /v1/bookings/{id}/cancel.
func (h *Handler) CancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	guestID, err := guestFromRequest(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	cancelled, err := h.Service.CancelBooking(r.Context(), guestID, r.PathValue("id"))
	response.Handle(w, r, h.Logger, cancelled, err, http.StatusOK)
}

// DeleteBookingHandler lida com a requisição DELETE /v1/bookings/{id}.
func (h *Handler) DeleteBookingHandler(w http.ResponseWriter, r *http.Request) {
	guestID, err := guestFromRequest(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	err = h.Service.DeleteBooking(r.Context(), guestID, r.PathValue("id"))
	response.Handle(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// BlockedDatesHandler lida com a requisição GET /v1/cabins/{id}/blocked-dates.
func (h *Handler) BlockedDatesHandler(w http.ResponseWriter, r *http.Request) {
	cabinID := r.PathValue("id")
	dates, err := h.Service.BlockedDates(r.Context(), cabinID)
	response.Handle(w, r, h.Logger, blockedDatesResponse{CabinID: cabinID, Dates: dates}, err, http.StatusOK)
}

// SettingsHandler lida com a requisição GET /v1/settings.
func (h *Handler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.GetSettings(r.Context())
	response.Handle(w, r, h.Logger, settings, err, http.StatusOK)
}

func (req updateRequest) toUpdate() (domain.BookingUpdate, error) {
	update := domain.BookingUpdate{
		NumGuests:  req.NumGuests,
		TotalPrice: req.TotalPrice,
	}
	if req.StartDate != nil {
		start, err := parseDate("start_date", *req.StartDate)
		if err != nil {
			return domain.BookingUpdate{}, err
		}
		update.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate("end_date", *req.EndDate)
		if err != nil {
			return domain.BookingUpdate{}, err
		}
		update.EndDate = &end
	}
	if req.Status != nil {
		status := domain.BookingStatus(*req.Status)
		update.Status = &status
	}
	return update, nil
}

func guestFromRequest(r *http.Request) (string, error) {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok || s.User.GuestID == "" {
		return "", apperror.NewUnauthorizedError("Autorização necessária.")
	}
	return s.User.GuestID, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, apperror.NewValidationError(field + " deve estar no formato YYYY-MM-DD.")
	}
	return t, nil
}
