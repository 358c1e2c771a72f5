package bookingrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/database"
	"gocabin/internal/pkg/logger"
)

const bookingColumns = `id, guest_id, cabin_id, start_date, end_date, num_nights, num_guests, total_price, status, created_at`

// rowScanner é satisfeito por *sql.Row e *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// BookingRepository implementa as operações sobre as tabelas bookings e settings.
type BookingRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewBookingRepository cria e retorna uma nova instância do Repositório de Reservas.
func NewBookingRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *BookingRepository {
	return &BookingRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// ListByGuest busca as reservas do hóspede com os campos de exibição da cabana,
// ordenadas por data de início. Nenhuma reserva resulta em slice vazio, não em erro.
func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]domain.BookingWithCabin, error) {
	r.logger.Debug("Iniciando ListByGuest no repositório.", map[string]interface{}{"guest_id": guestID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT b.id, b.guest_id, b.cabin_id, b.start_date, b.end_date, b.num_nights,
               b.num_guests, b.total_price, b.status, b.created_at, c.name, c.image
        FROM bookings b
        JOIN cabins c ON c.id = b.cabin_id
        WHERE b.guest_id = $1
        ORDER BY b.start_date`

	rows, err := r.DB.QueryContext(ctxTimeout, query, guestID)
	if err != nil {
		r.logger.Error("Falha ao executar ListByGuest query.", err)
		return nil, apperror.NewDBError("listBookings", err)
	}
	defer rows.Close()

	bookings := make([]domain.BookingWithCabin, 0)
	for rows.Next() {
		var item domain.BookingWithCabin
		var status string
		err := rows.Scan(
			&item.ID, &item.GuestID, &item.CabinID, &item.StartDate, &item.EndDate, &item.NumNights,
			&item.NumGuests, &item.TotalPrice, &status, &item.CreatedAt, &item.Cabin.Name, &item.Cabin.Image,
		)
		if err != nil {
			r.logger.Error("Falha ao mapear reserva na iteração de ListByGuest.", err)
			return nil, apperror.NewDBError("listBookings", err)
		}
		item.Status = domain.BookingStatus(status)
		bookings = append(bookings, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de reservas.", err)
		return nil, apperror.NewDBError("listBookings", err)
	}

	r.logger.Info("ListByGuest concluído com sucesso.", map[string]interface{}{"guest_id": guestID, "total_bookings": len(bookings)})
	return bookings, nil
}

// ListActiveByCabin busca as reservas da cabana que bloqueiam datas
// (status unconfirmed ou checked-in).
func (r *BookingRepository) ListActiveByCabin(ctx context.Context, cabinID string) ([]domain.Booking, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + bookingColumns + `
        FROM bookings
        WHERE cabin_id = $1 AND status IN ($2, $3)`

	rows, err := r.DB.QueryContext(ctxTimeout, query, cabinID, string(domain.StatusUnconfirmed), string(domain.StatusCheckedIn))
	if err != nil {
		r.logger.Error("Falha ao buscar reservas ativas da cabana.", err)
		return nil, apperror.NewDBError("listActiveBookingsByCabin", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear reserva ativa da cabana.", err)
			return nil, apperror.NewDBError("listActiveBookingsByCabin", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("listActiveBookingsByCabin", err)
	}

	r.logger.Debug("Reservas ativas da cabana carregadas.", map[string]interface{}{"cabin_id": cabinID, "total": len(bookings)})
	return bookings, nil
}

// Create insere a reserva e retorna o registro persistido com id e created_at gerados.
// Não verifica sobreposição de datas: quem chama deve consultar a disponibilidade antes.
func (r *BookingRepository) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	r.logger.Debug("Iniciando Create de reserva no repositório.", map[string]interface{}{"guest_id": booking.GuestID, "cabin_id": booking.CabinID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	booking.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO bookings (` + bookingColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		booking.ID, booking.GuestID, booking.CabinID, booking.StartDate, booking.EndDate, booking.NumNights,
		booking.NumGuests, booking.TotalPrice, string(booking.Status), booking.CreatedAt,
	).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir reserva no DB.", err)
		return domain.Booking{}, apperror.NewDBError("createBooking", err)
	}

	r.logger.Info("Reserva criada com sucesso.", map[string]interface{}{"booking_id": booking.ID, "cabin_id": booking.CabinID})
	return booking, nil
}

// FindByID busca uma reserva pelo ID.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (domain.Booking, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Reserva não encontrada.", map[string]interface{}{"booking_id": id})
		return domain.Booking{}, apperror.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar reserva no DB.", err)
		return domain.Booking{}, apperror.NewDBError("getBooking", err)
	}
	return booking, nil
}

// Update aplica uma atualização parcial (somente campos não nil) e retorna o registro completo.
func (r *BookingRepository) Update(ctx context.Context, id string, update domain.BookingUpdate) (domain.Booking, error) {
	if update.IsEmpty() {
		return r.FindByID(ctx, id)
	}
	r.logger.Debug("Iniciando Update de reserva no repositório.", map[string]interface{}{"booking_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	setClause, args := buildUpdate(update)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE bookings SET %s WHERE id = $%d RETURNING %s`, setClause, len(args), bookingColumns)

	booking, err := scanBooking(r.DB.QueryRowContext(ctxTimeout, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Reserva não encontrada para atualização.", map[string]interface{}{"booking_id": id})
		return domain.Booking{}, apperror.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não encontrada para atualização.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar reserva no DB.", err)
		return domain.Booking{}, apperror.NewDBError("updateBooking", err)
	}

	r.logger.Info("Reserva atualizada com sucesso.", map[string]interface{}{"booking_id": booking.ID, "status": booking.Status})
	return booking, nil
}

// Delete remove a reserva definitivamente. Um ID inexistente retorna NotFoundError.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Iniciando Delete de reserva no repositório.", map[string]interface{}{"booking_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar reserva do DB.", err)
		return apperror.NewDBError("deleteBooking", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após Delete.", err)
		return apperror.NewDBError("deleteBooking", err)
	}

	if rowsAffected == 0 {
		r.logger.Info("Reserva não encontrada para exclusão.", map[string]interface{}{"booking_id": id})
		return apperror.NewNotFoundError(fmt.Sprintf("Reserva com ID %s não encontrada para exclusão.", id))
	}

	r.logger.Info("Reserva deletada com sucesso.", map[string]interface{}{"booking_id": id})
	return nil
}

// buildUpdate monta a cláusula SET em ordem fixa de colunas.
func buildUpdate(update domain.BookingUpdate) (string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.StartDate != nil {
		add("start_date", *update.StartDate)
	}
	if update.EndDate != nil {
		add("end_date", *update.EndDate)
	}
	if update.NumNights != nil {
		add("num_nights", *update.NumNights)
	}
	if update.NumGuests != nil {
		add("num_guests", *update.NumGuests)
	}
	if update.TotalPrice != nil {
		add("total_price", *update.TotalPrice)
	}
	if update.Status != nil {
		add("status", string(*update.Status))
	}
	return strings.Join(sets, ", "), args
}

func scanBooking(row rowScanner) (domain.Booking, error) {
	var b domain.Booking
	var status string
	err := row.Scan(
		&b.ID, &b.GuestID, &b.CabinID, &b.StartDate, &b.EndDate, &b.NumNights,
		&b.NumGuests, &b.TotalPrice, &status, &b.CreatedAt,
	)
	b.Status = domain.BookingStatus(status)
	return b, err
}
