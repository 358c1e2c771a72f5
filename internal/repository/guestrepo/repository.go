package guestrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/database"
	"gocabin/internal/pkg/logger"
)

const guestColumns = `id, email, full_name, created_at`

// GuestRepository implementa o acesso à tabela guests.
type GuestRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewGuestRepository cria uma nova instância do GuestRepository, injetando o DB.
func NewGuestRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *GuestRepository {
	return &GuestRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Create insere um novo hóspede. Um email já cadastrado retorna ConflictError.
func (r *GuestRepository) Create(ctx context.Context, guest domain.Guest) (domain.Guest, error) {
	r.logger.Debug("Iniciando Create de hóspede no repositório.", map[string]interface{}{"email": guest.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if guest.ID == "" {
		guest.ID = uuid.NewString()
	}
	guest.Email = domain.NormalizeEmail(guest.Email)
	guest.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO guests (id, email, full_name, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + guestColumns

	err := r.DB.QueryRowContext(ctxTimeout, query,
		guest.ID, guest.Email, guest.FullName, guest.CreatedAt,
	).Scan(&guest.ID, &guest.Email, &guest.FullName, &guest.CreatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir hóspede no DB.", err)
		return domain.Guest{}, apperror.NewDBError("createGuest", err)
	}

	r.logger.Info("Hóspede criado com sucesso.", map[string]interface{}{"guest_id": guest.ID, "email": guest.Email})
	return guest, nil
}

// FindByEmail busca um hóspede pelo email normalizado.
func (r *GuestRepository) FindByEmail(ctx context.Context, email string) (domain.Guest, error) {
	email = domain.NormalizeEmail(email)
	r.logger.Debug("Iniciando FindByEmail de hóspede no repositório.", map[string]interface{}{"email": email})

	query := `SELECT ` + guestColumns + ` FROM guests WHERE email = $1`
	guest, err := r.findOne(ctx, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug("Hóspede não encontrado por email.", map[string]interface{}{"email": email})
		return domain.Guest{}, apperror.NewNotFoundError(fmt.Sprintf("Hóspede com email '%s' não encontrado", email))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar hóspede por email no DB.", err)
		return domain.Guest{}, apperror.NewDBError("getGuest", err)
	}
	return guest, nil
}

// FindByID busca um hóspede pelo ID.
func (r *GuestRepository) FindByID(ctx context.Context, id string) (domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	guest, err := r.findOne(ctx, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Guest{}, apperror.NewNotFoundError(fmt.Sprintf("Hóspede com ID %s não encontrado", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar hóspede por ID no DB.", err)
		return domain.Guest{}, apperror.NewDBError("getGuestByID", err)
	}
	return guest, nil
}

// Update aplica uma atualização parcial e retorna o hóspede completo.
func (r *GuestRepository) Update(ctx context.Context, id string, update domain.GuestUpdate) (domain.Guest, error) {
	if update.FullName == nil {
		return r.FindByID(ctx, id)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `UPDATE guests SET full_name = $1 WHERE id = $2 RETURNING ` + guestColumns

	var guest domain.Guest
	err := r.DB.QueryRowContext(ctxTimeout, query, *update.FullName, id).
		Scan(&guest.ID, &guest.Email, &guest.FullName, &guest.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Guest{}, apperror.NewNotFoundError(fmt.Sprintf("Hóspede com ID %s não encontrado para atualização", id))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar hóspede no DB.", err)
		return domain.Guest{}, apperror.NewDBError("updateGuest", err)
	}

	r.logger.Info("Hóspede atualizado com sucesso.", map[string]interface{}{"guest_id": guest.ID})
	return guest, nil
}

func (r *GuestRepository) findOne(ctx context.Context, query string, arg any) (domain.Guest, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var guest domain.Guest
	err := r.DB.QueryRowContext(ctxTimeout, query, arg).
		Scan(&guest.ID, &guest.Email, &guest.FullName, &guest.CreatedAt)
	return guest, err
}
