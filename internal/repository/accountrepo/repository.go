package accountrepo

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

// AccountRepository persiste as credenciais locais (email e hash de senha).
type AccountRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewAccountRepository cria uma nova instância do AccountRepository, injetando o DB.
func NewAccountRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *AccountRepository {
	return &AccountRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere uma nova conta. Email duplicado retorna ConflictError.
func (r *AccountRepository) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	r.logger.Debug("Iniciando Save de conta no repositório.", map[string]interface{}{"email": account.Email})

	// 1. Configura Contexto com Timeout
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// 2. Prepara dados e ID
	account.ID = uuid.NewString()
	account.Email = domain.NormalizeEmail(account.Email)
	account.CreatedAt = time.Now().UTC()

	// 3. Executa o INSERT
	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO accounts (id, email, password_hash, full_name, avatar_url, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FullName,
		account.AvatarURL,
		account.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir conta no DB.", err)
		return domain.Account{}, apperror.NewDBError("createAccount", err)
	}

	r.logger.Info("Conta salva com sucesso no repositório.", map[string]interface{}{"account_id": account.ID, "email": account.Email})
	return account, nil
}

// FindByEmail busca uma conta pelo endereço de e-mail.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	email = domain.NormalizeEmail(email)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, email, password_hash, full_name, avatar_url, created_at FROM accounts WHERE email = $1`

	var account domain.Account
	err := r.DB.QueryRowContext(ctxTimeout, query, email).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FullName,
		&account.AvatarURL,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Conta não encontrada no DB por email.", map[string]interface{}{"email": email})
			return domain.Account{}, apperror.NewNotFoundError(fmt.Sprintf("Conta com email '%s' não encontrada", email))
		}
		r.logger.Error("Falha ao buscar conta por email no DB.", err)
		return domain.Account{}, apperror.NewDBError("getAccount", err)
	}

	return account, nil
}
