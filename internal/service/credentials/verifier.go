// Package credentials implementa o provedor de login por email e senha.
package credentials

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/logger"
)

const minPasswordLength = 8

// AccountRepository é o contrato de persistência das contas locais.
type AccountRepository interface {
	Save(ctx context.Context, account domain.Account) (domain.Account, error)
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
}

// GuestResolver vincula a conta autenticada ao hóspede.
type GuestResolver interface {
	ResolveGuest(ctx context.Context, principal domain.Principal) (string, error)
}

// Verifier registra contas e verifica credenciais.
type Verifier struct {
	accounts AccountRepository
	resolver GuestResolver
	logger   logger.Logger
	cost     int
}

// NewVerifier cria uma nova instância do Verifier.
func NewVerifier(accounts AccountRepository, resolver GuestResolver, logger logger.Logger) *Verifier {
	return &Verifier{
		accounts: accounts,
		resolver: resolver,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
}

// WithCost altera o custo do bcrypt (usado nos testes).
func (v *Verifier) WithCost(cost int) *Verifier {
	v.cost = cost
	return v
}

// Register cria uma conta local com a senha em hash.
func (v *Verifier) Register(ctx context.Context, registration domain.AccountRegistration) (domain.Account, error) {
	// 1. Validação Básica
	email := domain.NormalizeEmail(registration.Email)
	if email == "" || registration.Password == "" {
		return domain.Account{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Account{}, apperror.NewValidationError("Email inválido.")
	}
	if len(registration.Password) < minPasswordLength {
		return domain.Account{}, apperror.NewValidationError(fmt.Sprintf("A senha deve ter pelo menos %d caracteres.", minPasswordLength))
	}

	// 2. Hashing da Senha
	hashed, err := bcrypt.GenerateFromPassword([]byte(registration.Password), v.cost)
	if err != nil {
		return domain.Account{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 3. Persistência
	account, err := v.accounts.Save(ctx, domain.Account{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(registration.FullName),
		AvatarURL:    domain.DefaultAvatar,
	})
	if err != nil {
		if apperror.IsConflict(err) {
			return domain.Account{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", email))
		}
		return domain.Account{}, err
	}

	v.logger.Info("Conta registrada.", map[string]interface{}{"account_id": account.ID})
	return account, nil
}

// Verify confere email e senha e retorna o principal com o guest_id já resolvido.
// Email desconhecido e senha errada produzem o mesmo erro.
func (v *Verifier) Verify(ctx context.Context, email, password string) (domain.Principal, error) {
	// 1. Validação Básica
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.Principal{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}

	// 2. Buscar conta
	account, err := v.accounts.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.Principal{}, apperror.NewUnauthorizedError("Email ou senha inválidos.")
		}
		return domain.Principal{}, err
	}

	// 3. Comparar senha
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		v.logger.Debug("Senha incorreta no login por credenciais.", map[string]interface{}{"email": email})
		return domain.Principal{}, apperror.NewUnauthorizedError("Email ou senha inválidos.")
	}

	principal := domain.Principal{
		Email: account.Email,
		Name:  account.FullName,
		Image: account.AvatarURL,
	}
	if principal.Image == "" {
		principal.Image = domain.DefaultAvatar
	}

	// 4. Vincular hóspede
	guestID, err := v.resolver.ResolveGuest(ctx, principal)
	if err != nil {
		v.logger.Error("Falha ao resolver hóspede após verificar credenciais.", err)
		return domain.Principal{}, err
	}
	principal.GuestID = guestID
	return principal, nil
}
