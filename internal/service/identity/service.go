// Package identity concilia identidades autenticadas externamente com o
// registro interno de hóspede. É o único lugar onde hóspedes são criados.
package identity

import (
	"context"
	"strings"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/logger"
	"gocabin/internal/pkg/metrics"
)

// GuestRepository define o contrato que o Resolver espera da camada de Persistência.
type GuestRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.Guest, error)
	FindByID(ctx context.Context, id string) (domain.Guest, error)
	Create(ctx context.Context, guest domain.Guest) (domain.Guest, error)
	Update(ctx context.Context, id string, update domain.GuestUpdate) (domain.Guest, error)
}

// Service resolve principals para hóspedes e mantém o perfil do hóspede.
type Service struct {
	repo   GuestRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do serviço de identidade.
func NewService(repo GuestRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ResolveGuest garante que existe um hóspede para o email do principal e retorna seu ID.
// O principal já deve ter sido autenticado; nenhuma credencial é validada aqui.
// "Não encontrado" é o caminho esperado no primeiro login e nunca é retornado;
// falhas de banco são propagadas.
func (s *Service) ResolveGuest(ctx context.Context, principal domain.Principal) (string, error) {
	email := domain.NormalizeEmail(principal.Email)
	if email == "" {
		return "", apperror.NewValidationError("O principal não possui email.")
	}

	// 1. Buscar hóspede existente
	guest, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return guest.ID, nil
	}
	if !apperror.IsNotFound(err) {
		s.logger.Error("Falha ao buscar hóspede durante a resolução.", err)
		return "", err
	}

	// 2. Primeiro login: criar o hóspede
	newGuest := domain.Guest{Email: email, FullName: fullNameFor(principal, email)}
	created, err := s.repo.Create(ctx, newGuest)
	if err == nil {
		metrics.GuestCreated()
		s.logger.Info("Hóspede criado no primeiro login.", map[string]interface{}{"guest_id": created.ID, "email": email})
		return created.ID, nil
	}
	if !apperror.IsConflict(err) {
		s.logger.Error("Falha ao criar hóspede durante a resolução.", err)
		return "", err
	}

	// 3. Outra resolução concorrente criou o hóspede primeiro
	s.logger.Debug("Hóspede criado concorrentemente, buscando novamente.", map[string]interface{}{"email": email})
	guest, err = s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Falha ao buscar hóspede após conflito de criação.", err)
		return "", err
	}
	return guest.ID, nil
}

// GetGuest busca o hóspede pelo ID.
func (s *Service) GetGuest(ctx context.Context, guestID string) (domain.Guest, error) {
	return s.repo.FindByID(ctx, guestID)
}

// UpdateProfile altera o nome completo do hóspede.
func (s *Service) UpdateProfile(ctx context.Context, guestID string, fullName string) (domain.Guest, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return domain.Guest{}, apperror.NewValidationError("O nome completo não pode ser vazio.")
	}
	if len(fullName) > 100 {
		return domain.Guest{}, apperror.NewValidationError("O nome completo deve ter no máximo 100 caracteres.")
	}

	guest, err := s.repo.Update(ctx, guestID, domain.GuestUpdate{FullName: &fullName})
	if err != nil {
		s.logger.Error("Falha ao atualizar perfil do hóspede.", err)
		return domain.Guest{}, err
	}
	return guest, nil
}

// fullNameFor escolhe o nome explícito do principal ou, na falta, a parte local do email.
func fullNameFor(principal domain.Principal, email string) string {
	if name := strings.TrimSpace(principal.Name); name != "" {
		return name
	}
	return domain.EmailLocalPart(email)
}
