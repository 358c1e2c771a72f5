// Package session propaga o ID do hóspede pelo ciclo de vida de login,
// token e sessão. Cada estágio recebe o valor do estágio anterior e retorna
// o próximo, preenchendo o guest_id onde ele ainda estiver ausente.
package session

import (
	"context"
	"errors"
	"time"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/logger"
	"gocabin/internal/pkg/metrics"
)

// GuestResolver é o contrato do serviço de identidade usado pela ponte.
type GuestResolver interface {
	ResolveGuest(ctx context.Context, principal domain.Principal) (string, error)
}

// Bridge implementa os três estágios: OnSignIn, OnTokenIssue e OnSessionRead.
type Bridge struct {
	resolver GuestResolver
	logger   logger.Logger
}

// NewBridge cria a ponte de sessão.
func NewBridge(resolver GuestResolver, logger logger.Logger) *Bridge {
	return &Bridge{resolver: resolver, logger: logger}
}

// OnSignIn é chamado logo após a autenticação ter sucesso.
// No provedor de credenciais o guest_id normalmente já veio da verificação;
// nos provedores federados o hóspede é sempre resolvido (operação idempotente).
// Retorna false quando o login é abortado: principal inválido ou provedor
// desconhecido (resultado "rejected") ou falha inesperada do banco ("error").
func (b *Bridge) OnSignIn(ctx context.Context, principal domain.Principal, provider domain.Provider) (domain.Principal, bool) {
	switch provider {
	case domain.ProviderCredentials:
		if principal.GuestID != "" {
			metrics.SignIn(string(provider), "success")
			return principal, true
		}
	case domain.ProviderGoogle:
	default:
		b.logger.Warn("Provedor de autenticação desconhecido.", map[string]interface{}{"provider": provider})
		metrics.SignIn(string(provider), "rejected")
		return principal, false
	}

	if domain.NormalizeEmail(principal.Email) == "" {
		b.logger.Warn("Login rejeitado: principal sem email.", map[string]interface{}{"provider": provider})
		metrics.SignIn(string(provider), "rejected")
		return principal, false
	}

	guestID, err := b.resolver.ResolveGuest(ctx, principal)
	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		b.logger.Warn("Login rejeitado pela validação do hóspede.", map[string]interface{}{"provider": provider, "error": err.Error()})
		metrics.SignIn(string(provider), "rejected")
		return principal, false
	}
	if err != nil {
		b.logger.Error("Falha ao resolver hóspede no login.", err)
		metrics.SignIn(string(provider), "error")
		return principal, false
	}

	principal.GuestID = guestID
	metrics.SignIn(string(provider), "success")
	return principal, true
}

// OnTokenIssue é chamado a cada emissão de token. Com principal (logo após o
// login) o token recebe os dados do principal e o guest_id; sem principal
// (renovação) o token é retornado inalterado.
func (b *Bridge) OnTokenIssue(ctx context.Context, token domain.Token, principal *domain.Principal) (domain.Token, error) {
	if principal == nil {
		return token, nil
	}

	token.Email = domain.NormalizeEmail(principal.Email)
	token.Name = principal.Name
	token.Image = principal.Image

	if principal.GuestID != "" {
		token.GuestID = principal.GuestID
		return token, nil
	}

	b.logger.Debug("guest_id ausente no principal, resolvendo na emissão do token.", map[string]interface{}{"email": token.Email})
	guestID, err := b.resolver.ResolveGuest(ctx, *principal)
	if err != nil {
		b.logger.Error("Falha ao resolver hóspede na emissão do token.", err)
		return token, err
	}
	token.GuestID = guestID
	return token, nil
}

// OnSessionRead é chamado ao materializar a sessão de uma requisição.
// Tokens antigos (sem guest_id) são completados resolvendo o email da sessão.
func (b *Bridge) OnSessionRead(ctx context.Context, s domain.Session, token domain.Token) (domain.Session, error) {
	if token.GuestID != "" {
		s.User.GuestID = token.GuestID
		return s, nil
	}

	email := s.User.Email
	if email == "" {
		email = token.Email
	}
	if email == "" {
		return s, apperror.NewUnauthorizedError("Sessão sem email associado.")
	}

	b.logger.Debug("guest_id ausente no token, resolvendo na leitura da sessão.", map[string]interface{}{"email": email})
	guestID, err := b.resolver.ResolveGuest(ctx, domain.Principal{Email: email, Name: s.User.Name, Image: s.User.Image})
	if err != nil {
		b.logger.Error("Falha ao resolver hóspede na leitura da sessão.", err)
		return s, err
	}
	s.User.GuestID = guestID
	return s, nil
}

// FromToken monta a sessão padrão a partir do token, como o host faz antes de
// OnSessionRead. O guest_id fica a cargo de OnSessionRead.
func FromToken(token domain.Token, expires time.Time) domain.Session {
	return domain.Session{
		User: domain.SessionUser{
			Email: token.Email,
			Name:  token.Name,
			Image: token.Image,
		},
		Expires: expires,
	}
}
