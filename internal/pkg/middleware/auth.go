package middleware

import (
	"context"
	"net/http"
	"strings"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/logger"
	"gocabin/internal/pkg/response"
	"gocabin/internal/pkg/token"
	"gocabin/internal/service/session"
)

// ContextKey é o tipo das chaves guardadas no contexto da requisição.
// Context Keys devem ser não-exportadas e de um tipo único.
type ContextKey int

const (
	sessionKey ContextKey = iota
	tokenKey
)

// TokenValidator define o contrato de validação necessário para o middleware.
type TokenValidator interface {
	ValidateToken(tokenString string) (*token.SessionClaims, error)
}

// SessionReader completa a sessão com o guest_id.
type SessionReader interface {
	OnSessionRead(ctx context.Context, s domain.Session, t domain.Token) (domain.Session, error)
}

// NewAuthMiddleware valida o JWT do header Authorization, materializa a sessão
// e a anexa ao contexto da requisição.
func NewAuthMiddleware(tokens TokenValidator, sessions SessionReader, log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extrair o Token do Header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			// 2. Validar o Token
			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}

			// 3. Materializar a Sessão
			tok := claims.Token()
			s, err := sessions.OnSessionRead(r.Context(), session.FromToken(tok, claims.Expiry()), tok)
			if err != nil {
				response.Error(w, r, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, s)
			ctx = context.WithValue(ctx, tokenKey, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext é uma função utilitária para extrair a sessão no handler.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(domain.Session)
	return s, ok
}

// TokenFromContext retorna o conteúdo do token validado da requisição.
func TokenFromContext(ctx context.Context) (domain.Token, bool) {
	t, ok := ctx.Value(tokenKey).(domain.Token)
	return t, ok
}

// WithSession anexa uma sessão ao contexto (usado nos testes de handler).
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// WithToken anexa o conteúdo do token ao contexto.
func WithToken(ctx context.Context, t domain.Token) context.Context {
	return context.WithValue(ctx, tokenKey, t)
}
