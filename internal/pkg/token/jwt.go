package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gocabin/internal/domain"
)

const issuer = "GoCabin-API"

// SessionClaims define as informações da sessão armazenadas no JWT.
// GuestID é opcional para que tokens emitidos antes do campo continuem válidos.
type SessionClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
	GuestID string `json:"guest_id,omitempty"`
	jwt.RegisteredClaims
}

// Token converte as claims para o valor de domínio usado pela ponte de sessão.
func (c *SessionClaims) Token() domain.Token {
	return domain.Token{
		Email:   c.Email,
		Name:    c.Name,
		Image:   c.Image,
		GuestID: c.GuestID,
	}
}

// Expiry retorna a expiração do token (zero se ausente).
func (c *SessionClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Service assina e valida tokens de sessão.
type Service struct {
	secretKey []byte
	expiry    time.Duration
	now       func() time.Time
}

// NewService cria uma nova instância do serviço Token.
func NewService(secretKey string, expiry time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		expiry:    expiry,
		now:       time.Now,
	}
}

// GenerateToken cria um novo JWT assinado com o conteúdo da sessão.
// Retorna o token e o instante em que expira.
func (s *Service) GenerateToken(t domain.Token) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiry)

	claims := SessionClaims{
		Email:   t.Email,
		Name:    t.Name,
		Image:   t.Image,
		GuestID: t.GuestID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   t.Email,
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("falha ao assinar o token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken valida o token string e retorna as claims se for válido.
func (s *Service) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verifica se o método de assinatura é o esperado (HS256)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("token inválido: %w", err)
	}

	if !parsed.Valid {
		return nil, errors.New("token não é válido")
	}

	return claims, nil
}
