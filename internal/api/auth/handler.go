package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/logger"
	"gocabin/internal/pkg/middleware"
	"gocabin/internal/pkg/response"
)

const (
	stateCookie = "gocabin_oauth_state"
	stateTTL    = 10 * time.Minute
)

// CredentialsService define o contrato do provedor de email e senha.
type CredentialsService interface {
	Register(ctx context.Context, registration domain.AccountRegistration) (domain.Account, error)
	Verify(ctx context.Context, email, password string) (domain.Principal, error)
}

// FederatedProvider define o contrato do IdP federado (Google).
type FederatedProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.Principal, error)
}

// SessionBridge são os estágios de login e emissão de token.
type SessionBridge interface {
	OnSignIn(ctx context.Context, principal domain.Principal, provider domain.Provider) (domain.Principal, bool)
	OnTokenIssue(ctx context.Context, token domain.Token, principal *domain.Principal) (domain.Token, error)
}

// TokenIssuer assina o token de sessão.
type TokenIssuer interface {
	GenerateToken(t domain.Token) (string, time.Time, error)
}

// ProfileService altera o perfil do hóspede.
type ProfileService interface {
	UpdateProfile(ctx context.Context, guestID string, fullName string) (domain.Guest, error)
}

// TokenResponse é o corpo devolvido após login ou renovação.
type TokenResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	ExpiresAt   time.Time          `json:"expires_at"`
	User        domain.SessionUser `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	FullName string `json:"full_name"`
}

// Handler agrupa os endpoints de autenticação e sessão.
type Handler struct {
	Credentials CredentialsService
	Google      FederatedProvider // nil quando o login federado não está configurado
	Bridge      SessionBridge
	Tokens      TokenIssuer
	Profiles    ProfileService
	Logger      logger.Logger
}

// NewHandler cria uma nova instância do Handler de autenticação.
func NewHandler(credentials CredentialsService, google FederatedProvider, bridge SessionBridge, tokens TokenIssuer, profiles ProfileService, log logger.Logger) *Handler {
	return &Handler{
		Credentials: credentials,
		Google:      google,
		Bridge:      bridge,
		Tokens:      tokens,
		Profiles:    profiles,
		Logger:      log,
	}
}

// RegisterHandler lida com a requisição POST /v1/auth/register.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var registration domain.AccountRegistration
	if err := json.NewDecoder(r.Body).Decode(&registration); err != nil {
		response.Error(w, r, h.Logger, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	account, err := h.Credentials.Register(r.Context(), registration)
	response.Handle(w, r, h.Logger, account, err, http.StatusCreated)
}

// LoginHandler lida com a requisição POST /v1/auth/login.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.Logger, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	principal, err := h.Credentials.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	resp, err := h.signIn(r.Context(), principal, domain.ProviderCredentials)
	response.Handle(w, r, h.Logger, resp, err, http.StatusOK)
}

// GoogleLoginHandler lida com GET /v1/auth/google/login redirecionando ao Google.
func (h *Handler) GoogleLoginHandler(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		response.Error(w, r, h.Logger, apperror.NewNotFoundError("Login com Google não está habilitado."))
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/v1/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.Google.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallbackHandler lida com GET /v1/auth/google/callback.
func (h *Handler) GoogleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		response.Error(w, r, h.Logger, apperror.NewNotFoundError("Login com Google não está habilitado."))
		return
	}

	// 1. Conferir o state contra o cookie
	cookie, err := r.Cookie(stateCookie)
	query := r.URL.Query()
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("State do OAuth inválido."))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/v1/auth/google", MaxAge: -1})

	if idpErr := query.Get("error"); idpErr != "" {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("O Google recusou o login: "+idpErr))
		return
	}

	// 2. Trocar o código pelo perfil
	principal, err := h.Google.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	resp, err := h.signIn(r.Context(), principal, domain.ProviderGoogle)
	response.Handle(w, r, h.Logger, resp, err, http.StatusOK)
}

// RefreshHandler lida com POST /v1/auth/refresh, reassinando o token atual.
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	tok, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Autorização necessária."))
		return
	}
	s, _ := middleware.SessionFromContext(r.Context())

	tok, err := h.Bridge.OnTokenIssue(r.Context(), tok, nil)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	if tok.GuestID == "" {
		tok.GuestID = s.User.GuestID
	}

	resp, err := h.issue(tok)
	response.Handle(w, r, h.Logger, resp, err, http.StatusOK)
}

// SessionHandler lida com GET /v1/auth/session.
func (h *Handler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Autorização necessária."))
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, s)
}

// UpdateProfileHandler lida com PATCH /v1/guests/me.
func (h *Handler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok || s.User.GuestID == "" {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Autorização necessária."))
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.Logger, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	guest, err := h.Profiles.UpdateProfile(r.Context(), s.User.GuestID, req.FullName)
	response.Handle(w, r, h.Logger, guest, err, http.StatusOK)
}

// signIn executa OnSignIn e OnTokenIssue e assina o token resultante.
func (h *Handler) signIn(ctx context.Context, principal domain.Principal, provider domain.Provider) (TokenResponse, error) {
	principal, ok := h.Bridge.OnSignIn(ctx, principal, provider)
	if !ok {
		return TokenResponse{}, apperror.NewUnauthorizedError("Login recusado.")
	}

	tok, err := h.Bridge.OnTokenIssue(ctx, domain.Token{}, &principal)
	if err != nil {
		return TokenResponse{}, err
	}

	h.Logger.Info("Login concluído.", map[string]interface{}{"provider": provider, "guest_id": tok.GuestID})
	return h.issue(tok)
}

func (h *Handler) issue(tok domain.Token) (TokenResponse, error) {
	signed, expiresAt, err := h.Tokens.GenerateToken(tok)
	if err != nil {
		return TokenResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}
	return TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User: domain.SessionUser{
			Email:   tok.Email,
			Name:    tok.Name,
			Image:   tok.Image,
			GuestID: tok.GuestID,
		},
	}, nil
}
