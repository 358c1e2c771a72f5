// Package oauth integra o login federado com o Google.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
)

const defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// userInfo é o subconjunto do endpoint userinfo usado no login.
type userInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleProvider troca o código de autorização do Google por um Principal.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider cria o provedor com as credenciais do app OAuth.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: defaultUserInfoURL,
	}
}

// WithEndpoints substitui os endpoints do IdP (usado nos testes com httptest).
func (p *GoogleProvider) WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) *GoogleProvider {
	p.config.Endpoint = endpoint
	p.userInfoURL = userInfoURL
	return p
}

// AuthCodeURL monta a URL de consentimento do Google.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange troca o código pelo token de acesso e lê o perfil do usuário.
// Qualquer falha é tratada como falha de autenticação.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (domain.Principal, error) {
	if code == "" {
		return domain.Principal{}, apperror.NewUnauthorizedError("Código de autorização ausente.")
	}

	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return domain.Principal{}, apperror.NewUnauthorizedError(fmt.Sprintf("Falha na troca do código com o Google: %v", err))
	}

	info, err := p.fetchUserInfo(ctx, tok)
	if err != nil {
		return domain.Principal{}, apperror.NewUnauthorizedError(fmt.Sprintf("Falha ao ler o perfil do Google: %v", err))
	}
	if info.Email == "" {
		return domain.Principal{}, apperror.NewUnauthorizedError("O Google não informou o email da conta.")
	}
	// O hóspede é identificado só pelo email, então ele precisa estar verificado.
	if !info.EmailVerified {
		return domain.Principal{}, apperror.NewUnauthorizedError("O email da conta Google não está verificado.")
	}

	image := info.Picture
	if image == "" {
		image = domain.DefaultAvatar
	}
	return domain.Principal{
		Email: domain.NormalizeEmail(info.Email),
		Name:  info.Name,
		Image: image,
	}, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (userInfo, error) {
	client := p.config.Client(ctx, tok)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return userInfo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return userInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return userInfo{}, fmt.Errorf("userinfo retornou %d: %s", resp.StatusCode, body)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return userInfo{}, fmt.Errorf("falha ao decodificar userinfo: %w", err)
	}
	return info, nil
}
