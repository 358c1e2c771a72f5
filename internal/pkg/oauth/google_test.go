package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/oauth"
)

// fakeGoogle responde aos endpoints de token e userinfo.
func fakeGoogle(t *testing.T, profile map[string]interface{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(srv *httptest.Server) *oauth.GoogleProvider {
	return oauth.NewGoogleProvider("client", "secret", "http://localhost/callback").
		WithEndpoints(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}, srv.URL+"/userinfo")
}

func TestExchange_ReturnsPrincipal(t *testing.T) {
	srv := fakeGoogle(t, map[string]interface{}{"email": "Ana@Gmail.com", "email_verified": true, "name": "Ana", "picture": "https://img/ana.png"})

	p, err := newProvider(srv).Exchange(context.Background(), "good-code")

	require.NoError(t, err)
	assert.Equal(t, domain.Principal{Email: "ana@gmail.com", Name: "Ana", Image: "https://img/ana.png"}, p)
}

func TestExchange_DefaultAvatar(t *testing.T) {
	srv := fakeGoogle(t, map[string]interface{}{"email": "ana@gmail.com", "email_verified": true, "name": "Ana"})

	p, err := newProvider(srv).Exchange(context.Background(), "good-code")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAvatar, p.Image)
}

func TestExchange_FailuresAreUnauthorized(t *testing.T) {
	srv := fakeGoogle(t, map[string]interface{}{"name": "sem email"})
	provider := newProvider(srv)

	for _, code := range []string{"", "bad-code", "good-code"} {
		_, err := provider.Exchange(context.Background(), code)
		assert.IsType(t, &apperror.UnauthorizedError{}, err, "code %q", code)
	}
}

func TestExchange_UnverifiedEmailRejected(t *testing.T) {
	for _, profile := range []map[string]interface{}{
		{"email": "ana@corp.com", "email_verified": false, "name": "Ana"},
		{"email": "ana@corp.com", "name": "Ana"},
	} {
		srv := fakeGoogle(t, profile)

		p, err := newProvider(srv).Exchange(context.Background(), "good-code")

		assert.IsType(t, &apperror.UnauthorizedError{}, err)
		assert.Equal(t, domain.Principal{}, p)
	}
}

func TestAuthCodeURL_CarriesState(t *testing.T) {
	srv := fakeGoogle(t, nil)

	raw := newProvider(srv).AuthCodeURL("state-xyz")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "state-xyz", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
}
