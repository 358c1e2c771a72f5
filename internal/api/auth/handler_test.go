package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gocabin/internal/api/auth"
	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/logger"
	"gocabin/internal/pkg/middleware"
	"gocabin/internal/pkg/token"
	"gocabin/internal/service/session"
)

type MockCredentials struct {
	mock.Mock
}

func (m *MockCredentials) Register(ctx context.Context, r domain.AccountRegistration) (domain.Account, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(domain.Account), args.Error(1)
}

func (m *MockCredentials) Verify(ctx context.Context, email, password string) (domain.Principal, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.Principal), args.Error(1)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + url.QueryEscape(state)
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (domain.Principal, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Principal), args.Error(1)
}

type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) UpdateProfile(ctx context.Context, guestID, fullName string) (domain.Guest, error) {
	args := m.Called(ctx, guestID, fullName)
	return args.Get(0).(domain.Guest), args.Error(1)
}

type fixedResolver struct{ id string }

func (r fixedResolver) ResolveGuest(context.Context, domain.Principal) (string, error) {
	return r.id, nil
}

type fixture struct {
	creds    *MockCredentials
	google   *MockProvider
	profiles *MockProfiles
	tokens   *token.Service
	handler  *auth.Handler
}

func newFixture() *fixture {
	log := logger.NewLoggerWithWriter("debug", io.Discard)
	f := &fixture{
		creds:    new(MockCredentials),
		google:   new(MockProvider),
		profiles: new(MockProfiles),
		tokens:   token.NewService("test-secret-with-enough-bytes", time.Hour),
	}
	bridge := session.NewBridge(fixedResolver{id: "g-google"}, log)
	f.handler = auth.NewHandler(f.creds, f.google, bridge, f.tokens, f.profiles, log)
	return f
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) auth.TokenResponse {
	t.Helper()
	var resp auth.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLogin_IssuesTokenWithGuestID(t *testing.T) {
	f := newFixture()
	f.creds.On("Verify", mock.Anything, "a@x.com", "segredo123").
		Return(domain.Principal{Email: "a@x.com", Name: "A", Image: domain.DefaultAvatar, GuestID: "g-1"}, nil)

	rec := httptest.NewRecorder()
	f.handler.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"a@x.com","password":"segredo123"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeToken(t, rec)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "g-1", resp.User.GuestID)

	claims, err := f.tokens.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "g-1", claims.GuestID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture()
	f.creds.On("Verify", mock.Anything, "a@x.com", "errada").
		Return(domain.Principal{}, apperror.NewUnauthorizedError("Email ou senha inválidos."))

	rec := httptest.NewRecorder()
	f.handler.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"a@x.com","password":"errada"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_Created(t *testing.T) {
	f := newFixture()
	reg := domain.AccountRegistration{Email: "a@x.com", Password: "segredo123", FullName: "A"}
	f.creds.On("Register", mock.Anything, reg).Return(domain.Account{ID: "acc-1", Email: "a@x.com", PasswordHash: "hash"}, nil)

	rec := httptest.NewRecorder()
	f.handler.RegisterHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(`{"email":"a@x.com","password":"segredo123","full_name":"A"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hash")
}

func TestGoogleFlow_StateCookieAndCallback(t *testing.T) {
	f := newFixture()

	// 1. Redirecionamento com cookie de state
	rec := httptest.NewRecorder()
	f.handler.GoogleLoginHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/google/login", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	state := cookies[0].Value
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape(state))

	// 2. Callback com o mesmo state
	f.google.On("Exchange", mock.Anything, "code-1").Return(domain.Principal{Email: "g@gmail.com", Name: "G", Image: "https://img"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/google/callback?state="+url.QueryEscape(state)+"&code=code-1", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	f.handler.GoogleCallbackHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "g-google", decodeToken(t, rec).User.GuestID)
}

func TestGoogleCallback_StateMismatch(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/google/callback?state=other&code=code-1", nil)
	req.AddCookie(&http.Cookie{Name: "gocabin_oauth_state", Value: "expected"})
	rec := httptest.NewRecorder()
	f.handler.GoogleCallbackHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.google.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
}

func TestGoogleDisabled(t *testing.T) {
	log := logger.NewLoggerWithWriter("debug", io.Discard)
	h := auth.NewHandler(new(MockCredentials), nil, session.NewBridge(fixedResolver{}, log), token.NewService("test-secret-with-enough-bytes", time.Hour), new(MockProfiles), log)

	rec := httptest.NewRecorder()
	h.GoogleLoginHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/google/login", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefresh_KeepsGuestID(t *testing.T) {
	f := newFixture()
	tok := domain.Token{Email: "a@x.com", Name: "A", GuestID: "g-1"}
	ctx := middleware.WithToken(context.Background(), tok)
	ctx = middleware.WithSession(ctx, session.FromToken(tok, time.Now().Add(time.Hour)))

	rec := httptest.NewRecorder()
	f.handler.RefreshHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil).WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)
	claims, err := f.tokens.ValidateToken(decodeToken(t, rec).AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "g-1", claims.GuestID)
}

func TestSession_ReturnsMaterializedSession(t *testing.T) {
	f := newFixture()
	s := domain.Session{User: domain.SessionUser{Email: "a@x.com", GuestID: "g-1"}, Expires: time.Now().Add(time.Hour).UTC()}

	rec := httptest.NewRecorder()
	f.handler.SessionHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/session", nil).WithContext(middleware.WithSession(context.Background(), s)))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "g-1", got.User.GuestID)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	f.profiles.On("UpdateProfile", mock.Anything, "g-1", "Ana Souza").Return(domain.Guest{ID: "g-1", FullName: "Ana Souza"}, nil)
	s := domain.Session{User: domain.SessionUser{Email: "a@x.com", GuestID: "g-1"}}

	req := httptest.NewRequest(http.MethodPatch, "/v1/guests/me", strings.NewReader(`{"full_name":"Ana Souza"}`)).
		WithContext(middleware.WithSession(context.Background(), s))
	rec := httptest.NewRecorder()
	f.handler.UpdateProfileHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.profiles.AssertExpectations(t)
}
