package credentials_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/logger"
	"gocabin/internal/service/credentials"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.Account), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveGuest(ctx context.Context, p domain.Principal) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func newVerifier(repo *MockAccountRepository, resolver *MockResolver) *credentials.Verifier {
	return credentials.NewVerifier(repo, resolver, logger.NewLoggerWithWriter("debug", io.Discard)).WithCost(bcrypt.MinCost)
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestVerify_Success(t *testing.T) {
	repo, resolver := new(MockAccountRepository), new(MockResolver)
	v := newVerifier(repo, resolver)

	repo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(domain.Account{ID: "a-1", Email: "ana@example.com", PasswordHash: hash(t, "segredo123"), FullName: "Ana"}, nil)
	resolver.On("ResolveGuest", mock.Anything, domain.Principal{Email: "ana@example.com", Name: "Ana", Image: domain.DefaultAvatar}).
		Return("g-1", nil)

	p, err := v.Verify(context.Background(), "Ana@Example.com", "segredo123")

	require.NoError(t, err)
	assert.Equal(t, "g-1", p.GuestID)
	assert.Equal(t, domain.DefaultAvatar, p.Image)
}

func TestVerify_WrongPassword(t *testing.T) {
	repo, resolver := new(MockAccountRepository), new(MockResolver)
	v := newVerifier(repo, resolver)

	repo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(domain.Account{Email: "ana@example.com", PasswordHash: hash(t, "segredo123")}, nil)

	_, err := v.Verify(context.Background(), "ana@example.com", "errada")

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	assert.Contains(t, err.Error(), "Email ou senha inválidos.")
	resolver.AssertNotCalled(t, "ResolveGuest", mock.Anything, mock.Anything)
}

func TestVerify_UnknownEmail(t *testing.T) {
	repo, resolver := new(MockAccountRepository), new(MockResolver)
	v := newVerifier(repo, resolver)

	repo.On("FindByEmail", mock.Anything, "nobody@example.com").
		Return(domain.Account{}, apperror.NewNotFoundError("nobody@example.com"))

	_, err := v.Verify(context.Background(), "nobody@example.com", "segredo123")

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

func TestVerify_MissingFields(t *testing.T) {
	v := newVerifier(new(MockAccountRepository), new(MockResolver))

	_, err := v.Verify(context.Background(), "", "x")

	assert.IsType(t, &apperror.ValidationError{}, err)
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := new(MockAccountRepository)
	v := newVerifier(repo, new(MockResolver))

	repo.On("Save", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Email == "ana@example.com" &&
			bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("segredo123")) == nil
	})).Return(domain.Account{ID: "a-1", Email: "ana@example.com"}, nil)

	account, err := v.Register(context.Background(), domain.AccountRegistration{Email: "ana@example.com", Password: "segredo123", FullName: "Ana"})

	require.NoError(t, err)
	assert.Equal(t, "a-1", account.ID)
	repo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockAccountRepository)
	v := newVerifier(repo, new(MockResolver))

	repo.On("Save", mock.Anything, mock.Anything).Return(domain.Account{}, &apperror.ConflictError{Msg: "createAccount: registro duplicado"})

	_, err := v.Register(context.Background(), domain.AccountRegistration{Email: "ana@example.com", Password: "segredo123"})

	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "já está em uso")
}

func TestRegister_ShortPassword(t *testing.T) {
	repo := new(MockAccountRepository)
	v := newVerifier(repo, new(MockResolver))

	_, err := v.Register(context.Background(), domain.AccountRegistration{Email: "ana@example.com", Password: "curta"})

	assert.IsType(t, &apperror.ValidationError{}, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
