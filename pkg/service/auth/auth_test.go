package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/config"
	"github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/pesabank/pesabank/pkg/dto"
	"github.com/pesabank/pesabank/pkg/repository"
	"github.com/pesabank/pesabank/pkg/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userUoW is a unit of work backed by a map of users. Auth only reads, so
// there is no transactional state to roll back.
type userUoW struct {
	byEmail map[string]*user.User
}

func (u *userUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(u)
}

func (u *userUoW) AccountRepository() (repository.AccountRepository, error) {
	return nil, errors.New("not registered")
}

func (u *userUoW) TransactionRepository() (repository.TransactionRepository, error) {
	return nil, errors.New("not registered")
}

func (u *userUoW) UserRepository() (repository.UserRepository, error) {
	return (*userRepo)(u), nil
}

type userRepo userUoW

func (r *userRepo) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepo) Create(ctx context.Context, create dto.UserCreate) error {
	return errors.New("read-only")
}

func (r *userRepo) Update(ctx context.Context, id uuid.UUID, update dto.UserUpdate) error {
	return errors.New("read-only")
}

func newService(t *testing.T, users ...*user.User) *auth.Service {
	t.Helper()
	uow := &userUoW{byEmail: make(map[string]*user.User)}
	for _, u := range users {
		uow.byEmail[u.Email] = u
	}
	cfg := &config.Jwt{Secret: "test-secret", Expiry: time.Hour}
	return auth.New(uow, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newUser(t *testing.T, email, pin string) *user.User {
	t.Helper()
	u, err := user.NewUser("Ada", "Lovelace", email, "+15550001111", pin)
	require.NoError(t, err)
	return u
}

func TestLogin(t *testing.T) {
	t.Parallel()
	u := newUser(t, "ada@example.com", "4242")
	svc := newService(t, u)

	got, err := svc.Login(context.Background(), "ada@example.com", "4242")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestLogin_WrongPIN(t *testing.T) {
	t.Parallel()
	svc := newService(t, newUser(t, "ada@example.com", "4242"))

	_, err := svc.Login(context.Background(), "ada@example.com", "9999")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "4242")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	t.Parallel()
	u := newUser(t, "ada@example.com", "4242")
	svc := newService(t, u)

	read, err := svc.Login(context.Background(), "ada@example.com", "4242")
	require.NoError(t, err)

	signed, err := svc.GenerateToken(read)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	got, err := svc.CurrentUserID(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got)
}

func TestCurrentUserID_Malformed(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, err := svc.CurrentUserID(nil)
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	noSub := &jwt.Token{Claims: jwt.MapClaims{}}
	_, err = svc.CurrentUserID(noSub)
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	badSub := &jwt.Token{Claims: jwt.MapClaims{"sub": "not-a-uuid"}}
	_, err = svc.CurrentUserID(badSub)
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}
