package webapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/app"
	"github.com/pesabank/pesabank/pkg/config"
	"github.com/pesabank/pesabank/pkg/domain/account"
	domainuser "github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/pesabank/pesabank/pkg/dto"
	"github.com/pesabank/pesabank/pkg/eventbus"
	"github.com/pesabank/pesabank/pkg/money"
	"github.com/pesabank/pesabank/pkg/repository"
	"github.com/pesabank/pesabank/webapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- in-memory unit of work ----
//
// One store backs the whole fake bank. Do serializes and restores a
// snapshot when the callback fails, standing in for a rolled-back
// transaction so handler tests exercise real service semantics.

type store struct {
	mu sync.Mutex

	users    map[uuid.UUID]dto.UserCreate
	byEmail  map[string]uuid.UUID
	accounts map[uuid.UUID]*acctRow
	byNumber map[string]uuid.UUID
	byUser   map[uuid.UUID]uuid.UUID
	ledger   []dto.TransactionCreate
}

type acctRow struct {
	id       uuid.UUID
	userID   uuid.UUID
	number   string
	balance  int64
	currency string
}

func newStore() *store {
	return &store{
		users:    make(map[uuid.UUID]dto.UserCreate),
		byEmail:  make(map[string]uuid.UUID),
		accounts: make(map[uuid.UUID]*acctRow),
		byNumber: make(map[string]uuid.UUID),
		byUser:   make(map[uuid.UUID]uuid.UUID),
	}
}

type memUoW struct {
	s *store
}

func (u *memUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	usersSnap := make(map[uuid.UUID]dto.UserCreate, len(u.s.users))
	for k, v := range u.s.users {
		usersSnap[k] = v
	}
	emailSnap := make(map[string]uuid.UUID, len(u.s.byEmail))
	for k, v := range u.s.byEmail {
		emailSnap[k] = v
	}
	balSnap := make(map[uuid.UUID]int64, len(u.s.accounts))
	for k, v := range u.s.accounts {
		balSnap[k] = v.balance
	}
	acctCount := len(u.s.accounts)
	ledgerLen := len(u.s.ledger)

	if err := fn(u); err != nil {
		u.s.users = usersSnap
		u.s.byEmail = emailSnap
		for id, bal := range balSnap {
			u.s.accounts[id].balance = bal
		}
		if len(u.s.accounts) != acctCount {
			for id, row := range u.s.accounts {
				if _, ok := balSnap[id]; !ok {
					delete(u.s.accounts, id)
					delete(u.s.byNumber, row.number)
					delete(u.s.byUser, row.userID)
				}
			}
		}
		u.s.ledger = u.s.ledger[:ledgerLen]
		return err
	}
	return nil
}

func (u *memUoW) AccountRepository() (repository.AccountRepository, error) {
	return (*memAccounts)(u), nil
}

func (u *memUoW) TransactionRepository() (repository.TransactionRepository, error) {
	return (*memLedger)(u), nil
}

func (u *memUoW) UserRepository() (repository.UserRepository, error) {
	return (*memUsers)(u), nil
}

type memAccounts memUoW

func (r *memAccounts) GetByNumber(_ context.Context, number string) (*account.Account, error) {
	id, ok := r.s.byNumber[number]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return r.hydrate(r.s.accounts[id])
}

func (r *memAccounts) GetByUserID(_ context.Context, userID uuid.UUID) (*account.Account, error) {
	id, ok := r.s.byUser[userID]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return r.hydrate(r.s.accounts[id])
}

func (r *memAccounts) Create(_ context.Context, create dto.AccountCreate) error {
	if _, exists := r.s.byNumber[create.Number]; exists {
		return repository.ErrDuplicate
	}
	row := &acctRow{
		id:       create.ID,
		userID:   create.UserID,
		number:   create.Number,
		currency: create.Currency,
	}
	r.s.accounts[row.id] = row
	r.s.byNumber[row.number] = row.id
	r.s.byUser[row.userID] = row.id
	return nil
}

func (r *memAccounts) AdjustBalance(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	row, ok := r.s.accounts[id]
	if !ok {
		return 0, account.ErrAccountNotFound
	}
	next := row.balance + delta
	if next < 0 {
		return 0, account.ErrInsufficientFunds
	}
	row.balance = next
	return next, nil
}

func (r *memAccounts) hydrate(row *acctRow) (*account.Account, error) {
	return account.New().
		WithID(row.id).
		WithUserID(row.userID).
		WithNumber(row.number).
		WithBalance(row.balance).
		WithCurrency(money.Code(row.currency)).
		Build()
}

type memLedger memUoW

func (r *memLedger) Append(_ context.Context, create dto.TransactionCreate) error {
	r.s.ledger = append(r.s.ledger, create)
	return nil
}

func (r *memLedger) ListForUser(_ context.Context, userID uuid.UUID) ([]dto.TransactionRead, error) {
	acctID, ok := r.s.byUser[userID]
	if !ok {
		return nil, nil
	}
	var out []dto.TransactionRead
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		row := r.s.ledger[i]
		if row.AccountID != acctID {
			continue
		}
		out = append(out, dto.TransactionRead{
			ID:            row.ID,
			AccountID:     row.AccountID,
			ReferenceCode: row.ReferenceCode,
			Amount:        float64(row.Amount) / 100,
			Currency:      row.Currency,
			Kind:          row.Kind,
			CreatedAt:     time.Now(),
		})
	}
	return out, nil
}

type memUsers memUoW

func (r *memUsers) Get(_ context.Context, id uuid.UUID) (*domainuser.User, error) {
	rec, ok := r.s.users[id]
	if !ok {
		return nil, domainuser.ErrUserNotFound
	}
	now := time.Now()
	return domainuser.NewUserFromData(
		rec.ID, rec.FirstName, rec.LastName, rec.Email, rec.PhoneNumber,
		rec.HashedPIN, now, now,
	), nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, domainuser.ErrUserNotFound
	}
	return r.Get(ctx, id)
}

func (r *memUsers) Create(_ context.Context, create dto.UserCreate) error {
	if _, exists := r.s.byEmail[create.Email]; exists {
		return repository.ErrDuplicate
	}
	r.s.users[create.ID] = create
	r.s.byEmail[create.Email] = create.ID
	return nil
}

func (r *memUsers) Update(_ context.Context, id uuid.UUID, update dto.UserUpdate) error {
	rec, ok := r.s.users[id]
	if !ok {
		return domainuser.ErrUserNotFound
	}
	if update.FirstName != nil {
		rec.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		rec.LastName = *update.LastName
	}
	if update.PhoneNumber != nil {
		rec.PhoneNumber = *update.PhoneNumber
	}
	r.s.users[id] = rec
	return nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, eventbus.Event) error { return nil }
func (nopBus) Subscribe(string, eventbus.HandlerFunc)        {}

// ---- harness ----

func testConfig() *config.App {
	return &config.App{
		Env: "test",
		Auth: &config.Auth{
			Jwt: &config.Jwt{Secret: "test-secret", Expiry: time.Hour},
		},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Ledger:    &config.Ledger{LockTimeout: time.Second, RefPrefix: "PB"},
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	deps := &app.Deps{
		Uow:      &memUoW{s: newStore()},
		EventBus: nopBus{},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return webapi.SetupApp(app.New(deps, testConfig()))
}

func doJSON(
	t *testing.T,
	a *fiber.App,
	method, path, token string,
	body any,
) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	var parsed map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp.StatusCode, parsed
}

func signupAndLogin(t *testing.T, a *fiber.App, email string) (token, accountNumber string) {
	t.Helper()
	status, body := doJSON(t, a, http.MethodPost, "/signup", "", fiber.Map{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      email,
		"pin":        "4242",
	})
	require.Equal(t, fiber.StatusCreated, status, "signup: %v", body)
	data := body["data"].(map[string]any)
	accountNumber = data["account"].(map[string]any)["account_number"].(string)

	status, body = doJSON(t, a, http.MethodPost, "/login", "", fiber.Map{
		"email": email,
		"pin":   "4242",
	})
	require.Equal(t, fiber.StatusOK, status, "login: %v", body)
	token = body["data"].(map[string]any)["token"].(string)
	return token, accountNumber
}

// ---- tests ----

func TestSignupLoginDepositBalance(t *testing.T) {
	a := newTestApp(t)
	token, number := signupAndLogin(t, a, "ada@example.com")
	assert.Len(t, number, 10)

	status, body := doJSON(t, a, http.MethodPost, "/deposit", token, fiber.Map{
		"amount": 150.00,
	})
	require.Equal(t, fiber.StatusOK, status, "deposit: %v", body)
	data := body["data"].(map[string]any)
	assert.Equal(t, 150.00, data["new_balance"])
	assert.NotEmpty(t, data["reference_code"])

	status, body = doJSON(t, a, http.MethodGet, "/balance", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]any)
	assert.Equal(t, 150.00, data["balance"])
	assert.Equal(t, number, data["account_number"])
}

func TestTransferBetweenUsers(t *testing.T) {
	a := newTestApp(t)
	senderToken, _ := signupAndLogin(t, a, "sender@example.com")
	receiverToken, receiverNumber := signupAndLogin(t, a, "receiver@example.com")

	status, _ := doJSON(t, a, http.MethodPost, "/deposit", senderToken, fiber.Map{
		"amount": 100.00,
	})
	require.Equal(t, fiber.StatusOK, status)

	status, body := doJSON(t, a, http.MethodPost, "/transfer", senderToken, fiber.Map{
		"to_account_number": receiverNumber,
		"amount":            40.00,
	})
	require.Equal(t, fiber.StatusOK, status, "transfer: %v", body)
	assert.Equal(t, 60.00, body["data"].(map[string]any)["new_balance"])

	status, body = doJSON(t, a, http.MethodGet, "/balance", receiverToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 40.00, body["data"].(map[string]any)["balance"])

	// both legs visible in history, newest first, sharing one reference
	status, body = doJSON(t, a, http.MethodGet, "/my-transactions", senderToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	list := body["data"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "debit", first["kind"])
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	a := newTestApp(t)
	senderToken, _ := signupAndLogin(t, a, "sender@example.com")
	_, receiverNumber := signupAndLogin(t, a, "receiver@example.com")

	status, body := doJSON(t, a, http.MethodPost, "/transfer", senderToken, fiber.Map{
		"to_account_number": receiverNumber,
		"amount":            10.00,
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, "body: %v", body)
}

func TestTransfer_SelfRejected(t *testing.T) {
	a := newTestApp(t)
	token, number := signupAndLogin(t, a, "ada@example.com")

	status, _ := doJSON(t, a, http.MethodPost, "/deposit", token, fiber.Map{
		"amount": 50.00,
	})
	require.Equal(t, fiber.StatusOK, status)

	status, body := doJSON(t, a, http.MethodPost, "/transfer", token, fiber.Map{
		"to_account_number": number,
		"amount":            10.00,
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, "body: %v", body)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	a := newTestApp(t)
	signupAndLogin(t, a, "ada@example.com")

	status, body := doJSON(t, a, http.MethodPost, "/signup", "", fiber.Map{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      "ada@example.com",
		"pin":        "9999",
	})
	assert.Equal(t, fiber.StatusConflict, status, "body: %v", body)
}

func TestLogin_WrongPIN(t *testing.T) {
	a := newTestApp(t)
	signupAndLogin(t, a, "ada@example.com")

	status, _ := doJSON(t, a, http.MethodPost, "/login", "", fiber.Map{
		"email": "ada@example.com",
		"pin":   "0000",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/deposit"},
		{http.MethodPost, "/transfer"},
		{http.MethodGet, "/balance"},
		{http.MethodGet, "/my-transactions"},
		{http.MethodGet, "/me"},
	} {
		status, _ := doJSON(t, a, tc.method, tc.path, "", nil)
		assert.NotEqual(t, fiber.StatusOK, status, "%s %s let an anonymous request through", tc.method, tc.path)
	}
}

func TestDeposit_InvalidAmount(t *testing.T) {
	a := newTestApp(t)
	token, _ := signupAndLogin(t, a, "ada@example.com")

	status, _ := doJSON(t, a, http.MethodPost, "/deposit", token, fiber.Map{
		"amount": -5.00,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDeposit_CurrencyMismatch(t *testing.T) {
	a := newTestApp(t)
	token, _ := signupAndLogin(t, a, "ada@example.com")

	status, body := doJSON(t, a, http.MethodPost, "/deposit", token, fiber.Map{
		"amount":   50.00,
		"currency": "EUR",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, "body: %v", body)

	// the account stays untouched
	status, body = doJSON(t, a, http.MethodGet, "/balance", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, 0.00, data["balance"])
}

func TestProfile(t *testing.T) {
	a := newTestApp(t)
	token, _ := signupAndLogin(t, a, "ada@example.com")

	status, body := doJSON(t, a, http.MethodGet, "/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Ada", body["data"].(map[string]any)["first_name"])

	status, body = doJSON(t, a, http.MethodPut, "/me", token, fiber.Map{
		"first_name": "Augusta",
	})
	require.Equal(t, fiber.StatusOK, status, "update: %v", body)
	assert.Equal(t, "Augusta", body["data"].(map[string]any)["first_name"])
}
