package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/storefront/internal/adapter/wire"
	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	adminEmail    = "admin@bookstore.test"
	adminPassword = "admin123"
)

type testServer struct {
	*httptest.Server
	backend *Backend
	tokens  *TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	backend := NewBackend()
	backend.hashCost = bcrypt.MinCost
	require.NoError(t, backend.EnsureAdmin(adminEmail, adminPassword))

	tokens := NewTokenIssuer([]byte("test-secret"), time.Hour)
	srv := httptest.NewServer(NewHTTPHandler(backend, tokens).Routes())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, backend: backend, tokens: tokens}
}

func (s *testServer) call(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &payload)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func (s *testServer) login(t *testing.T, email, password string) wire.LoginResponse {
	t.Helper()
	resp, body := s.call(t, http.MethodPost, "/api/users/login", "", wire.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out wire.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func (s *testServer) register(t *testing.T, email string) wire.LoginResponse {
	t.Helper()
	resp, body := s.call(t, http.MethodPost, "/api/users/register", "", wire.RegisterRequest{Name: "Reader", Email: email, Password: "secret"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return s.login(t, email, "secret")
}

func TestHandler_Health(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestHandler_LoginAndRegister(t *testing.T) {
	s := newTestServer(t)

	admin := s.login(t, adminEmail, adminPassword)
	assert.NotEmpty(t, admin.Token)
	assert.Equal(t, "ADMIN", admin.User.Role)

	resp, body := s.call(t, http.MethodPost, "/api/users/login", "", wire.LoginRequest{Email: adminEmail, Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "invalid email or password")

	reader := s.register(t, "reader@example.com")
	assert.Equal(t, "CUSTOMER", reader.User.Role)

	resp, body = s.call(t, http.MethodPost, "/api/users/register", "", wire.RegisterRequest{Email: "READER@example.com", Password: "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "Email already exists")
}

func TestHandler_AuthRequired(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.call(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.call(t, http.MethodGet, "/api/users/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	expired := NewTokenIssuer([]byte("test-secret"), time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	admin, err := s.backend.Authenticate(adminEmail, adminPassword)
	require.NoError(t, err)
	token, err := expired.Issue(admin)
	require.NoError(t, err)

	resp, _ = s.call(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_AdminOnlyMutations(t *testing.T) {
	s := newTestServer(t)
	reader := s.register(t, "reader@example.com")
	admin := s.login(t, adminEmail, adminPassword)

	book := wire.Book{Title: "Go", Author: "K", Price: 12.5, StockQuantity: 4}

	resp, _ := s.call(t, http.MethodPost, "/api/books", reader.Token, book)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.call(t, http.MethodPost, "/api/books", admin.Token, book)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created wire.Book
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)

	resp, body = s.call(t, http.MethodGet, "/api/books/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"book_id":"`+created.ID+`"`)

	resp, _ = s.call(t, http.MethodPost, "/api/books", admin.Token, wire.Book{Title: "Bad", Price: -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.call(t, http.MethodDelete, "/api/books/"+created.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = s.call(t, http.MethodGet, "/api/books/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.call(t, http.MethodGet, "/api/orders", reader.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandler_Categories(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, adminEmail, adminPassword)

	resp, body := s.call(t, http.MethodPost, "/api/categories", admin.Token, wire.Category{Name: "Tech"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var c wire.Category
	require.NoError(t, json.Unmarshal(body, &c))

	resp, _ = s.call(t, http.MethodPut, "/api/categories/"+c.ID, admin.Token, wire.Category{Name: "Technology"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.call(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []wire.Category
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Technology", list[0].Name)

	resp, _ = s.call(t, http.MethodPut, "/api/categories/missing", admin.Token, wire.Category{Name: "X"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_OrderFlow(t *testing.T) {
	s := newTestServer(t)
	reader := s.register(t, "reader@example.com")
	other := s.register(t, "other@example.com")
	admin := s.login(t, adminEmail, adminPassword)

	// An empty history answers 404
	resp, _ := s.call(t, http.MethodGet, "/api/orders/history/"+reader.User.ID, reader.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	draft := wire.Order{
		UserID:      reader.User.ID,
		Items:       []wire.OrderItem{{BookID: "b1", Title: "Go", Price: 12.5, Quantity: 2}},
		TotalAmount: 25,
		Status:      "PENDING",
	}
	resp, body := s.call(t, http.MethodPost, "/api/orders", reader.Token, draft)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var placed wire.Order
	require.NoError(t, json.Unmarshal(body, &placed))
	assert.NotEmpty(t, placed.ID)
	assert.NotEmpty(t, placed.OrderDate)
	assert.Equal(t, 25.0, placed.TotalAmount)

	resp, _ = s.call(t, http.MethodGet, "/api/orders/history/"+reader.User.ID, other.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = s.call(t, http.MethodGet, "/api/orders/history/"+reader.User.ID, reader.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []wire.Order
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 1)

	// Any known status may follow any other
	for _, status := range []string{"CANCELLED", "PROCESSING", "DELIVERED", "PENDING"} {
		resp, body = s.call(t, http.MethodPut, "/api/orders/"+placed.ID+"/status", admin.Token, wire.StatusUpdate{Status: status})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var updated wire.Order
		require.NoError(t, json.Unmarshal(body, &updated))
		assert.Equal(t, status, updated.Status)
	}

	resp, _ = s.call(t, http.MethodPut, "/api/orders/"+placed.ID+"/status", admin.Token, wire.StatusUpdate{Status: "LOST"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.call(t, http.MethodPut, "/api/orders/missing/status", admin.Token, wire.StatusUpdate{Status: "SHIPPED"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Profile(t *testing.T) {
	s := newTestServer(t)
	reader := s.register(t, "reader@example.com")
	other := s.register(t, "other@example.com")

	resp, body := s.call(t, http.MethodPut, "/api/users/"+reader.User.ID, reader.Token, wire.ProfileUpdate{Address: "1 Main St"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u wire.User
	require.NoError(t, json.Unmarshal(body, &u))
	assert.Equal(t, "1 Main St", u.Address)
	assert.Equal(t, "reader@example.com", u.Email)

	resp, _ = s.call(t, http.MethodPut, "/api/users/"+reader.User.ID, other.Token, wire.ProfileUpdate{Name: "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.call(t, http.MethodPut, "/api/users/"+reader.User.ID, reader.Token, wire.ProfileUpdate{Email: "other@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	path := "/api/users/" + reader.User.ID + "/change-password"
	resp, _ = s.call(t, http.MethodPut, path, reader.Token, wire.PasswordChange{CurrentPassword: "nope", NewPassword: "next"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.call(t, http.MethodPut, path, reader.Token, wire.PasswordChange{CurrentPassword: "secret", NewPassword: "next"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s.login(t, "reader@example.com", "next")
}

func TestBackend_Seed(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Seed())

	books := b.Books()
	require.Len(t, books, 3)
	assert.Equal(t, "Concurrency in Go", books[0].Title)
	assert.Len(t, b.Categories(), 2)
}

func TestBackend_CreateOrderKeepsClientTotals(t *testing.T) {
	b := NewBackend()
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	o := b.CreateOrder(wire.Order{UserID: "u1", TotalAmount: 99.99})
	assert.Equal(t, 99.99, o.TotalAmount)
	assert.Equal(t, string(domain.OrderStatusPending), o.Status)
	assert.Equal(t, "2026-03-01T09:00:00Z", o.OrderDate)
	assert.NotNil(t, o.Items)
}
