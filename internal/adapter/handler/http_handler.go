package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rl1809/storefront/internal/adapter/wire"
	"github.com/rl1809/storefront/internal/core/domain"
)

const maxBodyBytes = 1 << 20

const msgEmailTaken = "Email already exists. Please use a different email or try logging in."

type principal struct {
	UserID string
	Role   string
}

func (p principal) isAdmin() bool {
	return domain.ParseRole(p.Role) == domain.RoleAdmin
}

type principalKey struct{}

func principalFrom(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	return p, ok
}

// HTTPHandler serves the commerce API used by the storefront client.
type HTTPHandler struct {
	backend *Backend
	tokens  *TokenIssuer
}

func NewHTTPHandler(backend *Backend, tokens *TokenIssuer) *HTTPHandler {
	return &HTTPHandler{backend: backend, tokens: tokens}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(otelhttp.NewMiddleware("commerce-api"))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/login", h.Login)
		r.Post("/users/register", h.Register)
		r.Get("/books", h.ListBooks)
		r.Get("/books/{id}", h.GetBook)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{id}", h.GetCategory)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/users/me", h.Me)
			r.Put("/users/{id}", h.UpdateProfile)
			r.Put("/users/{id}/change-password", h.ChangePassword)
			r.Post("/orders", h.CreateOrder)
			r.Get("/orders/history/{userId}", h.OrderHistory)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/orders", h.ListOrders)
				r.Put("/orders/{id}/status", h.UpdateOrderStatus)
				r.Post("/books", h.CreateBook)
				r.Put("/books/{id}", h.UpdateBook)
				r.Delete("/books/{id}", h.DeleteBook)
				r.Post("/categories", h.CreateCategory)
				r.Put("/categories/{id}", h.UpdateCategory)
				r.Delete("/categories/{id}", h.DeleteCategory)
			})
		})
	})
	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		p, err := h.tokens.Verify(raw)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		// a token for a deleted account is as good as expired
		if _, err := h.backend.User(p.UserID); err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := principalFrom(r.Context())
		if !p.isAdmin() {
			writeMessage(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req wire.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.backend.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.tokens.Issue(u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.LoginResponse{Token: token, User: u})
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req wire.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.backend.CreateUser(req, domain.RoleCustomer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	u, err := h.backend.User(p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *HTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !ownerOrAdmin(w, r, id) {
		return
	}
	var req wire.ProfileUpdate
	if !decode(w, r, &req) {
		return
	}
	u, err := h.backend.UpdateUser(id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *HTTPHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if p, _ := principalFrom(r.Context()); p.UserID != id {
		writeMessage(w, http.StatusForbidden, "cannot change another user's password")
		return
	}
	var req wire.PasswordChange
	if !decode(w, r, &req) {
		return
	}
	if err := h.backend.ChangePassword(id, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "password changed")
}

func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backend.Books())
}

func (h *HTTPHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.backend.Book(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *HTTPHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	h.putBook(w, r, "", http.StatusCreated)
}

func (h *HTTPHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	h.putBook(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *HTTPHandler) putBook(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req wire.Book
	if !decode(w, r, &req) {
		return
	}
	book, err := h.backend.PutBook(id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, book)
}

func (h *HTTPHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.DeleteBook(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backend.Categories())
}

func (h *HTTPHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.backend.Category(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	h.putCategory(w, r, "", http.StatusCreated)
}

func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	h.putCategory(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *HTTPHandler) putCategory(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req wire.Category
	if !decode(w, r, &req) {
		return
	}
	c, err := h.backend.PutCategory(id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, c)
}

func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req wire.Order
	if !decode(w, r, &req) {
		return
	}
	order := h.backend.CreateOrder(req)
	log.Printf("handler: order %s placed by %s (%d items)", order.ID, order.UserID, len(order.Items))
	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backend.Orders())
}

// OrderHistory answers 404 for a user without orders.
func (h *HTTPHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !ownerOrAdmin(w, r, userID) {
		return
	}
	orders := h.backend.OrdersOf(userID)
	if len(orders) == 0 {
		writeMessage(w, http.StatusNotFound, "no orders found")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req wire.StatusUpdate
	if !decode(w, r, &req) {
		return
	}
	order, err := h.backend.SetOrderStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func ownerOrAdmin(w http.ResponseWriter, r *http.Request, userID string) bool {
	p, _ := principalFrom(r.Context())
	if p.UserID != userID && !p.isAdmin() {
		writeMessage(w, http.StatusForbidden, "access denied")
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrEmailTaken):
		writeMessage(w, http.StatusConflict, msgEmailTaken)
	case errors.Is(err, ErrBadCredentials):
		writeMessage(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, ErrWrongPassword), errors.Is(err, ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("handler: internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, wire.ErrorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
