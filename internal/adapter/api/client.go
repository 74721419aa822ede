package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rl1809/storefront/internal/adapter/wire"
	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20 // 1MB
)

// SessionSource supplies the bearer token and is told when the service
// rejects it.
type SessionSource interface {
	Token() string
	Invalidate(ctx context.Context)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// Client talks to the commerce service. Each call sends exactly one
// request; nothing is retried.
type Client struct {
	baseURL string
	http    *http.Client
	session SessionSource
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseSession attaches the token source. Call it once during wiring,
// before the client is shared.
func (c *Client) UseSession(s SessionSource) {
	c.session = s
}

type request struct {
	method string
	path   string
	body   any
	// anonymous requests never carry a token, and a 401 answer does not
	// invalidate the session
	anonymous bool
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var token string
	if !r.anonymous && c.session != nil {
		token = c.session.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &domain.Error{Kind: domain.ErrConnectivity, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &domain.Error{Kind: domain.ErrConnectivity, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// only a request that sent a token can end the session; a rejected
		// login or an anonymous call leaves the current one alone
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			// the caller may have given up already; the session must still go
			c.session.Invalidate(context.WithoutCancel(ctx))
		}
		return statusError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.Error{Kind: domain.ErrService, Message: "malformed response", Status: resp.StatusCode, Err: err}
	}
	return nil
}

func statusError(status int, body []byte) error {
	var payload wire.ErrorResponse
	_ = json.Unmarshal(body, &payload)
	e := &domain.Error{Status: status, Message: payload.Message}

	switch {
	case status == http.StatusBadRequest:
		e.Kind = domain.ErrValidation
	case status == http.StatusUnauthorized:
		// the user is told to log in again, whatever the service said
		e.Kind = domain.ErrAuthorization
		e.Message = ""
	case status == http.StatusForbidden:
		e.Kind = domain.ErrForbidden
	case status == http.StatusNotFound:
		e.Kind = domain.ErrNotFound
	case status == http.StatusConflict:
		e.Kind = domain.ErrConflict
	default:
		e.Kind = domain.ErrService
		e.Message = ""
	}
	return e
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Session, string, error) {
	var resp wire.LoginResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/users/login",
		body:      wire.LoginRequest{Email: creds.Email, Password: creds.Password},
		anonymous: true,
	}, &resp)
	if errors.Is(err, domain.ErrAuthorization) {
		return domain.Session{}, "", &domain.Error{Kind: domain.ErrAuthorization, Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	}
	if err != nil {
		return domain.Session{}, "", err
	}
	if resp.Token == "" || resp.User.ID == "" {
		return domain.Session{}, "", &domain.Error{Kind: domain.ErrService, Message: "login response without token"}
	}
	return resp.User.ToSession(), resp.Token, nil
}
