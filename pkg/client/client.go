// Package client is a typed HTTP client for the casedesk REST API plus the
// session object that keeps the signed-in user and bearer token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/starford/casedesk/internal/models"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Client talks to one casedesk server.
type Client struct {
	baseURL string
	http    *http.Client

	mu             sync.RWMutex
	token          string
	onUnauthorized func()

	Auth           *AuthService
	Cases          *CaseService
	Customers      *CustomerService
	Investigations *InvestigationService
	Targets        *TargetService
	Search         *SearchService
	Dashboard      *DashboardService
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root, e.g. http://localhost:5000/api.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Cases = &CaseService{resource[models.Case, models.CaseInput, models.CasePatch]{c: c, path: "/cases", one: "case", many: "cases"}}
	c.Customers = &CustomerService{resource[models.Customer, models.CustomerInput, models.CustomerPatch]{c: c, path: "/customers", one: "customer", many: "customers"}}
	c.Investigations = &InvestigationService{resource[models.Investigation, models.InvestigationInput, models.InvestigationPatch]{c: c, path: "/investigations", one: "investigation", many: "investigations"}}
	c.Targets = &TargetService{resource[models.Target, models.TargetInput, models.TargetPatch]{c: c, path: "/targets", one: "target", many: "targets"}}
	c.Search = &SearchService{c: c}
	c.Dashboard = &DashboardService{c: c}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken attaches a bearer token to every request. An empty token detaches it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the attached bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// envelope is a decoded success body. Payload keys vary per endpoint.
type envelope map[string]json.RawMessage

func (e envelope) decode(key string, v any) error {
	raw, ok := e[key]
	if !ok {
		return fmt.Errorf("client: response has no %q field", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("client: decode %q: %w", key, err)
	}
	return nil
}

func (e envelope) message() string {
	var msg string
	_ = json.Unmarshal(e["message"], &msg)
	return msg
}

func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return q
}

// do sends one request and decodes the envelope. A 401 on a request that
// carried a token detaches the token and fires the unauthorized handler.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (envelope, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode body: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}
	return c.send(ctx, method, path, query, rdr, "application/json")
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	var env envelope
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("client: decode response: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.unauthorized()
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.message()}
	}
	return env, nil
}

func (c *Client) unauthorized() {
	c.mu.Lock()
	c.token = ""
	fn := c.onUnauthorized
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
