package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
)

// HTTPClient talks to the backend REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for baseURL. tokens may be nil, in which case
// requests are never authenticated. timeout bounds each request; zero means
// no client-side limit beyond the caller's context.
func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &authTransport{base: http.DefaultTransport, tokens: tokens},
		},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Ping hits the liveness route.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/current-user", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("decode current user: empty user")
	}
	return resp.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	req := map[string]string{"email": email, "password": password}

	var resp LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, ErrNoToken
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	req := map[string]string{"name": name, "email": email, "password": password}

	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/register", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

func (c *HTTPClient) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	var resp struct {
		Invoices []models.Invoice `json:"invoices"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/invoices", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Invoices == nil {
		resp.Invoices = []models.Invoice{}
	}
	return resp.Invoices, nil
}

func (c *HTTPClient) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	return c.invoiceCall(ctx, http.MethodGet, invoicePath(id), nil)
}

func (c *HTTPClient) CreateInvoice(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error) {
	return c.invoiceCall(ctx, http.MethodPost, "/api/invoices", in)
}

func (c *HTTPClient) UpdateInvoice(ctx context.Context, id int64, in models.InvoiceInput) (*models.Invoice, error) {
	return c.invoiceCall(ctx, http.MethodPut, invoicePath(id), in)
}

func (c *HTTPClient) DeleteInvoice(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, invoicePath(id), nil, nil)
}

func (c *HTTPClient) Stats(ctx context.Context) (*models.Stats, error) {
	var resp struct {
		Stats models.Stats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/invoices/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

func invoicePath(id int64) string {
	return "/api/invoices/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) invoiceCall(ctx context.Context, method, path string, body any) (*models.Invoice, error) {
	var resp struct {
		Invoice *models.Invoice `json:"invoice"`
	}
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Invoice == nil {
		return nil, fmt.Errorf("decode invoice: empty invoice")
	}
	return resp.Invoice, nil
}

// do sends one JSON request and decodes a 2xx body into out (when non-nil).
// Failures come back already mapped, see mapStatus and mapTransportError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, path, err)
	}
	return nil
}

func mapTransportError(err error) error {
	if errors.Is(err, errTokenRead) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// mapStatus turns a non-2xx response into an *APIError. 401 and 422 still
// satisfy errors.Is(err, ErrUnauthorized).
func mapStatus(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
