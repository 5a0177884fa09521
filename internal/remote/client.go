// Package remote provides an HTTP client for the ledger's transactions API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/uuid"
)

// RequestIDHeader correlates client calls with server log lines.
const RequestIDHeader = "X-Request-ID"

// Record is a transaction as returned by the remote store.
type Record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Date      string          `json:"date"`
	Type      string          `json:"type"`
	Value     decimal.Decimal `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRecord is the payload for creating a transaction.
type NewRecord struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Type     string          `json:"type"`
	Value    decimal.Decimal `json:"value"`
}

// StatusError is returned when the remote store answers with a non-success
// status. It is always wrapped in apperrors.ErrRemoteUnavailable.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client communicates with the remote transactions API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListTransactions fetches every transaction, newest first.
func (c *Client) ListTransactions(ctx context.Context) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/transactions", nil)
	if err != nil {
		return nil, unavailable("fetching transactions", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("fetching transactions", statusError(resp))
	}

	records := []Record{}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, unavailable("decoding transactions response", err)
	}
	return records, nil
}

// CreateTransaction submits a transaction and returns the stored record.
func (c *Client) CreateTransaction(ctx context.Context, rec NewRecord) (*Record, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshaling transaction: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/transactions", body)
	if err != nil {
		return nil, unavailable("creating transaction", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, unavailable("creating transaction", statusError(resp))
	}

	var created Record
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, unavailable("decoding created transaction", err)
	}
	if created.ID == "" {
		return nil, unavailable("creating transaction", fmt.Errorf("response carried no id"))
	}
	return &created, nil
}

// DeleteTransaction removes a transaction. A record the remote store does
// not know counts as deleted.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil)
	if err != nil {
		return unavailable("deleting transaction", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	}
	return unavailable("deleting transaction", statusError(resp))
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.New())

	return c.httpClient.Do(req)
}

func statusError(resp *http.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		se.Code = body.Code
		se.Message = body.Message
	}
	return se
}

func unavailable(action string, err error) *apperrors.AppError {
	return apperrors.Wrap(apperrors.ErrRemoteUnavailable, fmt.Errorf("%s: %w", action, err))
}
