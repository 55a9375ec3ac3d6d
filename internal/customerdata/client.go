package customerdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dealbrief/dealbrief/internal/logging"
)

// NotFoundError means the service answered but knows no such customer.
// Distinct from TransportError so callers can treat it as a data condition
// rather than an infrastructure failure.
type NotFoundError struct {
	Name    string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Customer '%s' not found.", e.Name)
}

// TransportError covers timeouts, connection failures, and unexpected
// HTTP statuses from the customer data service.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("customer data service: %v", e.Err)
	}
	return fmt.Sprintf("customer data service returned HTTP %d: %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client fetches customer records from the lookup service.
// Safe for concurrent reuse across report requests.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logging.Logger
}

// NewClient creates a client for the service at baseURL with the given
// per-request timeout.
func NewClient(baseURL string, timeout time.Duration, log *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.Sub("customerdata"),
	}
}

// Fetch retrieves the record for a customer. Returns *NotFoundError when
// the service reports an unknown customer and *TransportError for
// timeouts, connection failures, and unexpected statuses.
func (c *Client) Fetch(ctx context.Context, customerName string) (map[string]any, error) {
	if customerName == "" {
		return nil, fmt.Errorf("customer name must not be empty")
	}

	reqURL := c.baseURL + "/?customer_name=" + url.QueryEscape(customerName)
	c.log.Debug().Str("url", reqURL).Msg("fetching customer data")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var record map[string]any
		if err := json.Unmarshal(body, &record); err != nil {
			return nil, &TransportError{Status: resp.StatusCode, Body: string(body), Err: err}
		}
		return record, nil

	case resp.StatusCode == http.StatusNotFound:
		var payload struct {
			Error string `json:"error"`
		}
		json.Unmarshal(body, &payload)
		return nil, &NotFoundError{Name: customerName, Message: payload.Error}

	default:
		return nil, &TransportError{Status: resp.StatusCode, Body: string(body)}
	}
}

// ListCustomers returns all customer names known to the service.
func (c *Client) ListCustomers(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/customers", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &TransportError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		Customers []string `json:"customers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: err}
	}
	return payload.Customers, nil
}
