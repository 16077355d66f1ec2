// Package paystack is a thin client over the two Paystack transaction
// endpoints the bot uses: initialize and verify.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/crewshare/crewbot/core/logger"
	"github.com/crewshare/crewbot/core/netutil"
)

// Status is the payment state reported by verify.
type Status string

const (
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
	StatusOngoing Status = "ongoing"
	StatusSuccess Status = "success"
)

// Client calls the Paystack REST API. Amounts are taken in naira and sent
// in kobo as the API requires.
type Client struct {
	baseURL   string
	secretKey string
	callback  string
	http      *http.Client

	attempts int
	backoff  time.Duration
}

// New builds a client for the given gateway endpoint.
func New(baseURL, secretKey, callbackURL string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		callback:  callbackURL,
		http:      &http.Client{Timeout: 15 * time.Second},
		attempts:  3,
		backoff:   500 * time.Millisecond,
	}
}

// InitResult is the checkout handoff returned by Initialize.
type InitResult struct {
	AuthorizationURL string
	Reference        string
}

type initRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Initialize starts a checkout for the given email and naira amount under
// a caller-generated reference, returning the hosted payment page URL.
func (c *Client) Initialize(ctx context.Context, email string, amountNaira int64, reference string) (*InitResult, error) {
	body, err := json.Marshal(initRequest{
		Email:       email,
		Amount:      amountNaira * 100, // naira -> kobo
		Reference:   reference,
		CallbackURL: c.callback,
	})
	if err != nil {
		return nil, fmt.Errorf("paystack: encode initialize: %w", err)
	}

	var parsed initResponse
	err = netutil.Do(ctx, c.attempts, c.backoff, func() error {
		return c.call(ctx, http.MethodPost, "/transaction/initialize", body, &parsed)
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Status || parsed.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("paystack: initialize rejected: %s", parsed.Message)
	}

	logger.Info(ctx, "pay", "paystack.initialized",
		slog.String("reference", reference), slog.Int64("amount", amountNaira))
	return &InitResult{
		AuthorizationURL: parsed.Data.AuthorizationURL,
		Reference:        parsed.Data.Reference,
	}, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
	} `json:"data"`
}

// Verify reports the state of the transaction behind reference. Statuses
// the bot does not model collapse to pending so callers simply re-prompt.
func (c *Client) Verify(ctx context.Context, reference string) (Status, error) {
	var parsed verifyResponse
	err := netutil.Do(ctx, c.attempts, c.backoff, func() error {
		return c.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &parsed)
	})
	if err != nil {
		return "", err
	}

	status := mapStatus(parsed.Data.Status)
	if Status(parsed.Data.Status) != status {
		logger.Warn(ctx, "pay", "paystack.unknown_status",
			slog.String("reference", reference), slog.String("raw", parsed.Data.Status))
	}
	logger.Debug(ctx, "pay", "paystack.verified",
		slog.String("reference", reference), slog.String("status", string(status)))
	return status, nil
}

func mapStatus(raw string) Status {
	switch Status(raw) {
	case StatusSuccess, StatusFailed, StatusOngoing, StatusPending:
		return Status(raw)
	default:
		return StatusPending
	}
}

func (c *Client) call(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("paystack: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paystack: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return netutil.MarkTemporary(fmt.Errorf("paystack: %s %s: status %d", method, path, resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("paystack: %s %s: status %d", method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("paystack: decode response: %w", err)
	}
	return nil
}
