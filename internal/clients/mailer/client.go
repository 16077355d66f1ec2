// Package mailer posts verification codes to the outbound mail relay.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/crewshare/crewbot/core/logger"
	"github.com/crewshare/crewbot/core/netutil"
)

// Client calls the mail relay webhook.
type Client struct {
	url  string
	http *http.Client

	attempts int
	backoff  time.Duration
}

// New builds a client for the given relay URL.
func New(url string) *Client {
	return &Client{
		url:      url,
		http:     &http.Client{Timeout: 10 * time.Second},
		attempts: 3,
		backoff:  500 * time.Millisecond,
	}
}

type sendRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Verification string `json:"verification"`
}

// SendVerification mails the signup code. The relay owns templating; the
// bot only supplies the recipient and the code.
func (c *Client) SendVerification(ctx context.Context, name, email, code string) error {
	body, err := json.Marshal(sendRequest{Name: name, Email: email, Verification: code})
	if err != nil {
		return fmt.Errorf("mailer: encode request: %w", err)
	}

	err = netutil.Do(ctx, c.attempts, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("mailer: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("mailer: post: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return netutil.MarkTemporary(fmt.Errorf("mailer: status %d", resp.StatusCode))
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("mailer: status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "mail", "mailer.verification_sent", slog.String("email", email))
	return nil
}
