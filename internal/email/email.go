// Package email sends transactional and outreach mail through the Resend API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.resend.com"

// Sender delivers one email. Satisfied by *Client and by test fakes.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Client calls the Resend REST API.
type Client struct {
	apiKey     string
	from       string
	httpClient *http.Client

	// BaseURL is overridable so tests can point at a mock server.
	BaseURL string
}

// NewClient builds a client sending as the given from address,
// e.g. "AISim <outreach@aisim.com>".
func NewClient(apiKey, from string) *Client {
	return &Client{
		apiKey: apiKey,
		from:   from,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html"`
}

// Send delivers one email.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	reqBody := emailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshalling email failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/emails", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return fmt.Errorf("creating request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}
	return nil
}
