package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/velorashop/storefront-backend/pkg/config"
	"github.com/velorashop/storefront-backend/pkg/logger"
)

// Sender delivers transactional mail. Constructed once at process start and
// injected; there is no package-level transporter.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single transactional email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Client sends mail through the provider's REST API.
type Client struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
}

// New builds a mail client from configuration.
func New(cfg config.MailerConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mailer api key is required")
	}
	if cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("mailer from address is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		from:    cfg.DefaultFrom,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers the message through the provider.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	payload := sendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: msg.To}}}},
		From:             emailAddress{Email: c.from},
		Subject:          msg.Subject,
		Content:          []content{{Type: "text/plain", Value: msg.Body}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling mail provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSender writes outbound mail to the application log instead of delivering
// it. Used in dev when no provider key is configured.
type LogSender struct {
	Logg *logger.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	if s.Logg != nil {
		ctx = s.Logg.WithFields(ctx, map[string]any{"to": msg.To, "subject": msg.Subject})
		s.Logg.Info(ctx, "mail.logged")
	}
	return nil
}
