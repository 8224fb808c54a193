package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/velorashop/storefront-backend/pkg/config"
)

// Gateway is the payment-provider surface the checkout flow depends on. The
// provider is opaque: it either returns a gateway order id or an error.
type Gateway interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// CreateOrderInput carries the charge request. Amount is in whole currency
// units; the wire format uses subunits.
type CreateOrderInput struct {
	Amount  int
	Receipt string
	Notes   map[string]string
}

// GatewayOrder is the provider-side order reference returned on success.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Client talks to the payment gateway's REST API with basic-auth credentials.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	currency  string
	http      *http.Client
}

// New builds a gateway client from configuration.
func New(cfg config.PaymentConfig) (*Client, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("payment gateway credentials are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		currency:  cfg.Currency,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// CreateOrder registers the charge with the gateway and returns its order id.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*GatewayOrder, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("charge amount must be positive")
	}

	payload := orderRequest{
		// gateway expects subunits
		Amount:   int64(input.Amount) * 100,
		Currency: c.currency,
		Receipt:  input.Receipt,
		Notes:    input.Notes,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building order request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling payment gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var order GatewayOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decoding gateway response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway response missing order id")
	}
	return &order, nil
}

// VerifySignature checks the HMAC the gateway sends back after a payment. The
// signed message is "<orderID>|<paymentID>".
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}

// VerifySignature is the raw HMAC-SHA256 check, exported for tests and tools.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
