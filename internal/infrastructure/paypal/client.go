package paypal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Xausdorf/paypal-relay/internal/domain/payment"
)

const (
	requestTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
	maxErrorBody     = 256

	tokenPath  = "/v1/oauth2/token"
	ordersPath = "/v2/checkout/orders"
	verifyPath = "/v1/notifications/verify-webhook-signature"

	relApprove         = "approve"
	verificationPassed = "SUCCESS"
)

type Config struct {
	BaseURL  string
	ClientID string
	Secret   string
}

// Client talks to the PayPal REST API. It keeps no token between calls: every
// operation fetches a fresh one first.
type Client struct {
	baseURL    string
	creds      clientcredentials.Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		creds: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.Secret,
			TokenURL:     cfg.BaseURL + tokenPath,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// AccessToken runs the client-credentials grant.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.creds.ClientID == "" || c.creds.ClientSecret == "" {
		return "", fmt.Errorf("%w: missing client credentials", payment.ErrAuthentication)
	}

	tok, err := c.creds.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		return "", fmt.Errorf("%w: %v", payment.ErrAuthentication, err)
	}
	return tok.AccessToken, nil
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount   amount `json:"amount"`
	CustomID string `json:"custom_id"`
}

type applicationContext struct {
	ReturnURL          string `json:"return_url"`
	CancelURL          string `json:"cancel_url"`
	UserAction         string `json:"user_action"`
	ShippingPreference string `json:"shipping_preference"`
}

type orderPayload struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []link `json:"links"`
}

func (c *Client) CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.Order, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = payment.DefaultCurrency
	}

	body, err := c.post(ctx, ordersPath, token, orderPayload{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount:   amount{CurrencyCode: currency, Value: req.Amount.StringFixed(2)},
			CustomID: req.CorrelationID,
		}},
		ApplicationContext: applicationContext{
			ReturnURL:          req.ReturnURL,
			CancelURL:          req.CancelURL,
			UserAction:         "PAY_NOW",
			ShippingPreference: "NO_SHIPPING",
		},
	})
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	for _, l := range resp.Links {
		if l.Rel == relApprove {
			return &payment.Order{ID: resp.ID, Status: resp.Status, ApprovalURL: l.Href}, nil
		}
	}
	return nil, payment.ErrNoApprovalLink
}

func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*payment.Capture, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	// orderID comes from an inbound event and must stay a single path segment.
	body, err := c.post(ctx, ordersPath+"/"+url.PathEscape(orderID)+"/capture", token, nil)
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}
	return &payment.Capture{ID: resp.ID, Status: resp.Status, Raw: body}, nil
}

type verifyPayload struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

func (c *Client) VerifyWebhookSignature(ctx context.Context, check payment.SignatureCheck) (bool, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return false, err
	}

	body, err := c.post(ctx, verifyPath, token, verifyPayload{
		AuthAlgo:         check.Headers.AuthAlgo,
		CertURL:          check.Headers.CertURL,
		TransmissionID:   check.Headers.TransmissionID,
		TransmissionSig:  check.Headers.TransmissionSig,
		TransmissionTime: check.Headers.TransmissionTime,
		WebhookID:        check.WebhookID,
		WebhookEvent:     check.Event,
	})
	if err != nil {
		return false, err
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("decode verification response: %w", err)
	}
	return resp.VerificationStatus == verificationPassed, nil
}

func (c *Client) post(ctx context.Context, path, token string, payload any) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PayPal-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d: %s", payment.ErrUnexpectedStatus, path, resp.StatusCode, truncate(body))
	}
	return body, nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
