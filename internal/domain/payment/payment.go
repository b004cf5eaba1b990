package payment

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=../../usecase/mocks/gateway_mock.go -package=mocks . Gateway

const DefaultCurrency = "EUR"

var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrNoApprovalLink   = errors.New("no approval link in order response")
)

type OrderRequest struct {
	Amount        decimal.Decimal
	Currency      string
	CorrelationID string
	ReturnURL     string
	CancelURL     string
}

type Order struct {
	ID          string
	Status      string
	ApprovalURL string
}

type Capture struct {
	ID     string
	Status string
	Raw    json.RawMessage
}

// TransmissionHeaders are the PayPal-* headers delivered with every webhook call.
type TransmissionHeaders struct {
	AuthAlgo         string
	CertURL          string
	TransmissionID   string
	TransmissionSig  string
	TransmissionTime string
}

type SignatureCheck struct {
	Headers   TransmissionHeaders
	WebhookID string
	Event     json.RawMessage
}

// Gateway is the payment processor. Implementations authenticate on every call and never retry.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*Capture, error)
	VerifyWebhookSignature(ctx context.Context, check SignatureCheck) (bool, error)
}
