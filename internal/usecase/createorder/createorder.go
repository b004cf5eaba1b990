package createorder

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paypal-relay/internal/domain/payment"
)

const (
	successPath   = "/payment-success"
	cancelledPath = "/payment-cancelled"
)

// minimumAmount is the smallest order accepted, in the configured currency.
var minimumAmount = decimal.New(100, -2)

var (
	ErrAmountTooLow  = errors.New("minimum amount is " + minimumAmount.StringFixed(2))
	ErrMissingUserID = errors.New("user_id is required")
)

type Request struct {
	Amount decimal.Decimal
	UserID string
	// BaseURL is the externally visible origin of this service, without a trailing slash.
	BaseURL string
}

type Response struct {
	OrderID     string
	ApprovalURL string
}

type UseCase struct {
	gateway  payment.Gateway
	currency string
}

func NewUseCase(gateway payment.Gateway, currency string) *UseCase {
	return &UseCase{gateway: gateway, currency: currency}
}

func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	if req.Amount.LessThan(minimumAmount) {
		return nil, ErrAmountTooLow
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, ErrMissingUserID
	}

	order, err := uc.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:        req.Amount,
		Currency:      uc.currency,
		CorrelationID: userID,
		ReturnURL:     req.BaseURL + successPath,
		CancelURL:     req.BaseURL + cancelledPath,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		OrderID:     order.ID,
		ApprovalURL: order.ApprovalURL,
	}, nil
}

// IsValidation reports whether err came from request validation rather than the gateway.
func IsValidation(err error) bool {
	return errors.Is(err, ErrAmountTooLow) || errors.Is(err, ErrMissingUserID)
}
