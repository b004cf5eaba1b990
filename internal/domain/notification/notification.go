package notification

import (
	"context"
	"strings"
)

//go:generate mockgen -destination=../../usecase/mocks/notifier_mock.go -package=mocks . Notifier

const messagePrefix = "PAYPAL_DEPOSIT"

type Notification struct {
	CorrelationID string
	Amount        string
	Currency      string
	TransactionID string
}

// Message is the colon-delimited line the chat bot parses.
func (n Notification) Message() string {
	return strings.Join([]string{messagePrefix, n.CorrelationID, n.Amount, n.Currency, n.TransactionID}, ":")
}

// Notifier delivers a notification once. It reports false with a nil error when
// delivery is disabled.
type Notifier interface {
	Notify(ctx context.Context, n Notification) (bool, error)
}
