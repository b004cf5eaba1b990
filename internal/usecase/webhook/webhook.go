package webhook

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Xausdorf/paypal-relay/internal/domain/notification"
	"github.com/Xausdorf/paypal-relay/internal/domain/payment"
)

var ErrUnverified = errors.New("webhook signature not verified")

type Outcome string

const (
	OutcomeIgnored        Outcome = "ignored"
	OutcomeSkipped        Outcome = "skipped"
	OutcomeCaptured       Outcome = "captured"
	OutcomeCaptureFailed  Outcome = "capture_failed"
	OutcomeNotified       Outcome = "notified"
	OutcomeNotifyFailed   Outcome = "notify_failed"
	OutcomeNotifyDisabled Outcome = "notify_disabled"
)

type Options struct {
	VerifySignatures bool
	WebhookID        string
}

type Request struct {
	Event   payment.Event
	Body    []byte
	Headers payment.TransmissionHeaders
}

type Response struct {
	Outcome Outcome
	Reason  string
}

// UseCase reacts to processor events. Events are handled independently: a repeated
// event is processed again.
type UseCase struct {
	gateway  payment.Gateway
	notifier notification.Notifier
	opts     Options
	logger   *slog.Logger
}

func NewUseCase(gateway payment.Gateway, notifier notification.Notifier, opts Options, logger *slog.Logger) *UseCase {
	return &UseCase{
		gateway:  gateway,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// Execute returns ErrUnverified when signature verification is enforced and fails.
// Downstream failures are reported through the Response, never as an error.
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	if uc.opts.VerifySignatures {
		if err := uc.verify(ctx, req); err != nil {
			return nil, err
		}
	}

	switch req.Event.EventType {
	case payment.EventOrderApproved:
		approval, ok := payment.ApprovedOrder(req.Event)
		if !ok {
			return skipped("order id or correlation id missing"), nil
		}
		return uc.capture(ctx, approval), nil

	case payment.EventCaptureCompleted:
		details, ok := payment.CompletedCapture(req.Event)
		if !ok {
			return skipped("correlation id missing"), nil
		}
		return uc.notify(ctx, details), nil

	case payment.EventOrderCompleted:
		details, ok := payment.CompletedOrder(req.Event)
		if !ok {
			return skipped("correlation id missing"), nil
		}
		return uc.notify(ctx, details), nil

	default:
		return &Response{Outcome: OutcomeIgnored}, nil
	}
}

func (uc *UseCase) verify(ctx context.Context, req Request) error {
	ok, err := uc.gateway.VerifyWebhookSignature(ctx, payment.SignatureCheck{
		Headers:   req.Headers,
		WebhookID: uc.opts.WebhookID,
		Event:     req.Body,
	})
	if err != nil {
		uc.logger.Error("webhook verification failed", "event_id", req.Event.ID, "error", err)
		return ErrUnverified
	}
	if !ok {
		uc.logger.Warn("webhook signature rejected", "event_id", req.Event.ID)
		return ErrUnverified
	}
	return nil
}

func (uc *UseCase) capture(ctx context.Context, a payment.Approval) *Response {
	capture, err := uc.gateway.CaptureOrder(ctx, a.OrderID)
	if err != nil {
		uc.logger.Error("order capture failed",
			"order_id", a.OrderID,
			"correlation_id", a.CorrelationID,
			"error", err)
		return &Response{Outcome: OutcomeCaptureFailed, Reason: err.Error()}
	}

	uc.logger.Info("order captured",
		"order_id", a.OrderID,
		"correlation_id", a.CorrelationID,
		"status", capture.Status,
		"amount", a.Amount,
		"currency", a.Currency)
	return &Response{Outcome: OutcomeCaptured}
}

func (uc *UseCase) notify(ctx context.Context, d payment.Details) *Response {
	sent, err := uc.notifier.Notify(ctx, notification.Notification{
		CorrelationID: d.CorrelationID,
		Amount:        d.Amount,
		Currency:      d.Currency,
		TransactionID: d.TransactionID,
	})
	switch {
	case err != nil:
		return &Response{Outcome: OutcomeNotifyFailed, Reason: err.Error()}
	case !sent:
		return &Response{Outcome: OutcomeNotifyDisabled}
	default:
		return &Response{Outcome: OutcomeNotified}
	}
}

func skipped(reason string) *Response {
	return &Response{Outcome: OutcomeSkipped, Reason: reason}
}
