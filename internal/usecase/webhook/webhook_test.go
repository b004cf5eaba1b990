package webhook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Xausdorf/paypal-relay/internal/domain/notification"
	"github.com/Xausdorf/paypal-relay/internal/domain/payment"
	"github.com/Xausdorf/paypal-relay/internal/usecase/mocks"
	"github.com/Xausdorf/paypal-relay/internal/usecase/webhook"
)

const (
	approvedResource = `{"id":"ORDER-1","purchase_units":[{"custom_id":"12345","amount":{"value":"5.00","currency_code":"EUR"}}]}`
	capturedResource = `{"id":"CAP-1","custom_id":"12345","amount":{"value":"5.00","currency_code":"EUR"}}`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func request(eventType, resource string) webhook.Request {
	body := `{"event_type":"` + eventType + `","resource":` + resource + `}`
	return webhook.Request{
		Event:   payment.Event{EventType: eventType, Resource: []byte(resource)},
		Body:    []byte(body),
		Headers: payment.TransmissionHeaders{TransmissionID: "tx-1"},
	}
}

func newUseCase(ctrl *gomock.Controller, opts webhook.Options) (*webhook.UseCase, *mocks.MockGateway, *mocks.MockNotifier) {
	gateway := mocks.NewMockGateway(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	return webhook.NewUseCase(gateway, notifier, opts, discardLogger()), gateway, notifier
}

func TestWebhookUseCase_Execute_UnknownEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _, _ := newUseCase(ctrl, webhook.Options{})

	resp, err := uc.Execute(context.Background(), request("BILLING.SUBSCRIPTION.CREATED", `{"id":"I-1"}`))

	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeIgnored, resp.Outcome)
}

func TestWebhookUseCase_Execute_OrderApproved_Captures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, gateway, _ := newUseCase(ctrl, webhook.Options{})

	gateway.EXPECT().CaptureOrder(gomock.Any(), "ORDER-1").
		Return(&payment.Capture{ID: "ORDER-1", Status: "COMPLETED"}, nil).
		Times(1)

	resp, err := uc.Execute(context.Background(), request(payment.EventOrderApproved, approvedResource))

	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeCaptured, resp.Outcome)
}

func TestWebhookUseCase_Execute_OrderApproved_CaptureFailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, gateway, _ := newUseCase(ctrl, webhook.Options{})

	gateway.EXPECT().CaptureOrder(gomock.Any(), "ORDER-1").
		Return(nil, payment.ErrAuthentication)

	resp, err := uc.Execute(context.Background(), request(payment.EventOrderApproved, approvedResource))

	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeCaptureFailed, resp.Outcome)
	assert.Contains(t, resp.Reason, "authentication failed")
}

func TestWebhookUseCase_Execute_OrderApproved_WithoutCorrelationID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _, _ := newUseCase(ctrl, webhook.Options{})

	resp, err := uc.Execute(context.Background(),
		request(payment.EventOrderApproved, `{"id":"ORDER-1","purchase_units":[{"custom_id":""}]}`))

	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSkipped, resp.Outcome)
}

func TestWebhookUseCase_Execute_CaptureCompleted_Notifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _, notifier := newUseCase(ctrl, webhook.Options{})

	notifier.EXPECT().Notify(gomock.Any(), notification.Notification{
		CorrelationID: "12345",
		Amount:        "5.00",
		Currency:      "EUR",
		TransactionID: "CAP-1",
	}).Return(true, nil)

	resp, err := uc.Execute(context.Background(), request(payment.EventCaptureCompleted, capturedResource))

	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeNotified, resp.Outcome)
}

func TestWebhookUseCase_Execute_CaptureCompleted_EmptyCorrelationID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _, _ := newUseCase(ctrl, webhook.Options{})

	resp, err := uc.Execute(context.Background(),
		request(payment.EventCaptureCompleted, `{"id":"CAP-1","custom_id":"","amount":{"value":"5.00"}}`))

	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSkipped, resp.Outcome)
}

func TestWebhookUseCase_Execute_OrderCompleted_Notifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _, notifier := newUseCase(ctrl, webhook.Options{})

	notifier.EXPECT().Notify(gomock.Any(), notification.Notification{
		CorrelationID: "12345",
		Amount:        "5.00",
		Currency:      "EUR",
		TransactionID: "CAP-2",
	}).Return(true, nil)

	resp, err := uc.Execute(context.Background(), request(payment.EventOrderCompleted,
		`{"id":"ORDER-1","purchase_units":[{"custom_id":"12345","payments":{"captures":[{"id":"CAP-2","amount":{"value":"5.00","currency_code":"EUR"}}]}}]}`))

	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeNotified, resp.Outcome)
}

func TestWebhookUseCase_Execute_NotifyOutcomes(t *testing.T) {
	tests := []struct {
		name string
		sent bool
		err  error
		want webhook.Outcome
	}{
		{name: "disabled", sent: false, err: nil, want: webhook.OutcomeNotifyDisabled},
		{name: "failed", sent: false, err: errors.New("discord returned 500"), want: webhook.OutcomeNotifyFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			uc, _, notifier := newUseCase(ctrl, webhook.Options{})
			notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(tt.sent, tt.err)

			resp, err := uc.Execute(context.Background(), request(payment.EventCaptureCompleted, capturedResource))

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Outcome)
		})
	}
}

func TestWebhookUseCase_Execute_DuplicateEventsNotifyTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _, notifier := newUseCase(ctrl, webhook.Options{})

	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

	req := request(payment.EventCaptureCompleted, capturedResource)
	for range 2 {
		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, webhook.OutcomeNotified, resp.Outcome)
	}
}

func TestWebhookUseCase_Execute_Verification(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, gateway, notifier := newUseCase(ctrl, webhook.Options{VerifySignatures: true, WebhookID: "WH-1"})
	req := request(payment.EventCaptureCompleted, capturedResource)

	gateway.EXPECT().VerifyWebhookSignature(gomock.Any(), payment.SignatureCheck{
		Headers:   req.Headers,
		WebhookID: "WH-1",
		Event:     req.Body,
	}).Return(true, nil)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(true, nil)

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeNotified, resp.Outcome)
}

func TestWebhookUseCase_Execute_VerificationRejected(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		err  error
	}{
		{name: "signature rejected", ok: false, err: nil},
		{name: "gateway error", ok: false, err: payment.ErrAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			uc, gateway, _ := newUseCase(ctrl, webhook.Options{VerifySignatures: true, WebhookID: "WH-1"})
			gateway.EXPECT().VerifyWebhookSignature(gomock.Any(), gomock.Any()).Return(tt.ok, tt.err)

			resp, err := uc.Execute(context.Background(), request(payment.EventCaptureCompleted, capturedResource))

			require.ErrorIs(t, err, webhook.ErrUnverified)
			assert.Nil(t, resp)
		})
	}
}
