package discord

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/Xausdorf/paypal-relay/internal/domain/notification"
)

const (
	requestTimeout = 10 * time.Second
	maxErrorBody   = 256
)

type message struct {
	Content string `json:"content"`
}

// Forwarder posts notifications to a Discord webhook. An empty URL disables it.
type Forwarder struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewForwarder(webhookURL string, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

func (f *Forwarder) Notify(ctx context.Context, n notification.Notification) (bool, error) {
	if f.webhookURL == "" {
		f.logger.Warn("discord webhook not configured, notification dropped",
			"correlation_id", n.CorrelationID)
		return false, nil
	}

	if err := f.post(ctx, n.Message()); err != nil {
		f.logger.Error("discord notification failed",
			"correlation_id", n.CorrelationID,
			"transaction_id", n.TransactionID,
			"error", err)
		return false, err
	}

	f.logger.Info("discord notification sent",
		"correlation_id", n.CorrelationID,
		"amount", n.Amount,
		"currency", n.Currency)
	return true, nil
}

func (f *Forwarder) post(ctx context.Context, content string) error {
	body, err := json.Marshal(message{Content: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, detail)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
