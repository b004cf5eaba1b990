package http

import (
	"context"
	_ "embed"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paypal-relay/internal/domain/payment"
	"github.com/Xausdorf/paypal-relay/internal/usecase/createorder"
	"github.com/Xausdorf/paypal-relay/internal/usecase/generateqr"
	"github.com/Xausdorf/paypal-relay/internal/usecase/webhook"
)

const maxBodyBytes = 1 << 20

var (
	//go:embed pages/payment-success.html
	paymentSuccessPage []byte
	//go:embed pages/payment-cancelled.html
	paymentCancelledPage []byte
)

type Handler struct {
	webhookUC     *webhook.UseCase
	createOrderUC *createorder.UseCase
	generateQRUC  *generateqr.UseCase
	logger        *slog.Logger
}

func NewHandler(
	webhookUC *webhook.UseCase,
	createOrderUC *createorder.UseCase,
	generateQRUC *generateqr.UseCase,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		webhookUC:     webhookUC,
		createOrderUC: createOrderUC,
		generateQRUC:  generateQRUC,
		logger:        logger,
	}
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateOrderRequest struct {
	Amount decimal.Decimal `json:"amount"`
	UserID string          `json:"user_id"`
}

type CreateOrderResponse struct {
	Success     bool   `json:"success"`
	ApprovalURL string `json:"approval_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (h *Handler) HandleHome(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "PayPal Webhook Server Running")
}

func (h *Handler) HandleWebhookReady(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "PayPal Webhook Endpoint Ready")
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	event, err := payment.ParseEvent(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	logger := h.logger.With(
		"request_id", middleware.GetReqID(r.Context()),
		"event_id", event.ID,
		"event_type", event.EventType,
	)
	logger.Info("paypal event received")

	// The processor may hang up early; the capture or notification still runs to completion.
	ctx := context.WithoutCancel(r.Context())

	resp, err := h.webhookUC.Execute(ctx, webhook.Request{
		Event:   event,
		Body:    body,
		Headers: transmissionHeaders(r.Header),
	})
	if errors.Is(err, webhook.ErrUnverified) {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid webhook signature"})
		return
	}
	if err != nil {
		logger.Error("paypal event dispatch failed", "error", err)
	} else {
		logger.Info("paypal event handled", "outcome", resp.Outcome, "reason", resp.Reason)
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.createOrder(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, CreateOrderResponse{Success: true, ApprovalURL: order.ApprovalURL})
}

func (h *Handler) HandleCreateOrderQR(w http.ResponseWriter, r *http.Request) {
	order, ok := h.createOrder(w, r)
	if !ok {
		return
	}

	png, err := h.generateQRUC.Execute(generateqr.Request{ApprovalURL: order.ApprovalURL})
	if err != nil {
		h.logger.Error("qr generation failed", "order_id", order.OrderID, "error", err)
		writeJSON(w, http.StatusInternalServerError, CreateOrderResponse{Error: "qr generation failed"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (h *Handler) HandlePaymentSuccess(w http.ResponseWriter, _ *http.Request) {
	writeHTML(w, paymentSuccessPage)
}

func (h *Handler) HandlePaymentCancelled(w http.ResponseWriter, _ *http.Request) {
	writeHTML(w, paymentCancelledPage)
}

// createOrder writes the error response itself and reports false when the order was not created.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) (*createorder.Response, bool) {
	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return nil, false
	}

	var req CreateOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return nil, false
	}

	resp, err := h.createOrderUC.Execute(r.Context(), createorder.Request{
		Amount:  req.Amount,
		UserID:  req.UserID,
		BaseURL: baseURL(r),
	})
	if createorder.IsValidation(err) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	if err != nil {
		h.logger.Error("order creation failed", "user_id", req.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, CreateOrderResponse{Error: err.Error()})
		return nil, false
	}

	h.logger.Info("order created", "order_id", resp.OrderID, "user_id", req.UserID, "amount", req.Amount.StringFixed(2))
	return resp, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func transmissionHeaders(h http.Header) payment.TransmissionHeaders {
	return payment.TransmissionHeaders{
		AuthAlgo:         h.Get("Paypal-Auth-Algo"),
		CertURL:          h.Get("Paypal-Cert-Url"),
		TransmissionID:   h.Get("Paypal-Transmission-Id"),
		TransmissionSig:  h.Get("Paypal-Transmission-Sig"),
		TransmissionTime: h.Get("Paypal-Transmission-Time"),
	}
}

// baseURL is the origin the payer's browser used to reach this service.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, s)
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
