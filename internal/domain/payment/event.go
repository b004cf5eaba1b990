package payment

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

const (
	EventOrderApproved    = "CHECKOUT.ORDER.APPROVED"
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	EventOrderCompleted   = "CHECKOUT.ORDER.COMPLETED"
)

// Values used when the processor payload omits a field.
const (
	DefaultAmount        = "0"
	UnknownTransactionID = "unknown"
)

var ErrMalformedEvent = errors.New("event is not a JSON object")

type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

type envelope struct {
	ID        json.RawMessage `json:"id"`
	EventType json.RawMessage `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

// ParseEvent only requires body to be a JSON object. An id or event type that is
// not a string reads as empty, so such an event is acknowledged as unknown.
func ParseEvent(body []byte) (Event, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return Event{}, ErrMalformedEvent
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	return Event{
		ID:        stringField(env.ID),
		EventType: stringField(env.EventType),
		Resource:  env.Resource,
	}, nil
}

// Details is what a completed payment contributes to a notification.
type Details struct {
	CorrelationID string
	Amount        string
	Currency      string
	TransactionID string
}

type Approval struct {
	OrderID       string
	CorrelationID string
	Amount        string
	Currency      string
}

type money struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency_code"`
}

type captureResource struct {
	ID       string `json:"id"`
	CustomID string `json:"custom_id"`
	Amount   *money `json:"amount"`
}

type purchaseUnit struct {
	CustomID string `json:"custom_id"`
	Amount   *money `json:"amount"`
	Payments *struct {
		Captures []captureResource `json:"captures"`
	} `json:"payments"`
}

type orderResource struct {
	ID            string         `json:"id"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

// ApprovedOrder reads an order-approved resource. ok is false unless both the
// correlation id and the order id are present.
func ApprovedOrder(ev Event) (Approval, bool) {
	var res orderResource
	if !decodeResource(ev.Resource, &res) {
		return Approval{}, false
	}

	unit := res.firstUnit()
	amount, currency := unit.Amount.orDefaults()
	a := Approval{
		OrderID:       res.ID,
		CorrelationID: unit.CustomID,
		Amount:        amount,
		Currency:      currency,
	}
	return a, a.OrderID != "" && a.CorrelationID != ""
}

// CompletedCapture reads a capture-completed resource, where the capture itself is the resource.
func CompletedCapture(ev Event) (Details, bool) {
	var res captureResource
	if !decodeResource(ev.Resource, &res) {
		return Details{}, false
	}

	amount, currency := res.Amount.orDefaults()
	d := Details{
		CorrelationID: res.CustomID,
		Amount:        amount,
		Currency:      currency,
		TransactionID: orUnknown(res.ID),
	}
	return d, d.CorrelationID != ""
}

// CompletedOrder reads an order-completed resource. The first capture of the first
// purchase unit wins over the unit amount and order id when it is present.
func CompletedOrder(ev Event) (Details, bool) {
	var res orderResource
	if !decodeResource(ev.Resource, &res) {
		return Details{}, false
	}

	unit := res.firstUnit()
	amount, currency := unit.Amount.orDefaults()
	d := Details{
		CorrelationID: unit.CustomID,
		Amount:        amount,
		Currency:      currency,
		TransactionID: orUnknown(res.ID),
	}

	if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
		c := unit.Payments.Captures[0]
		if c.Amount != nil {
			d.Amount, d.Currency = c.Amount.orDefaults()
		}
		if c.ID != "" {
			d.TransactionID = c.ID
		}
	}

	return d, d.CorrelationID != ""
}

func decodeResource(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return true
	}
	return json.Unmarshal(raw, v) == nil
}

func (r orderResource) firstUnit() purchaseUnit {
	if len(r.PurchaseUnits) == 0 {
		return purchaseUnit{}
	}
	return r.PurchaseUnits[0]
}

func (m *money) orDefaults() (string, string) {
	amount, currency := DefaultAmount, DefaultCurrency
	if m == nil {
		return amount, currency
	}
	if m.Value != "" {
		amount = m.Value
	}
	if m.CurrencyCode != "" {
		currency = m.CurrencyCode
	}
	return amount, currency
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func orUnknown(id string) string {
	if id == "" {
		return UnknownTransactionID
	}
	return id
}
