package checkout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrymomot/funnel/pkg/valuation"
)

// SignalKind is a checkout lifecycle signal.
type SignalKind string

const (
	SignalCompleted             SignalKind = "completed"
	SignalClosed                SignalKind = "closed"
	SignalCustomerUpdated       SignalKind = "customer_updated"
	SignalPaymentMethodSelected SignalKind = "payment_method_selected"
)

// Paddle.js event names.
const (
	EventCheckoutCompleted       = "checkout.completed"
	EventCheckoutClosed          = "checkout.closed"
	EventCheckoutCustomerUpdated = "checkout.customer.updated"
	EventCheckoutPaymentSelected = "checkout.payment.selected"
)

var signalNames = map[string]SignalKind{
	EventCheckoutCompleted:       SignalCompleted,
	EventCheckoutClosed:          SignalClosed,
	EventCheckoutCustomerUpdated: SignalCustomerUpdated,
	EventCheckoutPaymentSelected: SignalPaymentMethodSelected,
}

// ParseSignalName maps a Paddle.js event name, or a signal kind, to a SignalKind.
func ParseSignalName(name string) (SignalKind, error) {
	name = strings.TrimSpace(name)
	if k, ok := signalNames[name]; ok {
		return k, nil
	}
	switch k := SignalKind(name); k {
	case SignalCompleted, SignalClosed, SignalCustomerUpdated, SignalPaymentMethodSelected:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSignal, name)
}

// Totals are the charged amounts reported on completion.
type Totals struct {
	Total *valuation.Amount `json:"total,omitempty"`
	Tax   *valuation.Amount `json:"tax,omitempty"`
}

// Signal is a checkout lifecycle event.
type Signal struct {
	Kind          SignalKind `json:"kind"`
	TransactionID string     `json:"transaction_id,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	Totals        Totals     `json:"totals"`
	Email         string     `json:"email,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	PriceID       string     `json:"price_id,omitempty"`
	// SessionID is set on signals derived from server notifications.
	SessionID string `json:"session_id,omitempty"`
}

// paddleJSEvent is the callback payload of the Paddle.js event handler.
type paddleJSEvent struct {
	Name string `json:"name"`
	Data struct {
		TransactionID string `json:"transaction_id"`
		CurrencyCode  string `json:"currency_code"`
		Totals        Totals `json:"totals"`
		Customer      struct {
			Email string `json:"email"`
		} `json:"customer"`
		Payment struct {
			MethodDetails struct {
				Type string `json:"type"`
			} `json:"method_details"`
		} `json:"payment"`
		Items []struct {
			PriceID string `json:"price_id"`
		} `json:"items"`
	} `json:"data"`
}

// ParseSignal decodes a Paddle.js checkout event forwarded by the browser.
func ParseSignal(payload []byte) (Signal, error) {
	var ev paddleJSEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Signal{}, fmt.Errorf("%w: %w", ErrInvalidSignal, err)
	}
	kind, err := ParseSignalName(ev.Name)
	if err != nil {
		return Signal{}, err
	}

	sig := Signal{
		Kind:          kind,
		TransactionID: ev.Data.TransactionID,
		Currency:      strings.ToUpper(ev.Data.CurrencyCode),
		Totals:        ev.Data.Totals,
		Email:         strings.TrimSpace(ev.Data.Customer.Email),
		PaymentMethod: ev.Data.Payment.MethodDetails.Type,
	}
	if len(ev.Data.Items) > 0 {
		sig.PriceID = ev.Data.Items[0].PriceID
	}
	return sig, nil
}
