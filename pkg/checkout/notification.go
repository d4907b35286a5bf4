package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/dmitrymomot/funnel/pkg/valuation"
)

// NotificationTransactionCompleted is the Paddle notification the funnel handles.
const NotificationTransactionCompleted = "transaction.completed"

// maxNotificationSize caps the webhook body read.
const maxNotificationSize = 1 << 20

// Notification is a verified Paddle webhook bound to a funnel session.
type Notification struct {
	EventID   string
	EventType string
	SessionID string
	Signal    Signal
}

// NotificationParser verifies and decodes Paddle webhooks.
type NotificationParser struct {
	verifier *paddle.WebhookVerifier
}

// NewNotificationParser creates a parser for the given webhook secret.
func NewNotificationParser(secret string) *NotificationParser {
	return &NotificationParser{verifier: paddle.NewWebhookVerifier(secret)}
}

// Parse verifies the Paddle-Signature header of r and decodes the body.
// Notifications other than transaction.completed return ErrIgnoredNotification.
func (p *NotificationParser) Parse(r *http.Request) (*Notification, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}
	if err := p.verify(r.Context(), body, r.Header.Get("Paddle-Signature")); err != nil {
		return nil, err
	}
	return ParseNotification(body)
}

func (p *NotificationParser) verify(ctx context.Context, body []byte, signature string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSignatureMismatch, err)
	}
	if !valid {
		return ErrSignatureMismatch
	}
	return nil
}

type paddleNotification struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Data      struct {
		ID           string         `json:"id"`
		Status       string         `json:"status"`
		CurrencyCode string         `json:"currency_code"`
		CustomData   map[string]any `json:"custom_data"`
		Details      struct {
			Totals struct {
				Total string `json:"total"`
				Tax   string `json:"tax"`
			} `json:"totals"`
		} `json:"details"`
		Items []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"items"`
	} `json:"data"`
}

// ParseNotification decodes an already verified notification body.
// Totals arrive as minor-unit strings.
func ParseNotification(body []byte) (*Notification, error) {
	var n paddleNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}
	if n.EventType != NotificationTransactionCompleted {
		return nil, fmt.Errorf("%w: %s", ErrIgnoredNotification, n.EventType)
	}

	sessionID, _ := n.Data.CustomData["session_id"].(string)
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: no session_id in custom data", ErrInvalidNotification)
	}

	sig := Signal{
		Kind:          SignalCompleted,
		TransactionID: n.Data.ID,
		Currency:      strings.ToUpper(n.Data.CurrencyCode),
		SessionID:     sessionID,
	}
	if email, ok := n.Data.CustomData["email"].(string); ok {
		sig.Email = email
	}
	if len(n.Data.Items) > 0 {
		sig.PriceID = n.Data.Items[0].Price.ID
	}
	if v := n.Data.Details.Totals.Total; v != "" {
		total, err := valuation.ParseMinor(v)
		if err != nil {
			return nil, fmt.Errorf("%w: total: %w", ErrInvalidNotification, err)
		}
		sig.Totals.Total = &total
	}
	if v := n.Data.Details.Totals.Tax; v != "" {
		tax, err := valuation.ParseMinor(v)
		if err != nil {
			return nil, fmt.Errorf("%w: tax: %w", ErrInvalidNotification, err)
		}
		sig.Totals.Tax = &tax
	}

	return &Notification{
		EventID:   n.EventID,
		EventType: n.EventType,
		SessionID: sessionID,
		Signal:    sig,
	}, nil
}
