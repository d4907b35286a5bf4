package checkout

import (
	"context"
	"fmt"
	"strings"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/dmitrymomot/funnel/pkg/environment"
)

// PaddleConfig holds the Paddle credentials for one environment.
type PaddleConfig struct {
	APIKey        string `env:"API_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	ClientToken   string `env:"CLIENT_TOKEN"`
	// PaymentLinkURL is an approved payment page. Empty uses the account default payment link.
	PaymentLinkURL string `env:"PAYMENT_LINK_URL" validate:"omitempty,url"`
}

// TransactionCreator is the part of the Paddle transactions client the gateway uses.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, req *paddle.CreateTransactionRequest) (*paddle.Transaction, error)
}

// PaddleGateway opens checkouts by creating Paddle transactions.
type PaddleGateway struct {
	transactions TransactionCreator
	env          environment.Environment
	paymentLink  string
}

// GatewayOption configures a PaddleGateway.
type GatewayOption func(*PaddleGateway)

// WithPaymentLink sets the approved payment page the transaction checkout URL is built on.
func WithPaymentLink(url string) GatewayOption {
	return func(g *PaddleGateway) {
		g.paymentLink = strings.TrimSpace(url)
	}
}

// NewPaddleGateway creates a gateway for the environment's Paddle API.
func NewPaddleGateway(cfg PaddleConfig, env environment.Environment) (*PaddleGateway, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	var (
		client *paddle.SDK
		err    error
	)
	if env.IsSandbox() {
		client, err = paddle.NewSandbox(cfg.APIKey)
	} else {
		client, err = paddle.New(cfg.APIKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return NewPaddleGatewayWithClient(client.TransactionsClient, env, WithPaymentLink(cfg.PaymentLinkURL)), nil
}

// NewPaddleGatewayWithClient creates a gateway on an existing transactions client.
// A nil client yields a gateway that reports ErrGatewayUnavailable.
func NewPaddleGatewayWithClient(tc TransactionCreator, env environment.Environment, opts ...GatewayOption) *PaddleGateway {
	g := &PaddleGateway{transactions: tc, env: env}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Environment reports which Paddle environment the gateway talks to.
func (g *PaddleGateway) Environment() environment.Environment { return g.env }

// Open implements Gateway.
func (g *PaddleGateway) Open(ctx context.Context, req OpenRequest) (*Session, error) {
	if g == nil || g.transactions == nil {
		return nil, ErrGatewayUnavailable
	}
	if strings.TrimSpace(req.PriceID) == "" {
		return nil, ErrMissingPriceID
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: quantity,
	})

	txReq := &paddle.CreateTransactionRequest{
		Items:      []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData(req.customData()),
	}
	// The success URL is an overlay setting; the transaction checkout URL is the payment page.
	if g.paymentLink != "" {
		txReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(g.paymentLink),
		}
	}

	tx, err := g.transactions.CreateTransaction(ctx, txReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create paddle transaction: %w", ErrGatewayUnavailable, err)
	}
	if tx == nil || tx.Checkout == nil || tx.Checkout.URL == nil {
		return nil, ErrNoCheckoutURL
	}

	display := req.Display
	if display.Mode == "" {
		display = DefaultDisplay(display.Locale)
	}

	return &Session{
		TransactionID: tx.ID,
		URL:           *tx.Checkout.URL,
		PriceID:       req.PriceID,
		Display:       display,
		SuccessURL:    req.SuccessURL,
	}, nil
}
