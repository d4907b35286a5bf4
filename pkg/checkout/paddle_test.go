package checkout_test

import (
	"context"
	"errors"
	"testing"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/environment"
)

type fakeTransactions struct {
	req *paddle.CreateTransactionRequest
	tx  *paddle.Transaction
	err error
}

func (f *fakeTransactions) CreateTransaction(_ context.Context, req *paddle.CreateTransactionRequest) (*paddle.Transaction, error) {
	f.req = req
	return f.tx, f.err
}

func TestPaddleGateway_Open(t *testing.T) {
	t.Parallel()

	fake := &fakeTransactions{tx: &paddle.Transaction{
		ID:       "txn_01",
		Checkout: &paddle.TransactionCheckout{URL: paddle.PtrTo("https://pay.example.com/?_ptxn=txn_01")},
	}}
	gw := checkout.NewPaddleGatewayWithClient(fake, environment.Sandbox)
	assert.Equal(t, environment.Sandbox, gw.Environment())

	sess, err := gw.Open(context.Background(), checkout.OpenRequest{
		SessionID:     "sess-1",
		PriceID:       "pri_1",
		PlanKey:       "pro-yearly-trial",
		CustomerEmail: "ana@example.com",
		Display:       checkout.Display{Locale: "fr"},
		SuccessURL:    "https://example.com/ok",
		Referral:      "ref-42",
	})
	require.NoError(t, err)

	assert.Equal(t, "txn_01", sess.TransactionID)
	assert.Equal(t, "https://pay.example.com/?_ptxn=txn_01", sess.URL)
	assert.Equal(t, "pri_1", sess.PriceID)
	assert.Equal(t, checkout.DefaultDisplay("fr"), sess.Display)

	require.NotNil(t, fake.req)
	require.Len(t, fake.req.Items, 1)
	assert.Equal(t, "sess-1", fake.req.CustomData["session_id"])
	assert.Equal(t, "ana@example.com", fake.req.CustomData["email"])
	assert.Equal(t, "pro-yearly-trial", fake.req.CustomData["plan_key"])
	assert.Equal(t, map[string]any{"referral": "ref-42"}, fake.req.CustomData["rewardful"])
	assert.Nil(t, fake.req.Checkout, "success url must not become the payment link")
	assert.Equal(t, "https://example.com/ok", sess.SuccessURL)
}

func TestPaddleGateway_OpenWithPaymentLink(t *testing.T) {
	t.Parallel()

	fake := &fakeTransactions{tx: &paddle.Transaction{
		ID:       "txn_03",
		Checkout: &paddle.TransactionCheckout{URL: paddle.PtrTo("https://pay.example.com/checkout?_ptxn=txn_03")},
	}}
	gw := checkout.NewPaddleGatewayWithClient(fake, environment.Production,
		checkout.WithPaymentLink(" https://pay.example.com/checkout "),
	)

	sess, err := gw.Open(context.Background(), checkout.OpenRequest{
		PriceID:    "pri_1",
		SuccessURL: "https://example.com/onboarding",
	})
	require.NoError(t, err)

	require.NotNil(t, fake.req.Checkout)
	assert.Equal(t, "https://pay.example.com/checkout", *fake.req.Checkout.URL)
	assert.Equal(t, "https://pay.example.com/checkout?_ptxn=txn_03", sess.URL)
	assert.Equal(t, "https://example.com/onboarding", sess.SuccessURL)
}

func TestPaddleGateway_Unavailable(t *testing.T) {
	t.Parallel()

	gw := checkout.NewPaddleGatewayWithClient(nil, environment.Production)
	_, err := gw.Open(context.Background(), checkout.OpenRequest{PriceID: "pri_1"})
	assert.ErrorIs(t, err, checkout.ErrGatewayUnavailable)

	var nilGateway *checkout.PaddleGateway
	_, err = nilGateway.Open(context.Background(), checkout.OpenRequest{PriceID: "pri_1"})
	assert.ErrorIs(t, err, checkout.ErrGatewayUnavailable)
}

func TestPaddleGateway_Errors(t *testing.T) {
	t.Parallel()

	fake := &fakeTransactions{err: errors.New("rate limited")}
	gw := checkout.NewPaddleGatewayWithClient(fake, environment.Production)

	_, err := gw.Open(context.Background(), checkout.OpenRequest{})
	assert.ErrorIs(t, err, checkout.ErrMissingPriceID)

	_, err = gw.Open(context.Background(), checkout.OpenRequest{PriceID: "pri_1"})
	assert.ErrorIs(t, err, checkout.ErrGatewayUnavailable)

	fake.err = nil
	fake.tx = &paddle.Transaction{ID: "txn_02"}
	_, err = gw.Open(context.Background(), checkout.OpenRequest{PriceID: "pri_1"})
	assert.ErrorIs(t, err, checkout.ErrNoCheckoutURL)
}

func TestNewPaddleGateway_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := checkout.NewPaddleGateway(checkout.PaddleConfig{}, environment.Production)
	assert.ErrorIs(t, err, checkout.ErrMissingAPIKey)
}

func TestGatewayFunc(t *testing.T) {
	t.Parallel()

	var gw checkout.Gateway = checkout.GatewayFunc(func(_ context.Context, req checkout.OpenRequest) (*checkout.Session, error) {
		return &checkout.Session{PriceID: req.PriceID}, nil
	})
	sess, err := gw.Open(context.Background(), checkout.OpenRequest{PriceID: "pri_9"})
	require.NoError(t, err)
	assert.Equal(t, "pri_9", sess.PriceID)
}
