package valuation_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/valuation"
)

type assumptions struct {
	payment valuation.Amount
	rate    float64
}

func (a *assumptions) ValueAssumptions() (valuation.Amount, float64, bool) {
	if a == nil {
		return 0, 0, false
	}
	return a.payment, a.rate, true
}

func TestExpectedTrialValue(t *testing.T) {
	t.Parallel()

	t.Run("rate times payment", func(t *testing.T) {
		t.Parallel()
		got := valuation.ExpectedTrialValue(&assumptions{payment: valuation.FromFloat(20), rate: 0.30})
		assert.Equal(t, valuation.Amount(600), got)
		assert.Equal(t, "6.00", got.String())
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		t.Parallel()
		got := valuation.ExpectedTrialValue(&assumptions{payment: valuation.FromFloat(39), rate: 0.333})
		assert.Equal(t, "12.99", got.String())
	})

	t.Run("matches round(rate*payment,2) for catalog-like values", func(t *testing.T) {
		t.Parallel()
		for _, payment := range []float64{20, 29, 39, 49, 59, 120, 149, 228, 390, 468, 490, 1188} {
			for _, rate := range []float64{0, 0.05, 0.3, 0.5, 1} {
				a := &assumptions{payment: valuation.FromFloat(payment), rate: rate}
				want := math.Round(rate*payment*100) / 100
				if rate == 0 {
					want = math.Round(valuation.DefaultConversionRate*payment*100) / 100
				}
				got := valuation.ExpectedTrialValue(a)
				assert.InDelta(t, want, got.Float(), 0.001, "payment=%v rate=%v", payment, rate)
				assert.Equal(t, got, valuation.ExpectedTrialValue(a), "deterministic")
			}
		}
	})

	t.Run("nil plan falls back to nominal value", func(t *testing.T) {
		t.Parallel()
		var missing *assumptions
		assert.Equal(t, valuation.NominalValue, valuation.ExpectedTrialValue(missing))
		assert.Equal(t, valuation.NominalValue, valuation.ExpectedTrialValue(nil))
		assert.Equal(t, "1.00", valuation.NominalValue.String())
	})
}

func TestAttributedValue(t *testing.T) {
	t.Parallel()

	plan := &assumptions{payment: valuation.FromFloat(20), rate: 0.30}
	zero := valuation.Zero
	actual := valuation.FromFloat(49)

	assert.Equal(t, valuation.Amount(600), valuation.AttributedValue(true, plan, &zero), "trial reports expected value")
	assert.Equal(t, valuation.Amount(600), valuation.AttributedValue(true, plan, &actual), "trial ignores charged total")
	assert.Equal(t, actual, valuation.AttributedValue(false, plan, &actual))
	assert.Equal(t, valuation.Zero, valuation.AttributedValue(false, plan, nil))
	assert.Equal(t, "49.00", valuation.AttributedValue(false, nil, &actual).String())
}

func TestTrialWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	from, until := valuation.TrialWindow(start, 7)
	assert.Equal(t, start, from)
	assert.Equal(t, time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC), until)

	_, until = valuation.TrialWindow(start, 0)
	assert.Equal(t, start.AddDate(0, 0, valuation.DefaultTrialDays), until)
}

func TestAmountParsing(t *testing.T) {
	t.Parallel()

	a, err := valuation.ParseMinor("4900")
	require.NoError(t, err)
	assert.Equal(t, "49.00", a.String())

	_, err = valuation.ParseMinor("-1")
	assert.ErrorIs(t, err, valuation.ErrNegativeAmount)

	_, err = valuation.ParseMinor("abc")
	assert.ErrorIs(t, err, valuation.ErrInvalidAmount)

	a, err = valuation.ParseDecimal("12.5")
	require.NoError(t, err)
	assert.Equal(t, valuation.Amount(1250), a)

	var decoded valuation.Amount
	require.NoError(t, decoded.UnmarshalJSON([]byte(`49.5`)))
	assert.Equal(t, valuation.Amount(4950), decoded)
	require.NoError(t, decoded.UnmarshalJSON([]byte(`"12"`)))
	assert.Equal(t, valuation.Amount(1200), decoded)

	b, err := valuation.FromFloat(6).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "6.00", string(b))
	assert.Equal(t, "-0.50", valuation.Amount(-50).String())
}
