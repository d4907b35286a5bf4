package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/funnel/pkg/environment"
	"github.com/dmitrymomot/funnel/pkg/plan"
	"github.com/dmitrymomot/funnel/pkg/valuation"
)

func TestEmbeddedCatalogs(t *testing.T) {
	t.Parallel()

	prod := plan.Production()
	require.NotNil(t, prod)
	assert.Equal(t, environment.Production, prod.Environment())
	assert.Equal(t, 19, prod.Len())
	assert.Equal(t, plan.OccasionalMonthlyTrial, prod.DefaultKey())

	def, ok := prod.Lookup(plan.OccasionalMonthlyTrial)
	require.True(t, ok)
	assert.Equal(t, plan.TierOccasional, def.Tier)
	assert.Equal(t, plan.Monthly, def.Recurrence)
	assert.Equal(t, 7, def.TrialDays)
	assert.Equal(t, "pri_01kbcmen6n7ymcdk5y59vhv33h", def.PriceID)
	assert.Equal(t, valuation.FromFloat(20), def.FirstExpectedPayment)
	assert.InDelta(t, 0.30, def.ConversionRate, 1e-9)

	direct, ok := prod.Lookup(plan.PremiumStudioQuarterly)
	require.True(t, ok)
	assert.False(t, direct.HasTrial())

	sb := plan.Sandbox()
	assert.Equal(t, environment.Sandbox, sb.Environment())
	assert.Equal(t, 2, sb.Len())
	sbDef, ok := sb.Lookup(plan.OccasionalMonthlyTrial)
	require.True(t, ok)
	assert.NotEqual(t, def.PriceID, sbDef.PriceID)

	assert.Same(t, sb, plan.ForEnvironment(environment.Sandbox))
	assert.Same(t, prod, plan.ForEnvironment(environment.Production))
}

func TestCatalogInvariants(t *testing.T) {
	t.Parallel()

	for _, c := range []*plan.Catalog{plan.Production(), plan.Sandbox()} {
		seen := map[string]plan.Key{}
		for _, key := range c.Keys() {
			def, ok := c.Lookup(key)
			require.True(t, ok)
			assert.GreaterOrEqual(t, def.ConversionRate, 0.0)
			assert.LessOrEqual(t, def.ConversionRate, 1.0)
			assert.Positive(t, int64(def.FirstExpectedPayment))
			_, dup := seen[def.PriceID]
			assert.False(t, dup, "price %s reused", def.PriceID)
			seen[def.PriceID] = key

			if to, ok := c.DownsellTarget(key); ok {
				assert.True(t, c.Has(to), "%s downsells to missing %s", key, to)
			}
		}
	}
}

func TestCatalogLookupReturnsCopy(t *testing.T) {
	t.Parallel()

	def, ok := plan.Production().Lookup(plan.ProMonthly)
	require.True(t, ok)
	def.PriceID = "mutated"

	again, _ := plan.Production().Lookup(plan.ProMonthly)
	assert.NotEqual(t, "mutated", again.PriceID)
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	t.Parallel()

	const header = "environment: production\nfallback:\n  tier: Generic\n  first_expected_payment: 120\n  conversion_rate: 0.3\n"
	const plans = `plans:
  pro-monthly: {tier: Pro, recurrence: monthly, price_id: pri_a, first_expected_payment: 39, conversion_rate: 0.3}
  pro-yearly: {tier: Pro, recurrence: yearly, price_id: pri_b, first_expected_payment: 390, conversion_rate: 0.3}
`

	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown key",
			doc:  header + "plans:\n  gold-forever: {tier: Pro, recurrence: monthly, price_id: pri_x, first_expected_payment: 1, conversion_rate: 0.1}\n",
			want: plan.ErrUnknownPlanKey,
		},
		{
			name: "rate above one",
			doc:  header + "plans:\n  pro-monthly: {tier: Pro, recurrence: monthly, price_id: pri_x, first_expected_payment: 1, conversion_rate: 1.5}\n",
			want: plan.ErrInvalidDefinition,
		},
		{
			name: "non positive payment",
			doc:  header + "plans:\n  pro-monthly: {tier: Pro, recurrence: monthly, price_id: pri_x, first_expected_payment: 0, conversion_rate: 0.5}\n",
			want: plan.ErrInvalidDefinition,
		},
		{
			name: "unknown tier",
			doc:  header + "plans:\n  pro-monthly: {tier: Gold, recurrence: monthly, price_id: pri_x, first_expected_payment: 1, conversion_rate: 0.5}\n",
			want: plan.ErrInvalidDefinition,
		},
		{
			name: "duplicate price",
			doc:  header + "plans:\n  pro-monthly: {tier: Pro, recurrence: monthly, price_id: pri_x, first_expected_payment: 1, conversion_rate: 0.5}\n  pro-yearly: {tier: Pro, recurrence: yearly, price_id: pri_x, first_expected_payment: 1, conversion_rate: 0.5}\n",
			want: plan.ErrDuplicatePriceID,
		},
		{
			name: "dangling downsell target",
			doc:  header + plans + "downsell:\n  pro-yearly: occasional-monthly\n",
			want: plan.ErrDanglingDownsell,
		},
		{
			name: "downsell cycle",
			doc:  header + plans + "downsell:\n  pro-yearly: pro-monthly\n  pro-monthly: pro-yearly\n",
			want: plan.ErrDownsellCycle,
		},
		{
			name: "missing default",
			doc:  header + "default: occasional-monthly\n" + plans,
			want: plan.ErrMissingDefaultPlan,
		},
		{
			name: "unknown field",
			doc:  header + "colour: red\n" + plans,
			want: plan.ErrInvalidCatalog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := plan.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, plan.ErrInvalidCatalog)
		})
	}

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		c, err := plan.Parse([]byte(header + "default: pro-monthly\n" + plans + "downsell:\n  pro-yearly: pro-monthly\n"))
		require.NoError(t, err)
		assert.Equal(t, []plan.Key{plan.ProMonthly, plan.ProYearly}, c.Keys())
		to, ok := c.DownsellTarget(plan.ProYearly)
		assert.True(t, ok)
		assert.Equal(t, plan.ProMonthly, to)
	})

	t.Run("must parse panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { plan.MustParse([]byte("plans: [")) })
	})
}

func TestRecurrenceTitle(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Yearly", plan.Yearly.Title())
	assert.Equal(t, "", plan.Recurrence("").Title())
	assert.Less(t, plan.TierOccasional.Rank(), plan.TierPro.Rank())
	assert.Less(t, plan.TierPro.Rank(), plan.TierPremiumStudio.Rank())
}
