package valuation

import (
	"math"
	"time"
)

const (
	// DefaultConversionRate is the assumed share of trials that convert to paid.
	DefaultConversionRate = 0.30

	// NominalValue is reported when no plan is resolved at all.
	NominalValue Amount = 100

	// DefaultCurrency is used whenever the gateway does not report one.
	DefaultCurrency = "EUR"

	// DefaultTrialDays applies to trial purchases without a resolved plan.
	DefaultTrialDays = 7
)

// Estimable is implemented by anything carrying expected-value assumptions.
// Implementations must tolerate nil receivers and report ok=false for them.
type Estimable interface {
	ValueAssumptions() (firstPayment Amount, conversionRate float64, ok bool)
}

// ExpectedTrialValue returns round(rate × firstPayment, 2).
// Missing assumptions fall back to DefaultConversionRate and NominalValue,
// and a missing plan yields NominalValue.
func ExpectedTrialValue(p Estimable) Amount {
	if p == nil {
		return NominalValue
	}
	payment, rate, ok := p.ValueAssumptions()
	if !ok {
		return NominalValue
	}
	if rate <= 0 {
		rate = DefaultConversionRate
	}
	if payment <= 0 {
		payment = NominalValue
	}
	// Minor units make the two-decimal rounding a plain integer rounding.
	return Amount(math.Round(rate * float64(payment)))
}

// AttributedValue is the value forwarded to revenue sinks for a purchase.
// Trials report their expected value; everything else reports the charged total or zero.
func AttributedValue(isTrial bool, p Estimable, actual *Amount) Amount {
	if isTrial {
		return ExpectedTrialValue(p)
	}
	if actual == nil {
		return Zero
	}
	return *actual
}

// TrialWindow returns the synthetic trial start and expiry timestamps for a trial purchase.
// Non-positive day counts use DefaultTrialDays.
func TrialWindow(start time.Time, days int) (time.Time, time.Time) {
	if days <= 0 {
		days = DefaultTrialDays
	}
	start = start.UTC()
	return start, start.Add(time.Duration(days) * 24 * time.Hour)
}
