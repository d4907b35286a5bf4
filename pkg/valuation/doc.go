// Package valuation computes the monetary value attributed to conversion events.
//
// Trial starts charge nothing at checkout, so reporting them at face value would
// undercount the pipeline. They are reported at their expected value instead:
// the plan's trial-to-paid conversion rate multiplied by its first expected payment,
// rounded to two decimal places. Direct purchases are reported at the total the
// checkout gateway charged.
//
// Amounts are stored as an integer count of minor currency units, the same way
// billing providers report totals, so rounding happens exactly once.
//
// Basic usage:
//
//	value := valuation.AttributedValue(res.HasTrial, res.Plan, total)
//	fmt.Println(value) // "6.00"
package valuation
