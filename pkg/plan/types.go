package plan

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/funnel/pkg/valuation"
)

// Key identifies a tier + recurrence + trial combination.
type Key string

// Known plan keys. Catalog documents may only use these.
const (
	OccasionalMonthlyTrial    Key = "occasional-monthly-trial"
	OccasionalYearlyTrial     Key = "occasional-yearly-trial"
	ProMonthlyTrial           Key = "pro-monthly-trial"
	ProYearlyTrial            Key = "pro-yearly-trial"
	PremiumStudioMonthlyTrial Key = "premium-studio-monthly-trial"
	PremiumStudioYearlyTrial  Key = "premium-studio-yearly-trial"

	OccasionalMonthly            Key = "occasional-monthly"
	OccasionalYearly             Key = "occasional-yearly"
	ProMonthly                   Key = "pro-monthly"
	ProYearly                    Key = "pro-yearly"
	PremiumStudioMonthly         Key = "premium-studio-monthly"
	PremiumStudioYearly          Key = "premium-studio-yearly"
	PremiumStudioQuarterly       Key = "premium-studio-quarterly"
	OccasionalMonthlyTrial29     Key = "occasional-monthly-trial-29"
	OccasionalYearlyTrial19      Key = "occasional-yearly-trial-19"
	ProMonthlyTrial59            Key = "pro-monthly-trial-59"
	ProYearlyTrial39             Key = "pro-yearly-trial-39"
	PremiumStudioMonthlyTrial149 Key = "premium-studio-monthly-trial-149"
	PremiumStudioYearlyTrial99   Key = "premium-studio-yearly-trial-99"
)

var knownKeys = map[Key]struct{}{
	OccasionalMonthlyTrial:       {},
	OccasionalYearlyTrial:        {},
	ProMonthlyTrial:              {},
	ProYearlyTrial:               {},
	PremiumStudioMonthlyTrial:    {},
	PremiumStudioYearlyTrial:     {},
	OccasionalMonthly:            {},
	OccasionalYearly:             {},
	ProMonthly:                   {},
	ProYearly:                    {},
	PremiumStudioMonthly:         {},
	PremiumStudioYearly:          {},
	PremiumStudioQuarterly:       {},
	OccasionalMonthlyTrial29:     {},
	OccasionalYearlyTrial19:      {},
	ProMonthlyTrial59:            {},
	ProYearlyTrial39:             {},
	PremiumStudioMonthlyTrial149: {},
	PremiumStudioYearlyTrial99:   {},
}

// ParseKey trims s and returns it as a Key when it belongs to the known set.
func ParseKey(s string) (Key, bool) {
	k := Key(strings.TrimSpace(s))
	_, ok := knownKeys[k]
	return k, ok
}

func (k Key) String() string {
	return string(k)
}

// Valid reports whether k belongs to the known set.
func (k Key) Valid() bool {
	_, ok := knownKeys[k]
	return ok
}

// Tier is the product tier of a plan.
type Tier string

const (
	TierOccasional    Tier = "Occasional"
	TierPro           Tier = "Pro"
	TierPremiumStudio Tier = "Premium Studio"
)

// Rank orders tiers from cheapest (1) to most expensive. Unknown tiers rank 0.
func (t Tier) Rank() int {
	switch t {
	case TierOccasional:
		return 1
	case TierPro:
		return 2
	case TierPremiumStudio:
		return 3
	default:
		return 0
	}
}

// Recurrence is the billing interval of a plan.
type Recurrence string

const (
	Monthly   Recurrence = "monthly"
	Quarterly Recurrence = "quarterly"
	Yearly    Recurrence = "yearly"
)

// Valid reports whether r is a known recurrence.
func (r Recurrence) Valid() bool {
	switch r {
	case Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// Title returns the recurrence with its first letter upper-cased, for plan summaries.
func (r Recurrence) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// Definition is an immutable catalog entry.
type Definition struct {
	Tier                 Tier             `yaml:"tier" json:"tier"`
	Recurrence           Recurrence       `yaml:"recurrence" json:"recurrence"`
	TrialDays            int              `yaml:"trial_days" json:"trial_days,omitempty"`
	PriceID              string           `yaml:"price_id" json:"price_id"`
	FirstExpectedPayment valuation.Amount `yaml:"first_expected_payment" json:"first_expected_payment"`
	ConversionRate       float64          `yaml:"conversion_rate" json:"conversion_rate"`
}

// HasTrial reports whether the plan starts with a free trial.
// Plans without one are direct-paid.
func (d *Definition) HasTrial() bool {
	return d != nil && d.TrialDays > 0
}

// ValueAssumptions implements valuation.Estimable.
func (d *Definition) ValueAssumptions() (valuation.Amount, float64, bool) {
	if d == nil {
		return 0, 0, false
	}
	return d.FirstExpectedPayment, d.ConversionRate, true
}

func (d Definition) validate() error {
	if d.Tier.Rank() == 0 {
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidDefinition, d.Tier)
	}
	if !d.Recurrence.Valid() {
		return fmt.Errorf("%w: unknown recurrence %q", ErrInvalidDefinition, d.Recurrence)
	}
	if d.TrialDays < 0 {
		return fmt.Errorf("%w: negative trial length", ErrInvalidDefinition)
	}
	if strings.TrimSpace(d.PriceID) == "" {
		return fmt.Errorf("%w: price ID is required", ErrInvalidDefinition)
	}
	if d.FirstExpectedPayment <= 0 {
		return fmt.Errorf("%w: first expected payment must be positive", ErrInvalidDefinition)
	}
	if d.ConversionRate < 0 || d.ConversionRate > 1 {
		return fmt.Errorf("%w: conversion rate %v outside [0,1]", ErrInvalidDefinition, d.ConversionRate)
	}
	return nil
}
