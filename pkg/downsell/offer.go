package downsell

import (
	"github.com/dmitrymomot/funnel/pkg/plan"
)

// Kind selects which copy an offer is presented with. It has no effect on the state machine.
type Kind string

const (
	// KindRecurrence offers monthly billing instead of a yearly or quarterly commitment.
	KindRecurrence Kind = "recurrence"
	// KindTier offers a lower tier at the same or a shorter recurrence.
	KindTier Kind = "tier"
)

// CopyKey returns the translation key for part of this kind's copy, e.g. "downsell.tier.title".
func (k Kind) CopyKey(part string) string {
	return "downsell." + string(k) + "." + part
}

// Offer is a cheaper plan proposed after an abandoned checkout.
type Offer struct {
	From plan.Key        `json:"from,omitempty"`
	Key  plan.Key        `json:"key"`
	Plan plan.Definition `json:"plan"`
	Kind Kind            `json:"kind"`
}

// Classify tells a recurrence downsell (yearly or quarterly to monthly) from a tier downsell.
func Classify(current, offered *plan.Definition) Kind {
	if current == nil || offered == nil {
		return KindTier
	}
	if (current.Recurrence == plan.Yearly || current.Recurrence == plan.Quarterly) && offered.Recurrence == plan.Monthly {
		return KindRecurrence
	}
	return KindTier
}

// ReverseLookup finds the key whose price ID matches. Keys are scanned in lexical order.
func ReverseLookup(priceID string, catalog *plan.Catalog) (plan.Key, bool) {
	if priceID == "" || catalog == nil {
		return "", false
	}
	for _, key := range catalog.Keys() {
		if def, ok := catalog.Lookup(key); ok && def.PriceID == priceID {
			return key, true
		}
	}
	return "", false
}

// NextOffer returns the downsell for current, or nil when current is terminal
// or its target is missing from the catalog.
func NextOffer(current plan.Key, catalog *plan.Catalog) *Offer {
	if current == "" || catalog == nil {
		return nil
	}
	to, ok := catalog.DownsellTarget(current)
	if !ok {
		return nil
	}
	offered, ok := catalog.Lookup(to)
	if !ok {
		return nil
	}
	from, _ := catalog.Lookup(current)
	return &Offer{
		From: current,
		Key:  to,
		Plan: *offered,
		Kind: Classify(from, offered),
	}
}
