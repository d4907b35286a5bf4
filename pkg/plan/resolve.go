package plan

import (
	"net/url"
	"strings"
)

// EntryParams are the launch parameters of a funnel page visit.
type EntryParams struct {
	Plan        string
	Product     string
	Environment string
}

// ParseEntryParams reads `plan`, `product` and `environment` from a query string.
func ParseEntryParams(q url.Values) EntryParams {
	return EntryParams{
		Plan:        strings.TrimSpace(q.Get("plan")),
		Product:     strings.TrimSpace(q.Get("product")),
		Environment: strings.TrimSpace(q.Get("environment")),
	}
}

// Source records which resolution step produced a Resolution.
type Source string

const (
	SourcePreset    Source = "preset"
	SourceProduct   Source = "product"
	SourceDefault   Source = "default"
	SourceHardcoded Source = "hardcoded"
	// SourceDownsell marks a plan switched to by accepting a downsell offer.
	SourceDownsell Source = "downsell"
)

// Resolution is the plan a session sells.
// Key is empty for synthetic and hardcoded resolutions; Plan is nil only for hardcoded ones.
type Resolution struct {
	Key      Key         `json:"plan_key,omitempty"`
	Plan     *Definition `json:"plan,omitempty"`
	PriceID  string      `json:"price_id"`
	HasTrial bool        `json:"has_trial"`
	Source   Source      `json:"source"`
}

// Resolve selects the active plan. It never fails and always returns a price ID.
func Resolve(params EntryParams, catalog *Catalog) Resolution {
	planKey := Key(strings.TrimSpace(params.Plan))
	if planKey != "" && catalog != nil {
		if def, ok := catalog.Lookup(planKey); ok {
			return Resolution{
				Key:      planKey,
				Plan:     def,
				PriceID:  def.PriceID,
				HasTrial: def.HasTrial(),
				Source:   SourcePreset,
			}
		}
	}

	if product := strings.TrimSpace(params.Product); product != "" {
		var def *Definition
		if catalog != nil {
			def = catalog.Synthetic(product)
		} else {
			def = &Definition{Recurrence: Yearly, PriceID: product}
		}
		// Synthetic plans are always direct-paid.
		return Resolution{
			Plan:     def,
			PriceID:  product,
			HasTrial: false,
			Source:   SourceProduct,
		}
	}

	if catalog != nil {
		if def, ok := catalog.Lookup(catalog.DefaultKey()); ok {
			return Resolution{
				Key:      catalog.DefaultKey(),
				Plan:     def,
				PriceID:  def.PriceID,
				HasTrial: def.HasTrial(),
				Source:   SourceDefault,
			}
		}
	}

	return Resolution{
		PriceID:  FallbackPriceID,
		HasTrial: true,
		Source:   SourceHardcoded,
	}
}
