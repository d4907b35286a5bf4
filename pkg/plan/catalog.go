package plan

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/funnel/pkg/environment"
	"github.com/dmitrymomot/funnel/pkg/valuation"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

// FallbackPriceID is sold when neither the entry parameters nor the catalog default resolve.
const FallbackPriceID = "pri_01kbcmen6n7ymcdk5y59vhv33h"

// Fallback describes the synthetic plan built for raw product IDs that match no catalog key.
type Fallback struct {
	Tier                 Tier             `yaml:"tier"`
	Recurrence           Recurrence       `yaml:"recurrence"`
	FirstExpectedPayment valuation.Amount `yaml:"first_expected_payment"`
	ConversionRate       float64          `yaml:"conversion_rate"`
}

// document is the on-disk catalog layout.
type document struct {
	Environment string                `yaml:"environment"`
	Default     Key                   `yaml:"default"`
	Fallback    Fallback              `yaml:"fallback"`
	Plans       map[string]Definition `yaml:"plans"`
	Downsell    map[string]string     `yaml:"downsell"`
}

// Catalog is an immutable registry of plan definitions for one environment.
type Catalog struct {
	env        environment.Environment
	defaultKey Key
	fallback   Fallback
	plans      map[Key]Definition
	downsell   map[Key]Key
	keys       []Key
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	c := &Catalog{
		env:        environment.Parse(doc.Environment),
		defaultKey: doc.Default,
		fallback:   doc.Fallback,
		plans:      make(map[Key]Definition, len(doc.Plans)),
		downsell:   make(map[Key]Key, len(doc.Downsell)),
	}

	prices := make(map[string]Key, len(doc.Plans))
	for raw, def := range doc.Plans {
		key, ok := ParseKey(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidCatalog, ErrUnknownPlanKey, raw)
		}
		if err := def.validate(); err != nil {
			return nil, fmt.Errorf("%w: plan %q: %w", ErrInvalidCatalog, key, err)
		}
		if other, dup := prices[def.PriceID]; dup {
			return nil, fmt.Errorf("%w: %w: %q used by %q and %q", ErrInvalidCatalog, ErrDuplicatePriceID, def.PriceID, other, key)
		}
		prices[def.PriceID] = key
		c.plans[key] = def
		c.keys = append(c.keys, key)
	}
	slices.Sort(c.keys)

	for rawFrom, rawTo := range doc.Downsell {
		from, to := Key(strings.TrimSpace(rawFrom)), Key(strings.TrimSpace(rawTo))
		if _, ok := c.plans[from]; !ok {
			return nil, fmt.Errorf("%w: %w: source %q", ErrInvalidCatalog, ErrDanglingDownsell, from)
		}
		if _, ok := c.plans[to]; !ok {
			return nil, fmt.Errorf("%w: %w: %q -> %q", ErrInvalidCatalog, ErrDanglingDownsell, from, to)
		}
		c.downsell[from] = to
	}
	if err := c.checkAcyclic(); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	if c.defaultKey != "" {
		if _, ok := c.plans[c.defaultKey]; !ok {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidCatalog, ErrMissingDefaultPlan, c.defaultKey)
		}
	}

	if !c.fallback.Recurrence.Valid() {
		c.fallback.Recurrence = Yearly
	}
	if c.fallback.FirstExpectedPayment <= 0 {
		return nil, fmt.Errorf("%w: fallback first expected payment must be positive", ErrInvalidCatalog)
	}
	if c.fallback.ConversionRate < 0 || c.fallback.ConversionRate > 1 {
		return nil, fmt.Errorf("%w: fallback conversion rate outside [0,1]", ErrInvalidCatalog)
	}

	return c, nil
}

// MustParse is like Parse but panics on invalid catalogs.
func MustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("failed to parse plan catalog: %v", err))
	}
	return c
}

// checkAcyclic walks every chain; a chain longer than the catalog must revisit a key.
func (c *Catalog) checkAcyclic() error {
	for _, start := range c.keys {
		cur, steps := start, 0
		for {
			next, ok := c.downsell[cur]
			if !ok {
				break
			}
			if next == start || steps >= len(c.plans) {
				return fmt.Errorf("%w: starting at %q", ErrDownsellCycle, start)
			}
			cur = next
			steps++
		}
	}
	return nil
}

var (
	production = mustLoadEmbedded("catalog/production.yaml")
	sandbox    = mustLoadEmbedded("catalog/sandbox.yaml")
)

func mustLoadEmbedded(name string) *Catalog {
	data, err := catalogFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to read embedded plan catalog %s: %v", name, err))
	}
	return MustParse(data)
}

// Production returns the embedded production catalog.
func Production() *Catalog { return production }

// Sandbox returns the embedded sandbox catalog.
func Sandbox() *Catalog { return sandbox }

// ForEnvironment picks the embedded catalog for env.
func ForEnvironment(env environment.Environment) *Catalog {
	if env.IsSandbox() {
		return sandbox
	}
	return production
}

// Environment returns the environment the catalog prices belong to.
func (c *Catalog) Environment() environment.Environment { return c.env }

// DefaultKey returns the key sold when entry parameters select nothing.
func (c *Catalog) DefaultKey() Key { return c.defaultKey }

// Len returns the number of plans.
func (c *Catalog) Len() int { return len(c.plans) }

// Keys returns the plan keys in lexical order.
func (c *Catalog) Keys() []Key {
	return slices.Clone(c.keys)
}

// Lookup returns a copy of the definition stored under key.
func (c *Catalog) Lookup(key Key) (*Definition, bool) {
	def, ok := c.plans[key]
	if !ok {
		return nil, false
	}
	return &def, true
}

// Has reports whether key is in the catalog.
func (c *Catalog) Has(key Key) bool {
	_, ok := c.plans[key]
	return ok
}

// DownsellTarget returns the next cheaper key for key, if any.
func (c *Catalog) DownsellTarget(key Key) (Key, bool) {
	to, ok := c.downsell[key]
	return to, ok
}

// Synthetic builds the fallback plan for a raw price ID.
func (c *Catalog) Synthetic(priceID string) *Definition {
	return &Definition{
		Tier:                 c.fallback.Tier,
		Recurrence:           c.fallback.Recurrence,
		PriceID:              priceID,
		FirstExpectedPayment: c.fallback.FirstExpectedPayment,
		ConversionRate:       c.fallback.ConversionRate,
	}
}
