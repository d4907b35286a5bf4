// Package plan holds the pricing catalog and resolves which plan a funnel session sells.
//
// A Catalog maps plan keys to immutable Definitions (tier, billing recurrence, trial
// length, gateway price ID and expected-value assumptions) together with the downsell
// map and the designated default key. Two catalogs ship embedded with the binary,
// one for production prices and one for sandbox prices; both are validated when they
// are parsed, so an inconsistent catalog fails at startup rather than mid-funnel.
//
// Plan keys form a closed set: a key that is not declared in this package is rejected
// by Parse even if the YAML document contains it.
//
// Resolution never fails. Resolve walks a fixed order and always yields a price ID:
//
//  1. the `plan` entry parameter when it names a catalog key,
//  2. the `product` entry parameter as a raw price ID wrapped in a synthetic plan,
//  3. the catalog default key, or the hardcoded FallbackPriceID when even that is missing.
//
// Example:
//
//	catalog := plan.ForEnvironment(environment.Parse(q.Get("environment")))
//	res := plan.Resolve(plan.ParseEntryParams(q), catalog)
//	gateway.Open(ctx, checkout.OpenRequest{PriceID: res.PriceID, ...})
package plan
