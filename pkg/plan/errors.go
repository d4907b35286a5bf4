package plan

import "errors"

var (
	ErrInvalidCatalog     = errors.New("invalid plan catalog")
	ErrUnknownPlanKey     = errors.New("unknown plan key")
	ErrInvalidDefinition  = errors.New("invalid plan definition")
	ErrDuplicatePriceID   = errors.New("duplicate price ID in catalog")
	ErrDanglingDownsell   = errors.New("downsell map references a plan missing from the catalog")
	ErrDownsellCycle      = errors.New("downsell map contains a cycle")
	ErrMissingDefaultPlan = errors.New("catalog default plan is not in the catalog")
)
