package valuation

import "errors"

var (
	ErrInvalidAmount  = errors.New("invalid monetary amount")
	ErrNegativeAmount = errors.New("monetary amount cannot be negative")
)
