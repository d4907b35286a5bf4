package downsell

import "errors"

var (
	ErrSignalIgnored = errors.New("checkout signal ignored in current state")
	ErrNoOfferShown  = errors.New("no downsell offer is being shown")
)
