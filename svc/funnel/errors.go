package funnel

import "errors"

var (
	ErrSessionNotFound    = errors.New("funnel session not found")
	ErrSubmitInFlight     = errors.New("a submission is already in progress")
	ErrPaymentUnavailable = errors.New("payment system unavailable")
	ErrCheckoutCompleted  = errors.New("checkout already completed")
	ErrOfferPending       = errors.New("downsell offer awaits accept or dismiss")
)
