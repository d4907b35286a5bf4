package conversion

import "errors"

var (
	ErrUnknownKind     = errors.New("unknown conversion event kind")
	ErrMissingSession  = errors.New("conversion event has no session id")
	ErrUnsupportedKind = errors.New("sink does not handle this event kind")
	ErrSinkPanicked    = errors.New("conversion sink panicked")
)
