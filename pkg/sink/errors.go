package sink

import "errors"

var (
	ErrNotConfigured = errors.New("sink is not configured")
	ErrEncodeEvent   = errors.New("failed to encode conversion event")
	ErrPublishEvent  = errors.New("failed to publish conversion event")
)
