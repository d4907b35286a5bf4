package checkout

import "errors"

var (
	ErrGatewayUnavailable  = errors.New("checkout gateway unavailable")
	ErrMissingPriceID      = errors.New("checkout price id is required")
	ErrNoCheckoutURL       = errors.New("no checkout url returned")
	ErrUnknownSignal       = errors.New("unknown checkout signal")
	ErrInvalidSignal       = errors.New("invalid checkout signal payload")
	ErrInvalidNotification = errors.New("invalid payment notification")
	ErrSignatureMismatch   = errors.New("payment notification signature verification failed")
	ErrIgnoredNotification = errors.New("payment notification type is not handled")
	ErrMissingAPIKey       = errors.New("paddle api key is required")
)
