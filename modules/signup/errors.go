package signup

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/funnel/handler"
	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/downsell"
	"github.com/dmitrymomot/funnel/svc/funnel"
)

var (
	ErrSessionNotFound    = handler.NewHTTPError(http.StatusNotFound, "session_not_found")
	ErrSubmitInFlight     = handler.NewHTTPError(http.StatusAccepted, "submission_in_flight")
	ErrCheckoutCompleted  = handler.NewHTTPError(http.StatusConflict, "checkout_completed")
	ErrNoOffer            = handler.NewHTTPError(http.StatusConflict, "no_offer_shown")
	ErrOfferPending       = handler.NewHTTPError(http.StatusConflict, "offer_pending")
	ErrPaymentUnavailable = handler.NewHTTPError(http.StatusServiceUnavailable, "payment_unavailable")
	ErrInvalidSignal      = handler.NewHTTPError(http.StatusBadRequest, "invalid_signal")
	ErrInvalidSignature   = handler.NewHTTPError(http.StatusUnauthorized, "invalid_signature")
	ErrInvalidPayload     = handler.NewHTTPError(http.StatusBadRequest, "invalid_payload")
	ErrUnknownEnvironment = handler.NewHTTPError(http.StatusNotFound, "unknown_environment")
)

func mapFunnelErrors(err error) error {
	var target handler.HTTPError
	switch {
	case errors.Is(err, funnel.ErrSessionNotFound):
		target = ErrSessionNotFound
	case errors.Is(err, funnel.ErrSubmitInFlight):
		target = ErrSubmitInFlight
	case errors.Is(err, funnel.ErrCheckoutCompleted):
		target = ErrCheckoutCompleted
	case errors.Is(err, funnel.ErrOfferPending):
		target = ErrOfferPending
	case errors.Is(err, funnel.ErrPaymentUnavailable):
		target = ErrPaymentUnavailable
	case errors.Is(err, downsell.ErrNoOfferShown), errors.Is(err, downsell.ErrSignalIgnored):
		target = ErrNoOffer
	case errors.Is(err, checkout.ErrUnknownSignal), errors.Is(err, checkout.ErrInvalidSignal):
		target = ErrInvalidSignal
	case errors.Is(err, checkout.ErrSignatureMismatch):
		target = ErrInvalidSignature
	case errors.Is(err, checkout.ErrInvalidNotification):
		target = ErrInvalidPayload
	default:
		return nil
	}
	return fmt.Errorf("%w: %w", target, err)
}
