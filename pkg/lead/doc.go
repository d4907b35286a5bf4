// Package lead validates the signup form and classifies the resulting lead.
//
// Form carries the raw fields; Validate trims them, drops blank use cases and
// checks the result with github.com/go-playground/validator/v10. Failures are
// reported as FieldErrors, a map from the form field's JSON name to a
// translation key (error.required, error.email, error.useCases) that the page
// renders next to the field.
//
// A lead is in the ideal customer profile unless one of its use cases mentions
// music or personal use; non-ICP leads are kept out of revenue-relevant
// analytics.
package lead
