// Package downsell decides whether, and which, cheaper offer to show when a visitor
// abandons checkout.
//
// The catalog's downsell map links each plan key to at most one cheaper key. NextOffer
// follows a single link; ReverseLookup recovers a plan key from a raw price ID for
// sessions that were resolved from a product identifier.
//
// Policy tracks one session's checkout lifecycle:
//
//	idle ──open──▶ checkout_open ──complete──▶ completed
//	                    │
//	                    └──close──▶ offer_shown ──accept──▶ offer_accepted ──open──▶ checkout_open
//	                          │            └──dismiss──▶ offer_dismissed
//	                          └──▶ abandoned_no_offer
//
// A close signal shows an offer only when checkout was not completed, no offer has
// been shown before and the current plan has a downsell target. Completion disables
// downsell for the rest of the session. Signals that have no transition from the
// current state (a close after completion, a second complete) are reported as
// ErrSignalIgnored and leave the state untouched.
//
// Policy is owned by a single session and is not meant to be shared.
package downsell
