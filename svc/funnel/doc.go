// Package funnel orchestrates one signup session from landing to purchase.
//
// Start resolves the plan, environment and language from the entry
// parameters. Submit validates the lead, reports FormSubmitted, waits for the
// acknowledged sinks (the CRM webhook), pauses for the settle delay and opens
// checkout. Checkout lifecycle signals arrive through HandleSignal, Listen or
// HandleNotification and drive the session's downsell policy: completion
// reports the Purchase with its attributed value, and the first abandonment
// with a cheaper plan available shows a downsell offer, which the visitor can
// accept (checkout re-opens on the offered plan) or dismiss.
//
// Sessions live in memory only and expire after an idle TTL.
package funnel
