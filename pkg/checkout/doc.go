// Package checkout defines the hosted payment checkout contract the funnel
// opens and the lifecycle signals it reacts to.
//
// A Gateway opens a checkout for a price and returns a Session. The overlay in
// the browser then reports Paddle.js events, which ParseSignal turns into one
// of four signals: completed, closed, customer updated and payment method
// selected. Server-side, NotificationParser verifies Paddle webhooks and turns
// transaction.completed notifications into completed signals bound to the
// funnel session stored in the transaction custom data.
//
// PaddleGateway is the production implementation on paddle-go-sdk.
package checkout
