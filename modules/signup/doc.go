// Package signup mounts the funnel's HTTP API.
//
//	r := chi.NewRouter()
//	r.Mount("/api", signup.Router(signup.RouterOptions{
//		Funnel: svc,
//		Copy:   texts,
//		Notifications: map[environment.Environment]*checkout.NotificationParser{
//			environment.Production: checkout.NewNotificationParser(secret),
//		},
//		Logger: log,
//	}))
//
// Routes:
//
//	POST /sessions                     start a session from landing parameters
//	GET  /sessions/{id}                session snapshot and localized page
//	POST /sessions/{id}/submit         capture the lead and open checkout
//	POST /sessions/{id}/signals        forward a Paddle.js checkout event
//	POST /sessions/{id}/offer/accept   take the downsell and re-open checkout
//	POST /sessions/{id}/offer/dismiss  decline the downsell
//	POST /paddle/{env}/notifications   verified Paddle webhook
//
// Every response uses the handler JSON envelope.
package signup
