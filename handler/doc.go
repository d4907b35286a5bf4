// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value populated by binders,
// and returns a Response that renders itself:
//
//	h := handler.HandlerFunc[handler.Context, SubmitRequest](
//		func(ctx handler.Context, req SubmitRequest) handler.Response {
//			res, err := svc.Submit(ctx, req.SessionID, req.Form)
//			if err != nil {
//				return handler.JSONError(err)
//			}
//			return handler.JSON(res)
//		},
//	)
//
//	r.Post("/sessions/{id}/submit", handler.Wrap(h,
//		handler.WithBinders[handler.Context, SubmitRequest](
//			binder.Path(chi.URLParam),
//			binder.JSON(),
//		),
//		handler.WithErrorHandler[handler.Context, SubmitRequest](errorHandler),
//	))
//
// Errors returned by binders, and errors rendered through JSONError, are
// mapped to status codes by HTTPError and ValidationError. NewErrorHandler
// adds domain mappers and logs every failure with the request id.
package handler
