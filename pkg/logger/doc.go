// Package logger builds *slog.Logger values for the funnel service.
//
// New creates a logger configured by Option functions: output format (text or
// json), minimum level, static attributes and ContextExtractor callbacks that
// add attributes from the record's context on every Handle call. The funnel
// registers extractors for the session id and the payment environment so that
// every sink failure or lifecycle transition can be traced back to a session.
//
//	log := logger.New(
//	    logger.WithMode(logger.ParseMode(cfg.Mode), "funnel"),
//	    logger.WithContextExtractors(environment.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "checkout opened", logger.PlanKey(string(key)))
//
// Attribute helpers in attr.go keep key names consistent. Error and Errors
// return an empty attribute for nil errors, so callers can pass err without a
// nil check.
//
// Discard returns a logger that drops every record; library packages use it
// as their default when the caller supplies none.
package logger
