// Package conversion fans funnel events out to analytics, CRM and stream sinks.
//
// A Reporter holds registered sinks, each with traits:
//
//   - RevenueRelevant sinks never see FormSubmitted events from leads outside
//     the ideal customer profile.
//   - SuppressInSandbox sinks never see events from sandbox sessions.
//   - Acknowledged sinks are awaited by Dispatch.Wait; the funnel waits for
//     them before opening checkout.
//
// Report never fails and never blocks. Each sink runs in its own goroutine on a
// context detached from the caller's cancellation, bounded by a per-sink
// timeout. Sink errors and panics are recovered and logged; sinks that report
// themselves disabled are skipped and logged at debug level.
//
//	r := conversion.NewReporter(
//	    conversion.WithSink(crm, conversion.Acknowledged),
//	    conversion.WithSink(pixel, conversion.RevenueRelevant, conversion.SuppressInSandbox),
//	    conversion.WithLogger(log),
//	)
//	r.Report(ctx, ev).Wait(ctx)
package conversion
