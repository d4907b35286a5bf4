// Package environment identifies which payment environment a funnel session runs in.
//
// The environment is chosen once per session from the `environment` entry parameter:
// `sandbox` switches the session to sandbox plan prices and sandbox gateway credentials
// and suppresses sinks whose test traffic would pollute production analytics.
// Anything else, including an empty value, means production.
//
//	env := environment.Parse(r.URL.Query().Get("environment"))
//	ctx = environment.WithContext(ctx, env)
//	if environment.IsSandbox(ctx) { ... }
package environment
