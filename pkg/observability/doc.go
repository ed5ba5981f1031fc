/*
Package observability exposes elicitation sessions to Prometheus.

NewMetrics builds a dedicated registry; its Hooks plug into a session through
elicit.WithHooks and its Handler serves the exposition format, usually on
/metrics.

	m := observability.NewMetrics()
	v, err := elicit.Run(ctx, ch, d, elicit.WithHooks(m.Hooks()))

LogHooks gives the same events as structured log records.
*/
package observability
