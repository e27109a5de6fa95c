// Package httputil retries Content Management API calls.
//
// A [Policy] retries only errors wrapped in [RetryableError]. The client
// wraps network errors on reads, 5xx responses on reads, and 429 responses
// on any call, since a rate-limited write was never applied:
//
//	p := httputil.Policy{Attempts: 3, Delay: time.Second, MaxDelay: time.Minute}
//	err := p.Do(ctx, func() error { return send(ctx, req) })
//
// The delay doubles after each try. A 429 carries the server's reset time in
// After; the policy waits for whichever is longer, capped by MaxDelay.
package httputil
