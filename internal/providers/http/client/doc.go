// Package client is the outbound HTTP client used by the import pipeline.
//
// Built on go-resty/resty with a hashicorp/go-retryablehttp transport:
//   - retries with backoff on connection errors and 5xx responses
//   - a per-client rate limiter (golang.org/x/time/rate)
//   - a circuit breaker shared by every remote lookup
//
// Transport failures surface as types.ErrNetworkUnavailable so callers can
// degrade instead of failing an import.
//
// Example Usage:
//
//	c := client.NewClient(client.DefaultConfig())
//	resp, err := c.Get(ctx, "github", "https://api.github.com/repos/o/r")
package client
