/*
Package resilience provides a circuit breaker for remote lookups.

The import pipeline talks to third-party hosts (GitHub, favicon services,
arbitrary web apps being probed). When one of them keeps failing, the
breaker opens and calls fail fast with ErrCircuitOpen until Timeout
elapses; then a limited number of trial calls decide whether to close it.

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[MaxRequests successes]-> Closed
	                                               |
	                                           [failure] -> Open

Usage:

	breaker := resilience.New("remote", resilience.Settings{Timeout: 30 * time.Second})
	err := breaker.Execute(func() error {
		_, err := client.Get(url)
		return err
	})
*/
package resilience
