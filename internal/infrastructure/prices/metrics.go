package prices

import "expvar"

// Exposed on /api/debug/vars. Keyed by provider name so the maps stay
// bounded no matter which symbols users hold.
var (
	fetchTotal  = expvar.NewMap("price_fetch_total")
	fetchErrors = expvar.NewMap("price_fetch_errors")
	staleServed = expvar.NewInt("price_stale_served")
)

func recordFetch(source string, err error) {
	fetchTotal.Add(source, 1)
	if err != nil {
		fetchErrors.Add(source, 1)
	}
}
