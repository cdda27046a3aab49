package domain

// Swap sides, as understood by the router.
const (
	SwapSideBuy  = "buy"
	SwapSideSell = "sell"
)

// SwapRoute is an unsigned transaction payload returned by the router for a
// given token pair and amount. Routes are valid only for a short,
// provider-defined window and are treated as single-use: never cached,
// never reused across calls.
type SwapRoute struct {
	RawTransaction string // base64-encoded unsigned transaction
	InAmount       string // smallest-unit amount quoted by the router
	OutAmount      string // estimated output amount
	Venue          string // venue/DEX metadata, informational only
}

// SwapResult is the settlement handle of an accepted swap. A missing hash is
// treated as failure even if the underlying transaction might later land.
type SwapResult struct {
	Hash string
}
