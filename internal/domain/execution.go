package domain

// SwapExecution records one submitted swap for the execution journal.
// Corresponds to the swap_executions table.
type SwapExecution struct {
	ExecutionID string // deterministic hash
	Symbol      string // instrument symbol
	Side        string // SwapSideBuy | SwapSideSell
	Amount      float64
	AmountRaw   string // smallest-unit amount sent to the router
	Price       float64
	TxHash      string // relay settlement handle
	SubmittedAt int64  // Unix timestamp in milliseconds
}
