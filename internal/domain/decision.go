package domain

// Action is a strategy verdict for one instrument on one cycle.
type Action string

// Strategy actions.
const (
	ActionHold Action = "hold"
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Decision is the output of a strategy evaluation.
// Amount is in base units and is positive iff Action is buy or sell.
type Decision struct {
	Action Action
	Amount float64
}

// Hold returns the no-op decision.
func Hold() Decision {
	return Decision{Action: ActionHold}
}

// Buy returns a buy decision for the given base amount.
func Buy(amount float64) Decision {
	return Decision{Action: ActionBuy, Amount: amount}
}

// Sell returns a sell decision for the given base amount.
func Sell(amount float64) Decision {
	return Decision{Action: ActionSell, Amount: amount}
}

// Actionable reports whether the decision should reach the swap pipeline.
func (d Decision) Actionable() bool {
	return (d.Action == ActionBuy || d.Action == ActionSell) && d.Amount > 0
}
