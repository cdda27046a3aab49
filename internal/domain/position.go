package domain

// PositionState tracks one instrument's open position inside the strategy.
//
// EntryPrice == 0 means no open position. It is set exactly once per buy
// cycle and cleared only when the externally observed held amount returns
// to zero. HeldAmount is never invented by the strategy: the authoritative
// value is supplied fresh by the caller before every decision.
type PositionState struct {
	EntryPrice float64
	HeldAmount float64
}

// Open reports whether a buy occurred that has not been fully liquidated.
func (p PositionState) Open() bool {
	return p.EntryPrice > 0
}
