package domain

import "encoding/json"

// RiskLevelGood is the only classification that passes the safety gate.
const RiskLevelGood = "GOOD"

// Risk levels reported for failed checks.
const (
	RiskLevelError   = "ERROR"
	RiskLevelUnknown = "UNKNOWN"
)

// ValidationResult is a token safety verdict. Computed fresh per instrument
// per cycle; never cached, since a token's risk status can change.
type ValidationResult struct {
	IsValid   bool
	RiskLevel string
	Details   json.RawMessage // raw diagnostic payload from the scanner
}
