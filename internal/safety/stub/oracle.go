// Package stub provides a fixed-verdict safety oracle for testing and
// paper trading.
package stub

import (
	"context"

	"solana-multiplier-bot/internal/domain"
)

// Oracle returns configured verdicts keyed by contract address.
// Unknown contracts pass by default unless DefaultReject is set.
type Oracle struct {
	Verdicts      map[string]domain.ValidationResult
	DefaultReject bool
}

// NewOracle creates a stub oracle with no per-contract verdicts.
func NewOracle() *Oracle {
	return &Oracle{Verdicts: make(map[string]domain.ValidationResult)}
}

// SetRiskLevel sets the verdict for a contract address.
func (o *Oracle) SetRiskLevel(contractAddress, riskLevel string) {
	o.Verdicts[contractAddress] = domain.ValidationResult{
		IsValid:   riskLevel == domain.RiskLevelGood,
		RiskLevel: riskLevel,
	}
}

// Check returns the configured verdict, or the default.
func (o *Oracle) Check(_ context.Context, instrument domain.Instrument) domain.ValidationResult {
	if v, ok := o.Verdicts[instrument.ContractAddress]; ok {
		return v
	}
	if o.DefaultReject {
		return domain.ValidationResult{IsValid: false, RiskLevel: domain.RiskLevelUnknown}
	}
	return domain.ValidationResult{IsValid: true, RiskLevel: domain.RiskLevelGood}
}
