// Package safety gates trading on a token risk verdict.
package safety

import (
	"context"

	"solana-multiplier-bot/internal/domain"
)

// Oracle answers whether an instrument's underlying contract is safe to
// trade. Implementations are fail-closed: any failure to obtain a verdict
// yields an invalid result, never an error the caller could misread as
// transient. Verdicts are computed fresh per call and must not be cached.
type Oracle interface {
	Check(ctx context.Context, instrument domain.Instrument) domain.ValidationResult
}
