// Package idhash computes deterministic identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeExecutionID computes a deterministic execution_id using SHA256.
// Formula: SHA256(symbol|side|amount_raw|submitted_at)
// Returns hex-encoded hash (64 characters).
func ComputeExecutionID(symbol, side, amountRaw string, submittedAt int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d", symbol, side, amountRaw, submittedAt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
