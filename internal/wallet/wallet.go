// Package wallet holds the signing key for swap transactions.
package wallet

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Wallet errors.
var (
	// ErrInvalidSecret is returned when the base58 secret does not decode
	// to an ed25519 key.
	ErrInvalidSecret = errors.New("invalid wallet secret")

	// ErrMalformedTransaction is returned when a raw transaction payload
	// cannot be parsed for signing.
	ErrMalformedTransaction = errors.New("malformed transaction payload")
)

// Wallet wraps an ed25519 keypair decoded from a base58 secret.
type Wallet struct {
	priv    ed25519.PrivateKey
	address string
}

// FromBase58Secret decodes a wallet from a base58-encoded secret key.
// Accepts the 64-byte private||public form and the 32-byte seed form.
// The derived public key must be a valid curve point.
func FromBase58Secret(secret string) (*Wallet, error) {
	decoded, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}

	var priv ed25519.PrivateKey
	switch len(decoded) {
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(decoded)
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(decoded)
	default:
		return nil, fmt.Errorf("%w: unexpected key length %d", ErrInvalidSecret, len(decoded))
	}

	pub := priv.Public().(ed25519.PublicKey)
	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return nil, fmt.Errorf("%w: public key not on curve", ErrInvalidSecret)
	}

	return &Wallet{
		priv:    priv,
		address: base58.Encode(pub),
	}, nil
}

// Address returns the base58-encoded public key.
func (w *Wallet) Address() string {
	return w.address
}

// Sign signs an arbitrary message with the wallet key.
func (w *Wallet) Sign(message []byte) []byte {
	return ed25519.Sign(w.priv, message)
}

// SignTransaction signs a raw Solana transaction in place and returns the
// signed bytes. The wire layout is a shortvec signature count, the
// signature slots, then the message; the fee payer signature goes in the
// first slot and covers the message bytes only.
func (w *Wallet) SignTransaction(raw []byte) ([]byte, error) {
	numSigs, offset, err := decodeShortvecLen(raw)
	if err != nil {
		return nil, err
	}
	if numSigs == 0 {
		return nil, fmt.Errorf("%w: no signature slots", ErrMalformedTransaction)
	}

	sigSection := numSigs * ed25519.SignatureSize
	if len(raw) < offset+sigSection {
		return nil, fmt.Errorf("%w: truncated signature section", ErrMalformedTransaction)
	}

	message := raw[offset+sigSection:]
	if len(message) == 0 {
		return nil, fmt.Errorf("%w: empty message", ErrMalformedTransaction)
	}

	signed := make([]byte, len(raw))
	copy(signed, raw)
	copy(signed[offset:], ed25519.Sign(w.priv, message))
	return signed, nil
}

// decodeShortvecLen decodes a Solana shortvec (compact-u16) length prefix.
// Returns the value and the number of bytes consumed.
func decodeShortvecLen(data []byte) (int, int, error) {
	var value, shift int
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("%w: truncated length prefix", ErrMalformedTransaction)
		}
		b := data[i]
		value |= int(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("%w: length prefix too long", ErrMalformedTransaction)
}
