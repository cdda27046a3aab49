package wallet

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

func seedSecret(t *testing.T) (string, ed25519.PublicKey) {
	t.Helper()
	seed := bytes.Repeat([]byte{9}, ed25519.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	return base58.Encode(seed), priv.Public().(ed25519.PublicKey)
}

func TestFromBase58Secret_SeedForm(t *testing.T) {
	secret, pub := seedSecret(t)

	w, err := FromBase58Secret(secret)
	if err != nil {
		t.Fatalf("FromBase58Secret failed: %v", err)
	}
	if w.Address() != base58.Encode(pub) {
		t.Errorf("Expected address %s, got %s", base58.Encode(pub), w.Address())
	}
}

func TestFromBase58Secret_FullKeyForm(t *testing.T) {
	seed := bytes.Repeat([]byte{3}, ed25519.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)

	// The 64-byte private||public export format
	w, err := FromBase58Secret(base58.Encode(priv))
	if err != nil {
		t.Fatalf("FromBase58Secret failed: %v", err)
	}

	pub := priv.Public().(ed25519.PublicKey)
	if w.Address() != base58.Encode(pub) {
		t.Errorf("Expected address %s, got %s", base58.Encode(pub), w.Address())
	}
}

func TestFromBase58Secret_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		secret string
	}{
		{"not base58", "0OIl+/"},
		{"wrong length", base58.Encode([]byte("short"))},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromBase58Secret(tc.secret); !errors.Is(err, ErrInvalidSecret) {
				t.Errorf("Expected ErrInvalidSecret, got %v", err)
			}
		})
	}
}

func TestSign_Verifies(t *testing.T) {
	secret, pub := seedSecret(t)
	w, err := FromBase58Secret(secret)
	if err != nil {
		t.Fatalf("FromBase58Secret failed: %v", err)
	}

	message := []byte("arbitrary message")
	if !ed25519.Verify(pub, message, w.Sign(message)) {
		t.Error("Signature does not verify")
	}
}

func TestSignTransaction_SingleSlot(t *testing.T) {
	secret, pub := seedSecret(t)
	w, err := FromBase58Secret(secret)
	if err != nil {
		t.Fatalf("FromBase58Secret failed: %v", err)
	}

	message := []byte("transaction message bytes")
	raw := make([]byte, 1+ed25519.SignatureSize+len(message))
	raw[0] = 1 // one signature slot
	copy(raw[1+ed25519.SignatureSize:], message)

	signed, err := w.SignTransaction(raw)
	if err != nil {
		t.Fatalf("SignTransaction failed: %v", err)
	}

	// Input must be untouched
	if !bytes.Equal(raw[1:1+ed25519.SignatureSize], make([]byte, ed25519.SignatureSize)) {
		t.Error("SignTransaction mutated its input")
	}

	sig := signed[1 : 1+ed25519.SignatureSize]
	if !ed25519.Verify(pub, message, sig) {
		t.Error("Fee payer signature does not verify against the message")
	}
	if !bytes.Equal(signed[1+ed25519.SignatureSize:], message) {
		t.Error("Message bytes changed during signing")
	}
}

func TestSignTransaction_MultipleSlots(t *testing.T) {
	secret, pub := seedSecret(t)
	w, _ := FromBase58Secret(secret)

	message := []byte("multisig message")
	raw := make([]byte, 1+2*ed25519.SignatureSize+len(message))
	raw[0] = 2 // two signature slots
	copy(raw[1+2*ed25519.SignatureSize:], message)

	signed, err := w.SignTransaction(raw)
	if err != nil {
		t.Fatalf("SignTransaction failed: %v", err)
	}

	// Only the first slot is ours; the second stays zeroed
	if !ed25519.Verify(pub, message, signed[1:1+ed25519.SignatureSize]) {
		t.Error("First slot signature does not verify")
	}
	second := signed[1+ed25519.SignatureSize : 1+2*ed25519.SignatureSize]
	if !bytes.Equal(second, make([]byte, ed25519.SignatureSize)) {
		t.Error("Second signature slot should remain zeroed")
	}
}

func TestSignTransaction_Malformed(t *testing.T) {
	secret, _ := seedSecret(t)
	w, _ := FromBase58Secret(secret)

	cases := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"zero slots", []byte{0, 1, 2, 3}},
		{"truncated signature section", append([]byte{1}, make([]byte, 10)...)},
		{"no message after signatures", append([]byte{1}, make([]byte, ed25519.SignatureSize)...)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := w.SignTransaction(tc.raw); !errors.Is(err, ErrMalformedTransaction) {
				t.Errorf("Expected ErrMalformedTransaction, got %v", err)
			}
		})
	}
}

func TestDecodeShortvecLen(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		value    int
		consumed int
	}{
		{"single byte", []byte{1, 0xff}, 1, 1},
		{"boundary 127", []byte{0x7f}, 127, 1},
		{"two bytes", []byte{0x80, 0x01}, 128, 2},
		{"two bytes max", []byte{0xff, 0x7f}, 16383, 2},
		{"three bytes", []byte{0x80, 0x80, 0x01}, 16384, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value, consumed, err := decodeShortvecLen(tc.data)
			if err != nil {
				t.Fatalf("decodeShortvecLen failed: %v", err)
			}
			if value != tc.value || consumed != tc.consumed {
				t.Errorf("Expected (%d, %d), got (%d, %d)", tc.value, tc.consumed, value, consumed)
			}
		})
	}
}

func TestDecodeShortvecLen_Truncated(t *testing.T) {
	if _, _, err := decodeShortvecLen([]byte{0x80}); !errors.Is(err, ErrMalformedTransaction) {
		t.Errorf("Expected ErrMalformedTransaction for truncated prefix, got %v", err)
	}
	if _, _, err := decodeShortvecLen(nil); !errors.Is(err, ErrMalformedTransaction) {
		t.Errorf("Expected ErrMalformedTransaction for empty input, got %v", err)
	}
}
