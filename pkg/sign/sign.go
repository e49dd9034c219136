package sign

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

// Signer produces signatures over arbitrary byte spans.
type Signer interface {
	PublicKey() PublicKey                // Public key matching the signing key.
	Sign(data []byte) (Signature, error) // Sign signs data as-is; nothing is hashed first.
}

// PublicKey is a 32-byte account address.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes a base58 account address.
func ParsePublicKey(s string) (PublicKey, error) {
	var k PublicKey
	if err := decodeFixed(s, k[:]); err != nil {
		return PublicKey{}, fmt.Errorf("invalid public key %q: %w", s, err)
	}
	return k, nil
}

// MustParsePublicKey is like ParsePublicKey but panics on error.
// Intended for constants and tests.
func MustParsePublicKey(s string) PublicKey {
	k, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k PublicKey) String() string { return base58.Encode(k[:]) }
func (k PublicKey) Bytes() []byte  { return k[:] }
func (k PublicKey) IsZero() bool   { return k == PublicKey{} }

func (k PublicKey) Equals(other PublicKey) bool { return k == other }

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Verify reports whether sig is a valid signature of message by k.
func (k PublicKey) Verify(message []byte, sig Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(k[:]), message, sig[:])
}

// Signature is a 64-byte ed25519 signature. Its text form is base58, which
// is also how the node identifies transactions.
type Signature [SignatureSize]byte

// ParseSignature decodes a base58 signature.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	if err := decodeFixed(s, sig[:]); err != nil {
		return Signature{}, fmt.Errorf("invalid signature %q: %w", s, err)
	}
	return sig, nil
}

func (s Signature) String() string { return base58.Encode(s[:]) }
func (s Signature) Bytes() []byte  { return s[:] }
func (s Signature) IsZero() bool   { return s == Signature{} }

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	parsed, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// decodeFixed base58-decodes s into dst, requiring an exact length match.
func decodeFixed(s string, dst []byte) error {
	raw, err := base58.Decode(s)
	if err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("expected %d bytes, got %d", len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}
