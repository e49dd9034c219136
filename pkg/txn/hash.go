package txn

import (
	"fmt"

	"github.com/mr-tron/base58"
)

const HashSize = 32

// Hash is a 32-byte ledger hash, e.g. a recent blockhash.
type Hash [HashSize]byte

// ParseHash decodes a base58 hash.
func ParseHash(s string) (Hash, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(raw) != HashSize {
		return Hash{}, fmt.Errorf("invalid hash %q: expected %d bytes, got %d", s, HashSize, len(raw))
	}

	var h Hash
	copy(h[:], raw)
	return h, nil
}

func (h Hash) String() string { return base58.Encode(h[:]) }
func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) IsZero() bool   { return h == Hash{} }

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
