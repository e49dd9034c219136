package sign

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mr-tron/base58"
)

var _ Signer = (*KeyPair)(nil)

// KeyPair is an ed25519 signing credential.
type KeyPair struct {
	privateKey ed25519.PrivateKey
	publicKey  PublicKey
}

// NewKeyPair wraps a 64-byte ed25519 private key (seed followed by public key).
func NewKeyPair(privateKey []byte) (*KeyPair, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d",
			ErrInvalidKey, ed25519.PrivateKeySize, len(privateKey))
	}

	key := ed25519.PrivateKey(append([]byte(nil), privateKey...))
	derived := ed25519.NewKeyFromSeed(key.Seed())
	if !derived.Equal(key) {
		return nil, fmt.Errorf("%w: public half does not match seed", ErrInvalidKey)
	}

	kp := &KeyPair{privateKey: key}
	copy(kp.publicKey[:], key.Public().(ed25519.PublicKey))
	return kp, nil
}

// NewKeyPairFromSeed derives a key pair from a 32-byte seed.
func NewKeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d",
			ErrInvalidKey, ed25519.SeedSize, len(seed))
	}
	return NewKeyPair(ed25519.NewKeyFromSeed(seed))
}

// ParseKeyPair accepts either the base58 form of a 64-byte private key (as
// printed by wallet tooling) or a 0x-prefixed hex string holding a 32-byte
// seed or 64-byte private key.
func ParseKeyPair(s string) (*KeyPair, error) {
	s = strings.TrimSpace(s)

	var raw []byte
	var err error
	if strings.HasPrefix(s, "0x") {
		raw, err = hexutil.Decode(s)
	} else {
		raw, err = base58.Decode(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if len(raw) == ed25519.SeedSize {
		return NewKeyPairFromSeed(raw)
	}
	return NewKeyPair(raw)
}

func (kp *KeyPair) PublicKey() PublicKey { return kp.publicKey }

// Sign signs data with the private key.
func (kp *KeyPair) Sign(data []byte) (Signature, error) {
	if len(kp.privateKey) != ed25519.PrivateKeySize {
		return Signature{}, ErrInvalidKey
	}

	var sig Signature
	copy(sig[:], ed25519.Sign(kp.privateKey, data))
	return sig, nil
}
