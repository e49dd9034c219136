package sign

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 8032, section 7.1, TEST 1.
const (
	rfcSeedHex   = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	rfcPublicHex = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
	rfcSigHex    = "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestKeyPair(t *testing.T) {
	t.Run("seed derives the expected public key and signature", func(t *testing.T) {
		kp, err := NewKeyPairFromSeed(mustHex(t, rfcSeedHex))
		require.NoError(t, err)

		pub := kp.PublicKey()
		assert.Equal(t, mustHex(t, rfcPublicHex), pub.Bytes())

		sig, err := kp.Sign(nil)
		require.NoError(t, err)
		assert.Equal(t, mustHex(t, rfcSigHex), sig.Bytes())
		assert.True(t, pub.Verify(nil, sig))
		assert.False(t, pub.Verify([]byte("tampered"), sig))
	})

	t.Run("parse formats", func(t *testing.T) {
		seed := mustHex(t, rfcSeedHex)
		full := append(append([]byte(nil), seed...), mustHex(t, rfcPublicHex)...)

		tests := []struct {
			name  string
			input string
		}{
			{"hex seed", "0x" + rfcSeedHex},
			{"hex private key", "0x" + hex.EncodeToString(full)},
			{"base58 private key", base58.Encode(full)},
			{"base58 seed", base58.Encode(seed)},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				kp, err := ParseKeyPair(test.input)
				require.NoError(t, err)
				assert.Equal(t, mustHex(t, rfcPublicHex), kp.PublicKey().Bytes())
			})
		}
	})

	t.Run("malformed key material", func(t *testing.T) {
		_, err := NewKeyPair(make([]byte, 10))
		assert.ErrorIs(t, err, ErrInvalidKey)

		// Public half does not belong to the seed.
		bad := append(mustHex(t, rfcSeedHex), make([]byte, 32)...)
		_, err = NewKeyPair(bad)
		assert.ErrorIs(t, err, ErrInvalidKey)

		_, err = ParseKeyPair("0xzz")
		assert.ErrorIs(t, err, ErrInvalidKey)

		var zero KeyPair
		_, err = zero.Sign([]byte("data"))
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestPublicKey(t *testing.T) {
	t.Run("system program id text form", func(t *testing.T) {
		var zero PublicKey
		assert.Equal(t, "11111111111111111111111111111111", zero.String())
		assert.True(t, zero.IsZero())

		parsed, err := ParsePublicKey("11111111111111111111111111111111")
		require.NoError(t, err)
		assert.Equal(t, zero, parsed)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := ParsePublicKey(base58.Encode(make([]byte, 31)))
		assert.Error(t, err)
	})

	t.Run("invalid alphabet", func(t *testing.T) {
		_, err := ParsePublicKey("0OIl")
		assert.Error(t, err)
	})

	t.Run("JSON uses base58 strings", func(t *testing.T) {
		key := PublicKey{1, 2, 3}
		data, err := json.Marshal(struct {
			Key PublicKey `json:"key"`
		}{key})
		require.NoError(t, err)
		assert.JSONEq(t, `{"key":"`+key.String()+`"}`, string(data))

		var decoded struct {
			Key PublicKey `json:"key"`
		}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, key, decoded.Key)
	})
}

func TestSignature(t *testing.T) {
	sig := Signature{0xff, 0x01}
	parsed, err := ParseSignature(sig.String())
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	_, err = ParseSignature(PublicKey{}.String())
	assert.Error(t, err, "32-byte value is not a signature")
}

func TestMockSigner(t *testing.T) {
	key := PublicKey{9}

	signer := NewMockSigner(key)
	a, err := signer.Sign([]byte("message"))
	require.NoError(t, err)
	b, err := signer.Sign([]byte("message"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, key, signer.PublicKey())

	boom := errors.New("hsm offline")
	_, err = NewFailingSigner(key, boom).Sign([]byte("message"))
	assert.ErrorIs(t, err, boom)
}
