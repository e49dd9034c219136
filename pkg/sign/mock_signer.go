package sign

import "crypto/sha512"

var _ Signer = (*MockSigner)(nil)

// MockSigner is a Signer for tests. It returns Err when set, otherwise a
// deterministic pseudo-signature (SHA-512 of the data) that does not verify.
type MockSigner struct {
	Key PublicKey
	Err error
}

func NewMockSigner(key PublicKey) *MockSigner {
	return &MockSigner{Key: key}
}

// NewFailingSigner returns a MockSigner whose Sign always fails with err.
func NewFailingSigner(key PublicKey, err error) *MockSigner {
	return &MockSigner{Key: key, Err: err}
}

func (m *MockSigner) PublicKey() PublicKey { return m.Key }

func (m *MockSigner) Sign(data []byte) (Signature, error) {
	if m.Err != nil {
		return Signature{}, m.Err
	}
	return Signature(sha512.Sum512(data)), nil
}
