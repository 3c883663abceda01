package webauthn

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalES256Key(t *testing.T, pk *ecdsa.PublicKey) []byte {
	t.Helper()
	coseKey, err := cbor.Marshal(map[int]interface{}{
		1:  2,  // kty: EC2
		3:  -7, // alg: ES256
		-1: 1,  // crv: P-256
		-2: pk.X.FillBytes(make([]byte, 32)),
		-3: pk.Y.FillBytes(make([]byte, 32)),
	})
	require.NoError(t, err)
	return coseKey
}

func TestParseCredentialES256(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	cred, err := ParseCredential(marshalES256Key(t, &priv.PublicKey))
	require.NoError(t, err)
	assert.Equal(t, AlgES256, cred.Alg)

	pub, ok := cred.PublicKey.(*ecdsa.PublicKey)
	require.True(t, ok)
	assert.Equal(t, priv.PublicKey.X, pub.X)
	assert.Equal(t, priv.PublicKey.Y, pub.Y)

	message := []byte("signed payload")
	digest := sha256.Sum256(message)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	assert.NoError(t, cred.Verify(message, sig))
	assert.ErrorIs(t, cred.Verify([]byte("other payload"), sig), ErrInvalidSignature)
	assert.ErrorIs(t, cred.Verify(message, []byte("not a signature")), ErrInvalidSignature)
}

func TestParseCredentialEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	coseKey, err := cbor.Marshal(map[int]interface{}{
		1:  1,  // kty: OKP
		3:  -8, // alg: EdDSA
		-1: 6,  // crv: Ed25519
		-2: []byte(pub),
	})
	require.NoError(t, err)

	cred, err := ParseCredential(coseKey)
	require.NoError(t, err)
	assert.Equal(t, AlgEdDSA, cred.Alg)

	message := []byte("signed payload")
	sig := ed25519.Sign(priv, message)

	assert.NoError(t, cred.Verify(message, sig))
	assert.ErrorIs(t, cred.Verify([]byte("other payload"), sig), ErrInvalidSignature)
}

func TestParseCredentialRS256(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	coseKey, err := cbor.Marshal(map[int]interface{}{
		1:  3,    // kty: RSA
		3:  -257, // alg: RS256
		-1: priv.PublicKey.N.Bytes(),
		-2: []byte{0x01, 0x00, 0x01},
	})
	require.NoError(t, err)

	cred, err := ParseCredential(coseKey)
	require.NoError(t, err)
	assert.Equal(t, AlgRS256, cred.Alg)

	message := []byte("signed payload")
	digest := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	require.NoError(t, err)

	assert.NoError(t, cred.Verify(message, sig))
	assert.ErrorIs(t, cred.Verify([]byte("other payload"), sig), ErrInvalidSignature)
}

func TestParseCredentialRejectsMalformedKeys(t *testing.T) {
	tests := []struct {
		name string
		key  map[int]interface{}
	}{
		{"unsupported key type", map[int]interface{}{1: 99, 3: -7}},
		{"unsupported EC2 curve", map[int]interface{}{1: 2, 3: -7, -1: 42, -2: make([]byte, 32), -3: make([]byte, 32)}},
		{"OKP wrong curve", map[int]interface{}{1: 1, 3: -8, -1: 1, -2: make([]byte, 32)}},
		{"OKP key too short", map[int]interface{}{1: 1, 3: -8, -1: 6, -2: make([]byte, 16)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coseKey, err := cbor.Marshal(tt.key)
			require.NoError(t, err)
			_, err = ParseCredential(coseKey)
			assert.ErrorIs(t, err, ErrMalformedAuthenticatorData)
		})
	}

	t.Run("not cbor", func(t *testing.T) {
		_, err := ParseCredential([]byte("definitely not cbor"))
		assert.ErrorIs(t, err, ErrMalformedAuthenticatorData)
	})
}

func TestVerifyAlgorithmKeyMismatch(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	cred := &Credential{Alg: AlgEdDSA, PublicKey: &priv.PublicKey}
	assert.ErrorIs(t, cred.Verify([]byte("msg"), []byte("sig")), ErrInvalidSignature)
}
