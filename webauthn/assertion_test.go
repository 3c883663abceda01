package webauthn

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assertionFixture struct {
	rp           *RelyingParty
	priv         *ecdsa.PrivateKey
	cred         *Credential
	challenge    []byte
	clientData   *CollectedClientData
	rawAuthnData []byte
	signature    []byte
}

// newAssertionFixture builds a complete, correctly signed ES256
// assertion that a test can then break in exactly one place.
func newAssertionFixture(t *testing.T, mutate func(f *assertionFixture)) *assertionFixture {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	cred, err := ParseCredential(marshalES256Key(t, &priv.PublicKey))
	require.NoError(t, err)

	f := &assertionFixture{
		rp: &RelyingParty{
			ID:               "login.example.com",
			Origin:           "https://login.example.com",
			TopOrigin:        "https://parent.example.com",
			UserVerification: UserVerificationPreferred,
		},
		priv:      priv,
		cred:      cred,
		challenge: []byte("random-challenge-from-the-server"),
	}
	f.rawAuthnData = buildAuthData(t, f.rp.ID, flagUserPresent|flagUserVerified, 5)

	if mutate != nil {
		mutate(f)
	}

	if f.clientData == nil {
		raw, err := json.Marshal(map[string]interface{}{
			"type":      "webauthn.get",
			"challenge": base64.RawURLEncoding.EncodeToString(f.challenge),
			"origin":    f.rp.Origin,
		})
		require.NoError(t, err)
		f.clientData, err = ParseClientData(raw)
		require.NoError(t, err)
	}

	if f.signature == nil {
		f.signature = signAssertion(t, f.priv, f.rawAuthnData, f.clientData.Raw)
	}
	return f
}

func signAssertion(t *testing.T, priv *ecdsa.PrivateKey, rawAuthnData, rawClientData []byte) []byte {
	t.Helper()
	clientDataHash := sha256.Sum256(rawClientData)
	digest := sha256.Sum256(append(append([]byte{}, rawAuthnData...), clientDataHash[:]...))
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	require.NoError(t, err)
	return sig
}

func mustClientData(t *testing.T, fields map[string]interface{}) *CollectedClientData {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	cd, err := ParseClientData(raw)
	require.NoError(t, err)
	return cd
}

func TestVerifyAssertionHappyPath(t *testing.T) {
	f := newAssertionFixture(t, nil)

	ad, err := f.rp.VerifyAssertion(f.cred, f.challenge, f.clientData, f.rawAuthnData, f.signature)
	require.NoError(t, err)
	assert.True(t, ad.UserPresent)
	assert.True(t, ad.UserVerified)
	assert.Equal(t, uint32(5), ad.SignCount)
}

func TestVerifyAssertionWithTopOrigin(t *testing.T) {
	f := newAssertionFixture(t, func(f *assertionFixture) {
		f.clientData = mustClientData(t, map[string]interface{}{
			"type":        "webauthn.get",
			"challenge":   base64.RawURLEncoding.EncodeToString(f.challenge),
			"origin":      f.rp.Origin,
			"topOrigin":   f.rp.TopOrigin,
			"crossOrigin": true,
		})
	})

	_, err := f.rp.VerifyAssertion(f.cred, f.challenge, f.clientData, f.rawAuthnData, f.signature)
	assert.NoError(t, err)
}

func TestVerifyAssertionFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *assertionFixture)
		wantErr error
	}{
		{
			name: "registration ceremony type",
			mutate: func(f *assertionFixture) {
				f.clientData = mustClientData(t, map[string]interface{}{
					"type":      "webauthn.create",
					"challenge": base64.RawURLEncoding.EncodeToString(f.challenge),
					"origin":    f.rp.Origin,
				})
			},
			wantErr: ErrUnexpectedCeremonyType,
		},
		{
			name: "challenge mismatch",
			mutate: func(f *assertionFixture) {
				f.clientData = mustClientData(t, map[string]interface{}{
					"type":      "webauthn.get",
					"challenge": base64.RawURLEncoding.EncodeToString([]byte("a different challenge entirely")),
					"origin":    f.rp.Origin,
				})
			},
			wantErr: ErrChallengeMismatch,
		},
		{
			name: "origin mismatch",
			mutate: func(f *assertionFixture) {
				f.clientData = mustClientData(t, map[string]interface{}{
					"type":      "webauthn.get",
					"challenge": base64.RawURLEncoding.EncodeToString(f.challenge),
					"origin":    "https://evil.example.com",
				})
			},
			wantErr: ErrOriginMismatch,
		},
		{
			name: "top origin mismatch",
			mutate: func(f *assertionFixture) {
				f.clientData = mustClientData(t, map[string]interface{}{
					"type":      "webauthn.get",
					"challenge": base64.RawURLEncoding.EncodeToString(f.challenge),
					"origin":    f.rp.Origin,
					"topOrigin": "https://evil.example.com",
				})
			},
			wantErr: ErrTopOriginMismatch,
		},
		{
			name: "rp id mismatch",
			mutate: func(f *assertionFixture) {
				f.rawAuthnData = buildAuthData(t, "other.example.com", flagUserPresent|flagUserVerified, 5)
			},
			wantErr: ErrRpIDMismatch,
		},
		{
			name: "user not present",
			mutate: func(f *assertionFixture) {
				f.rawAuthnData = buildAuthData(t, f.rp.ID, flagUserVerified, 5)
			},
			wantErr: ErrUserPresenceRequired,
		},
		{
			name: "user verification required but missing",
			mutate: func(f *assertionFixture) {
				f.rp.UserVerification = UserVerificationRequired
				f.rawAuthnData = buildAuthData(t, f.rp.ID, flagUserPresent, 5)
			},
			wantErr: ErrUserVerificationRequired,
		},
		{
			name: "backed up without backup eligibility",
			mutate: func(f *assertionFixture) {
				f.rawAuthnData = buildAuthData(t, f.rp.ID, flagUserPresent|flagBackupState, 5)
			},
			wantErr: ErrBackupStateInconsistent,
		},
		{
			name: "signature over tampered authenticator data",
			mutate: func(f *assertionFixture) {
				f.signature = signAssertion(t, f.priv, buildAuthData(t, f.rp.ID, flagUserPresent, 999), nil)
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name: "signature from a different key",
			mutate: func(f *assertionFixture) {
				other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
				require.NoError(t, err)
				f.priv = other
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name: "truncated authenticator data",
			mutate: func(f *assertionFixture) {
				f.rawAuthnData = f.rawAuthnData[:20]
			},
			wantErr: ErrMalformedAuthenticatorData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssertionFixture(t, tt.mutate)
			_, err := f.rp.VerifyAssertion(f.cred, f.challenge, f.clientData, f.rawAuthnData, f.signature)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifyAssertionUVNotSetButPreferred(t *testing.T) {
	f := newAssertionFixture(t, func(f *assertionFixture) {
		f.rawAuthnData = buildAuthData(t, f.rp.ID, flagUserPresent, 5)
	})

	_, err := f.rp.VerifyAssertion(f.cred, f.challenge, f.clientData, f.rawAuthnData, f.signature)
	assert.NoError(t, err)
}

func TestCheckSignCount(t *testing.T) {
	tests := []struct {
		name      string
		assertion uint32
		stored    uint32
		wantErr   bool
	}{
		{"strictly increasing", 6, 5, false},
		{"large jump", 1000, 5, false},
		{"both zero", 0, 0, false},
		{"equal", 5, 5, true},
		{"regression", 3, 10, true},
		{"assertion zero stored nonzero", 0, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSignCount(tt.assertion, tt.stored)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSignCountRegression)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
