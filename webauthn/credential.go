package webauthn

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// COSE algorithm identifiers supported by this package.
//
// https://www.iana.org/assignments/cose/cose.xhtml#algorithms
const (
	AlgES256 int64 = -7
	AlgEdDSA int64 = -8
	AlgES384 int64 = -35
	AlgES512 int64 = -36
	AlgRS256 int64 = -257
	AlgRS384 int64 = -258
	AlgRS512 int64 = -259
)

// COSE key types.
const (
	coseKeyTypeOKP int64 = 1
	coseKeyTypeEC2 int64 = 2
	coseKeyTypeRSA int64 = 3
)

// COSE elliptic curves.
const (
	coseCurveP256    int64 = 1
	coseCurveP384    int64 = 2
	coseCurveP521    int64 = 3
	coseCurveEd25519 int64 = 6
)

// Credential is the verifier capability stored for a registered
// passkey: given a message and a signature, it answers whether the
// credential's private key produced the signature.
type Credential struct {
	Raw       []byte
	Alg       int64
	PublicKey crypto.PublicKey
}

type rawCOSEKey struct {
	Kty    int64           `cbor:"1,keyasint"`
	Alg    int64           `cbor:"3,keyasint"`
	CrvOrN cbor.RawMessage `cbor:"-1,keyasint,omitempty"`
	XOrE   cbor.RawMessage `cbor:"-2,keyasint,omitempty"`
	Y      cbor.RawMessage `cbor:"-3,keyasint,omitempty"`
}

// ParseCredential decodes a public key in COSE_Key format, as stored by
// the registration ceremony.
//
// https://www.w3.org/TR/webauthn-3/#sctn-attested-credential-data
func ParseCredential(coseKey []byte) (*Credential, error) {
	var raw rawCOSEKey
	if err := cbor.Unmarshal(coseKey, &raw); err != nil {
		return nil, ceremonyErr(ErrMalformedAuthenticatorData, "invalid COSE key: %v", err)
	}

	c := &Credential{Raw: coseKey, Alg: raw.Alg}
	switch raw.Kty {
	case coseKeyTypeEC2:
		var crv int64
		if err := cbor.Unmarshal(raw.CrvOrN, &crv); err != nil {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "invalid COSE curve")
		}
		var curve elliptic.Curve
		switch crv {
		case coseCurveP256:
			curve = elliptic.P256()
		case coseCurveP384:
			curve = elliptic.P384()
		case coseCurveP521:
			curve = elliptic.P521()
		default:
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "unsupported COSE curve %d", crv)
		}
		var xb, yb []byte
		if err := cbor.Unmarshal(raw.XOrE, &xb); err != nil {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "invalid ECDSA x")
		}
		if err := cbor.Unmarshal(raw.Y, &yb); err != nil {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "invalid ECDSA y")
		}
		c.PublicKey = &ecdsa.PublicKey{
			Curve: curve,
			X:     new(big.Int).SetBytes(xb),
			Y:     new(big.Int).SetBytes(yb),
		}
	case coseKeyTypeRSA:
		var nb, eb []byte
		if err := cbor.Unmarshal(raw.CrvOrN, &nb); err != nil {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "invalid RSA n")
		}
		if err := cbor.Unmarshal(raw.XOrE, &eb); err != nil {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "invalid RSA e")
		}
		c.PublicKey = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nb),
			E: int(new(big.Int).SetBytes(eb).Int64()),
		}
	case coseKeyTypeOKP:
		var crv int64
		if err := cbor.Unmarshal(raw.CrvOrN, &crv); err != nil || crv != coseCurveEd25519 {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "unsupported OKP curve")
		}
		var xb []byte
		if err := cbor.Unmarshal(raw.XOrE, &xb); err != nil || len(xb) != ed25519.PublicKeySize {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "invalid Ed25519 public key")
		}
		c.PublicKey = ed25519.PublicKey(xb)
	default:
		return nil, ceremonyErr(ErrMalformedAuthenticatorData, "unsupported COSE key type %d", raw.Kty)
	}
	return c, nil
}

func (c *Credential) hash() (crypto.Hash, bool) {
	switch c.Alg {
	case AlgES256, AlgRS256:
		return crypto.SHA256, true
	case AlgES384, AlgRS384:
		return crypto.SHA384, true
	case AlgES512, AlgRS512:
		return crypto.SHA512, true
	}
	return 0, false
}

// Verify checks signature over message using the credential's algorithm
// and public key. A mismatch of any kind reports ErrInvalidSignature.
func (c *Credential) Verify(message, signature []byte) error {
	switch pk := c.PublicKey.(type) {
	case *ecdsa.PublicKey:
		h, ok := c.hash()
		if !ok {
			return ceremonyErr(ErrInvalidSignature, "algorithm %d is not an ECDSA algorithm", c.Alg)
		}
		digest := digest(h, message)
		if !ecdsa.VerifyASN1(pk, digest, signature) {
			return ceremonyErr(ErrInvalidSignature, "ECDSA verification failed")
		}
	case *rsa.PublicKey:
		h, ok := c.hash()
		if !ok {
			return ceremonyErr(ErrInvalidSignature, "algorithm %d is not an RSA algorithm", c.Alg)
		}
		if err := rsa.VerifyPKCS1v15(pk, h, digest(h, message), signature); err != nil {
			return ceremonyErr(ErrInvalidSignature, "RSA verification failed")
		}
	case ed25519.PublicKey:
		if c.Alg != AlgEdDSA {
			return ceremonyErr(ErrInvalidSignature, "algorithm %d is not EdDSA", c.Alg)
		}
		if !ed25519.Verify(pk, message, signature) {
			return ceremonyErr(ErrInvalidSignature, "EdDSA verification failed")
		}
	default:
		return ceremonyErr(ErrInvalidSignature, "unsupported public key type %T", c.PublicKey)
	}
	return nil
}

func digest(h crypto.Hash, message []byte) []byte {
	hh := h.New()
	hh.Write(message)
	return hh.Sum(nil)
}
