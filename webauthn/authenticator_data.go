package webauthn

import (
	"bytes"
	"encoding/binary"

	"github.com/fxamacker/cbor/v2"
)

// Authenticator data flag bits.
//
// https://www.w3.org/TR/webauthn-3/#authdata-flags
const (
	flagUserPresent    = 0x01 // UP, bit 0
	flagUserVerified   = 0x04 // UV, bit 2
	flagBackupEligible = 0x08 // BE, bit 3
	flagBackupState    = 0x10 // BS, bit 4
	flagAttestedData   = 0x40 // AT, bit 6
	flagExtensionData  = 0x80 // ED, bit 7
)

// AuthenticatorData is the parsed view of the binary structure an
// authenticator signs over, as defined in
// https://www.w3.org/TR/webauthn-3/#sctn-authenticator-data
type AuthenticatorData struct {
	Raw            []byte // complete raw content, signed by the authenticator
	RPIDHash       []byte // SHA-256 of the RP ID the credential is scoped to
	UserPresent    bool   // UP
	UserVerified   bool   // UV
	BackupEligible bool   // BE
	BackupState    bool   // BS
	SignCount      uint32 // signature counter, big-endian on the wire

	// Attested credential data, present only when the AT flag is set.
	// Assertions normally omit it.
	AAGUID       []byte
	CredentialID []byte
	PublicKey    []byte // raw COSE_Key bytes, see ParseCredential

	// Raw extension output, present only when the ED flag is set.
	// This core never interprets extension contents.
	Extensions []byte
}

// ParseAuthenticatorData decodes the fixed 37-byte prefix (32-byte RP ID
// hash, 1 flag byte, 4-byte big-endian counter) plus the variable-length
// attested-credential-data and extension sections when the AT/ED flags
// are set. Truncated input fails with ErrMalformedAuthenticatorData.
func ParseAuthenticatorData(data []byte) (*AuthenticatorData, error) {
	if len(data) < 37 {
		return nil, ceremonyErr(ErrMalformedAuthenticatorData, "got %d bytes, need at least 37", len(data))
	}

	ad := &AuthenticatorData{Raw: data}

	ad.RPIDHash = make([]byte, 32)
	copy(ad.RPIDHash, data)

	flags := data[32]
	ad.UserPresent = flags&flagUserPresent != 0
	ad.UserVerified = flags&flagUserVerified != 0
	ad.BackupEligible = flags&flagBackupEligible != 0
	ad.BackupState = flags&flagBackupState != 0

	ad.SignCount = binary.BigEndian.Uint32(data[33:37])

	rest := data[37:]

	if flags&flagAttestedData != 0 {
		if len(rest) < 18 {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "truncated attested credential data")
		}
		ad.AAGUID = make([]byte, 16)
		copy(ad.AAGUID, rest)

		idLen := int(binary.BigEndian.Uint16(rest[16:18]))
		rest = rest[18:]
		if len(rest) < idLen {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "truncated credential id")
		}
		ad.CredentialID = make([]byte, idLen)
		copy(ad.CredentialID, rest)
		rest = rest[idLen:]

		// The COSE key is the next CBOR value; decode it only to find
		// its length, the bytes are handed over verbatim.
		var raw cbor.RawMessage
		dec := cbor.NewDecoder(bytes.NewReader(rest))
		if err := dec.Decode(&raw); err != nil {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "invalid credential public key: %v", err)
		}
		ad.PublicKey = rest[:dec.NumBytesRead()]
		rest = rest[dec.NumBytesRead():]
	}

	if flags&flagExtensionData != 0 {
		if len(rest) == 0 {
			return nil, ceremonyErr(ErrMalformedAuthenticatorData, "ED flag set but no extension data")
		}
		ad.Extensions = rest
		rest = nil
	}

	if len(rest) != 0 {
		return nil, ceremonyErr(ErrMalformedAuthenticatorData, "%d trailing bytes", len(rest))
	}
	return ad, nil
}
