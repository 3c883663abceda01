package webauthn

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
)

// UserVerificationRequirement is the relying party's policy on the UV
// flag, as defined in
// https://www.w3.org/TR/webauthn-3/#enum-userVerificationRequirement
type UserVerificationRequirement string

const (
	UserVerificationRequired    UserVerificationRequirement = "required"
	UserVerificationPreferred   UserVerificationRequirement = "preferred"
	UserVerificationDiscouraged UserVerificationRequirement = "discouraged"
)

// RelyingParty holds the immutable verification-time configuration of
// the server validating assertions.
type RelyingParty struct {
	// ID uniquely identifies the server, e.g. "login.example.com".
	//
	// https://www.w3.org/TR/webauthn-3/#relying-party-identifier
	ID string

	// Origin is the exact base URL the browser reports when producing
	// an assertion, e.g. "https://login.example.com". No wildcard or
	// subdomain matching is performed.
	Origin string

	// TopOrigin is the single top-level origin accepted when the
	// request was made cross-origin. A client data without a topOrigin
	// field is always acceptable.
	TopOrigin string

	// UserVerification decides whether the UV flag is mandatory.
	UserVerification UserVerificationRequirement
}

// VerifyAssertion runs the cryptographic half of the authentication
// ceremony against an already-resolved stored credential and challenge:
// ceremony type, byte-exact challenge match, exact origin and
// top-origin match, RP ID hash, user presence, the user verification
// policy, backup flag consistency and finally the signature over
// authenticatorData || SHA-256(clientDataJSON).
//
// Checks run in that fixed order and the first failure aborts with its
// specific error kind. The caller resolves user, credential and stored
// challenge first, and owns the sign counter check that follows.
func (rp *RelyingParty) VerifyAssertion(cred *Credential, expectedChallenge []byte, clientData *CollectedClientData, rawAuthnData, signature []byte) (*AuthenticatorData, error) {
	if clientData.Type != CeremonyTypeGet {
		return nil, ceremonyErr(ErrUnexpectedCeremonyType, "expected %q, got %q", CeremonyTypeGet, clientData.Type)
	}

	challenge, err := clientData.ChallengeBytes()
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(challenge, expectedChallenge) != 1 {
		return nil, ceremonyErr(ErrChallengeMismatch, "client data challenge differs from issued challenge")
	}

	if clientData.Origin != rp.Origin {
		return nil, ceremonyErr(ErrOriginMismatch, "expected %q, got %q", rp.Origin, clientData.Origin)
	}
	if clientData.TopOrigin != "" && clientData.TopOrigin != rp.TopOrigin {
		return nil, ceremonyErr(ErrTopOriginMismatch, "got %q", clientData.TopOrigin)
	}

	authnData, err := ParseAuthenticatorData(rawAuthnData)
	if err != nil {
		return nil, err
	}

	rpIDHash := sha256.Sum256([]byte(rp.ID))
	if !bytes.Equal(rpIDHash[:], authnData.RPIDHash) {
		return nil, ceremonyErr(ErrRpIDMismatch, "assertion issued for a different relying party")
	}

	if !authnData.UserPresent {
		return nil, ceremonyErr(ErrUserPresenceRequired, "UP flag not set")
	}
	if rp.UserVerification == UserVerificationRequired && !authnData.UserVerified {
		return nil, ceremonyErr(ErrUserVerificationRequired, "UV flag not set")
	}
	if !authnData.BackupEligible && authnData.BackupState {
		return nil, ceremonyErr(ErrBackupStateInconsistent, "BS flag set without BE")
	}

	clientDataHash := sha256.Sum256(clientData.Raw)
	message := make([]byte, 0, len(authnData.Raw)+len(clientDataHash))
	message = append(message, authnData.Raw...)
	message = append(message, clientDataHash[:]...)
	if err := cred.Verify(message, signature); err != nil {
		return nil, err
	}

	return authnData, nil
}

// CheckSignCount applies the anti-cloning rule: when either counter is
// nonzero the assertion's counter must strictly exceed the stored one.
// Both being zero means the device never reported a counter.
func CheckSignCount(assertionCount, storedCount uint32) error {
	if assertionCount == 0 && storedCount == 0 {
		return nil
	}
	if assertionCount <= storedCount {
		return ceremonyErr(ErrSignCountRegression, "assertion counter %d, stored counter %d", assertionCount, storedCount)
	}
	return nil
}
