package webauthn

import "fmt"

// CeremonyError is the failure of a single check in the authentication
// ceremony. The pipeline stops at the first failing check and surfaces
// its kind; kinds are stable strings meant for server-side logs and
// must never be returned to the client verbatim.
type CeremonyError struct {
	Kind string
	Msg  string
}

func (e *CeremonyError) Error() string {
	if e.Msg == "" {
		return "webauthn: " + e.Kind
	}
	return "webauthn: " + e.Kind + ": " + e.Msg
}

// Is matches two ceremony errors by kind so that callers can use
// errors.Is against the sentinel values below regardless of the
// per-failure message.
func (e *CeremonyError) Is(target error) bool {
	t, ok := target.(*CeremonyError)
	return ok && t.Kind == e.Kind
}

// Sentinel values for every check in the ceremony. None of these is
// retryable: each one means the input or stored state was invalid.
var (
	ErrUserNotFound               = &CeremonyError{Kind: "user_not_found"}
	ErrCredentialNotFound         = &CeremonyError{Kind: "credential_not_found"}
	ErrMalformedClientData        = &CeremonyError{Kind: "malformed_client_data"}
	ErrMalformedAuthenticatorData = &CeremonyError{Kind: "malformed_authenticator_data"}
	ErrUnexpectedCeremonyType     = &CeremonyError{Kind: "unexpected_ceremony_type"}
	ErrChallengeNotFound          = &CeremonyError{Kind: "challenge_not_found"}
	ErrChallengeMismatch          = &CeremonyError{Kind: "challenge_mismatch"}
	ErrOriginMismatch             = &CeremonyError{Kind: "origin_mismatch"}
	ErrTopOriginMismatch          = &CeremonyError{Kind: "top_origin_mismatch"}
	ErrRpIDMismatch               = &CeremonyError{Kind: "rpid_mismatch"}
	ErrUserPresenceRequired       = &CeremonyError{Kind: "user_presence_required"}
	ErrUserVerificationRequired   = &CeremonyError{Kind: "user_verification_required"}
	ErrBackupStateInconsistent    = &CeremonyError{Kind: "backup_state_inconsistent"}
	ErrInvalidSignature           = &CeremonyError{Kind: "invalid_signature"}
	ErrSignCountRegression        = &CeremonyError{Kind: "sign_count_regression"}
)

func ceremonyErr(sentinel *CeremonyError, format string, args ...interface{}) error {
	return &CeremonyError{Kind: sentinel.Kind, Msg: fmt.Sprintf(format, args...)}
}

// StorageError wraps a store-layer fault (connectivity, timeout). It is
// the only error class a caller may retry; every CeremonyError is final
// for the ceremony that produced it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "webauthn: storage unavailable during " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
