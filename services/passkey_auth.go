package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"passkey_auth_ms/config"
	"passkey_auth_ms/domain"
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/dtos/response"
	"passkey_auth_ms/repository"
	"passkey_auth_ms/util"
	"passkey_auth_ms/webauthn"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hashicorp/go-uuid"
	"gorm.io/gorm"
)

type IPasskeyService interface {
	LoginStart() (*response.PasskeyLoginOptions, error)
	LoginFinish(req *request.FinishPasskeyLoginRequest) (*response.PasskeyLoginResponse, error)
	GetProfile(userId uint) (*response.UserProfileResponse, error)
}

type PasskeyService struct {
	db          *gorm.DB
	rp          *webauthn.RelyingParty
	userRepo    repository.IUserRepository
	passkeyRepo repository.IPasskeyRepository
	redis       IRedisService
	jwt         IJWTService
}

func NewPasskeyService(rp *webauthn.RelyingParty, db *gorm.DB, userRepo repository.IUserRepository, passkeyRepo repository.IPasskeyRepository, redis IRedisService, jwt IJWTService) IPasskeyService {
	return &PasskeyService{rp: rp, db: db, userRepo: userRepo, passkeyRepo: passkeyRepo, redis: redis, jwt: jwt}
}

// LoginStart begins an authentication ceremony: it mints a random
// challenge, stores it single-use, and returns the request options the
// client feeds to navigator.credentials.get().
func (ps *PasskeyService) LoginStart() (*response.PasskeyLoginOptions, error) {
	challenge, err := util.GenerateChallenge()
	if err != nil {
		return nil, err
	}

	if err := ps.redis.StoreLoginChallenge(challenge); err != nil {
		return nil, err
	}

	return &response.PasskeyLoginOptions{
		PublicKey: response.PublicKeyCredentialRequestOptions{
			Challenge:        base64.RawURLEncoding.EncodeToString(challenge),
			Timeout:          60000,
			RpId:             ps.rp.ID,
			UserVerification: string(ps.rp.UserVerification),
		},
	}, nil
}

// LoginFinish validates an authentication assertion. The checks run in
// a fixed order and the first failure aborts the whole ceremony with
// its specific error kind; nothing is persisted on failure. Only the
// conditional credential update and the session write mutate state,
// and both happen after every check has passed.
func (ps *PasskeyService) LoginFinish(req *request.FinishPasskeyLoginRequest) (*response.PasskeyLoginResponse, error) {
	// 1. Resolve the acting user from the assertion's user handle.
	if req.Response.UserHandle == "" {
		return nil, webauthn.ErrUserNotFound
	}
	userHandle, err := webauthn.DecodeBase64(req.Response.UserHandle)
	if err != nil {
		return nil, webauthn.ErrUserNotFound
	}
	user, err := ps.userRepo.FindByUserHandle(ps.db, userHandle)
	if err != nil {
		return nil, mapRepoErr(err, webauthn.ErrUserNotFound, "user lookup")
	}

	// 2. Resolve the stored credential and cross-check ownership.
	credentialID := req.RawID
	if credentialID == "" {
		credentialID = req.ID
	}
	rawCredentialID, err := webauthn.DecodeBase64(credentialID)
	if err != nil || len(rawCredentialID) == 0 {
		return nil, webauthn.ErrCredentialNotFound
	}
	passkey, err := ps.passkeyRepo.FindByCredentialID(ps.db, rawCredentialID)
	if err != nil {
		return nil, mapRepoErr(err, webauthn.ErrCredentialNotFound, "credential lookup")
	}
	if passkey.UserID != user.Id {
		return nil, webauthn.ErrCredentialNotFound
	}

	// 3. Decode and parse the client data.
	rawClientData, err := webauthn.DecodeBase64(req.Response.ClientDataJSON)
	if err != nil {
		return nil, webauthn.ErrMalformedClientData
	}
	clientData, err := webauthn.ParseClientData(rawClientData)
	if err != nil {
		return nil, err
	}

	// 4. Ceremony type, checked before the challenge is consumed so a
	// registration response can never burn a login challenge.
	if clientData.Type != webauthn.CeremonyTypeGet {
		return nil, webauthn.ErrUnexpectedCeremonyType
	}

	// 5. Atomically take the issued challenge; the byte-exact compare
	// happens inside VerifyAssertion.
	challengeBytes, err := clientData.ChallengeBytes()
	if err != nil {
		return nil, err
	}
	storedChallenge, err := ps.redis.TakeLoginChallenge(ChallengeKey(challengeBytes))
	if err != nil {
		return nil, err
	}

	// 6–12. Origin, top origin, RP ID hash, flags and signature.
	rawAuthnData, err := webauthn.DecodeBase64(req.Response.AuthenticatorData)
	if err != nil {
		return nil, webauthn.ErrMalformedAuthenticatorData
	}
	signature, err := webauthn.DecodeBase64(req.Response.Signature)
	if err != nil {
		return nil, webauthn.ErrInvalidSignature
	}
	credential, err := webauthn.ParseCredential(passkey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("stored credential %d is unusable: %w", passkey.ID, err)
	}
	authnData, err := ps.rp.VerifyAssertion(credential, storedChallenge, clientData, rawAuthnData, signature)
	if err != nil {
		return nil, err
	}

	// 13. Anti-clone counter check.
	if err := webauthn.CheckSignCount(authnData.SignCount, passkey.SignCount); err != nil {
		return nil, err
	}

	// 14. Conditional write, atomic with the counter the check read.
	if err := ps.passkeyRepo.UpdateAfterLogin(ps.db, passkey.CredentialID, passkey.SignCount, authnData.SignCount, authnData.BackupState); err != nil {
		return nil, err
	}

	// 15. Issue the session.
	sessionToken, err := util.GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	session := &domain.LoginSession{
		ID:        sessionToken,
		UserID:    user.Id,
		CreatedAt: time.Now(),
	}
	if err := ps.redis.StoreLoginSession(session); err != nil {
		return nil, err
	}

	tokens, err := ps.jwt.GenerateTokens(user)
	if err != nil {
		return nil, err
	}

	ps.publishLoginEvent(user, passkey, authnData.SignCount)

	return &response.PasskeyLoginResponse{
		UserId:    user.Id,
		Email:     user.Email,
		SessionId: session.ID,
		Tokens:    tokens,
	}, nil
}

func (ps *PasskeyService) GetProfile(userId uint) (*response.UserProfileResponse, error) {
	user, err := ps.userRepo.GetByID(ps.db, userId)
	if err != nil {
		return nil, mapRepoErr(err, webauthn.ErrUserNotFound, "user lookup")
	}
	return &response.UserProfileResponse{
		UserId:      user.Id,
		Email:       user.Email,
		Phone:       user.Phone,
		DisplayName: user.DisplayName,
	}, nil
}

// publishLoginEvent is fire-and-forget telemetry: the ceremony already
// succeeded, a broker outage must not fail the login.
func (ps *PasskeyService) publishLoginEvent(user *domain.User, passkey *domain.Passkey, signCount uint32) {
	if len(config.Conf.Application.Kafka.Brokers) == 0 {
		return
	}
	eventId, _ := uuid.GenerateUUID()
	event := &request.PasskeyLoginEvent{
		EventId:      eventId,
		UserId:       user.Id,
		CredentialId: base64.RawURLEncoding.EncodeToString(passkey.CredentialID),
		SignCount:    signCount,
		LoginAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := SendPasskeyLoginEventToKafka(event); err != nil {
		log.Warn("passkey login event not published: ", err)
	}
}

// mapRepoErr keeps the ceremony taxonomy separate from store faults:
// a missing row is the given ceremony kind, everything else is the
// retryable storage class.
func mapRepoErr(err error, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return &webauthn.StorageError{Op: op, Err: err}
}
