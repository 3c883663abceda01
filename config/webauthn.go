package config

import (
	"passkey_auth_ms/webauthn"
)

func InitRelyingParty() *webauthn.RelyingParty {
	var uv webauthn.UserVerificationRequirement
	switch Conf.Application.WebAuthn.UserVerification {
	case "required":
		uv = webauthn.UserVerificationRequired
	case "preferred", "":
		uv = webauthn.UserVerificationPreferred
	case "discouraged":
		uv = webauthn.UserVerificationDiscouraged
	default:
		panic("unknown user-verification value: " + Conf.Application.WebAuthn.UserVerification)
	}

	return &webauthn.RelyingParty{
		ID:               Conf.Application.WebAuthn.RpID,
		Origin:           Conf.Application.WebAuthn.RpOrigin,
		TopOrigin:        Conf.Application.WebAuthn.RpTopOrigin,
		UserVerification: uv,
	}
}
