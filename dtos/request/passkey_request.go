package request

// AssertionResponse carries the authenticator's output. All byte
// fields are base64 encoded on the wire, standard or URL-safe
// depending on the client.
type AssertionResponse struct {
	ClientDataJSON    string `json:"clientDataJSON" validate:"required,b64"`
	AuthenticatorData string `json:"authenticatorData" validate:"required,b64"`
	Signature         string `json:"signature" validate:"required,b64"`
	UserHandle        string `json:"userHandle" validate:"omitempty,b64"`
}

// FinishPasskeyLoginRequest is the wire shape of a PublicKeyCredential
// produced by navigator.credentials.get().
type FinishPasskeyLoginRequest struct {
	ID       string            `json:"id" validate:"required,b64"`
	RawID    string            `json:"rawId" validate:"omitempty,b64"`
	Type     string            `json:"type" validate:"required,eq=public-key"`
	Response AssertionResponse `json:"response" validate:"required"`
}
