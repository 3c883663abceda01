package response

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// PasskeyLoginOptions is the PublicKeyCredentialRequestOptions object
// handed to navigator.credentials.get().
type PasskeyLoginOptions struct {
	PublicKey PublicKeyCredentialRequestOptions `json:"publicKey"`
}

type PublicKeyCredentialRequestOptions struct {
	Challenge        string `json:"challenge"` // base64url
	Timeout          int    `json:"timeout,omitempty"`
	RpId             string `json:"rpId"`
	UserVerification string `json:"userVerification,omitempty"`
}

type PasskeyLoginResponse struct {
	UserId    uint    `json:"user_id"`
	Email     string  `json:"email"`
	SessionId string  `json:"session_id"`
	Tokens    *Tokens `json:"tokens"`
}

type UserProfileResponse struct {
	UserId      uint   `json:"user_id"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
}
