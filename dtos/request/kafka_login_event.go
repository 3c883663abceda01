package request

type PasskeyLoginEvent struct {
	EventId      string `json:"event_id"`
	UserId       uint   `json:"user_id"`
	CredentialId string `json:"credential_id"`
	SignCount    uint32 `json:"sign_count"`
	LoginAt      string `json:"login_at"`
}
