package webauthn

import "encoding/json"

// Ceremony types carried in the collected client data.
const (
	CeremonyTypeCreate = "webauthn.create"
	CeremonyTypeGet    = "webauthn.get"
)

// CollectedClientData is the JSON object serialized by the browser and
// passed to the authenticator, as defined in
// https://www.w3.org/TR/webauthn-3/#dictionary-client-data
type CollectedClientData struct {
	Raw         []byte `json:"-"`                   // complete raw bytes, hashed into the signed message
	Type        string `json:"type"`                // "webauthn.create" or "webauthn.get"
	Challenge   string `json:"challenge"`           // base64url challenge issued by the relying party
	Origin      string `json:"origin"`              // fully qualified origin of the requester
	TopOrigin   string `json:"topOrigin,omitempty"` // top-level origin when the request was cross-origin
	CrossOrigin bool   `json:"crossOrigin,omitempty"`
}

// ParseClientData parses clientDataJSON. Type, challenge and origin are
// required and must be strings; unknown fields are ignored.
func ParseClientData(data []byte) (*CollectedClientData, error) {
	var c CollectedClientData
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, ceremonyErr(ErrMalformedClientData, "%v", err)
	}
	if c.Type == "" {
		return nil, ceremonyErr(ErrMalformedClientData, "missing type")
	}
	if c.Challenge == "" {
		return nil, ceremonyErr(ErrMalformedClientData, "missing challenge")
	}
	if c.Origin == "" {
		return nil, ceremonyErr(ErrMalformedClientData, "missing origin")
	}
	c.Raw = data
	return &c, nil
}

// ChallengeBytes decodes the challenge field from its transport
// encoding. Comparison against the stored challenge is byte-exact, so
// decoding is the only place encoding variants are tolerated.
func (c *CollectedClientData) ChallengeBytes() ([]byte, error) {
	b, err := DecodeBase64(c.Challenge)
	if err != nil {
		return nil, ceremonyErr(ErrMalformedClientData, "challenge is not base64: %v", err)
	}
	return b, nil
}
