package domain

import "time"

// Passkey is the stored credential record created by the registration
// ceremony. SignCount and BackupState are the only fields the login
// ceremony mutates; BackupEligible is immutable after creation.
type Passkey struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	CredentialID    []byte     `gorm:"not null;unique" json:"credential_id"`
	PublicKey       []byte     `gorm:"not null" json:"public_key"` // COSE_Key bytes
	SignCount       uint32     `gorm:"not null" json:"sign_count"`
	AAGUID          []byte     `gorm:"not null" json:"aa_guid"`
	AttestationType string     `json:"attestation_type"`
	BackupEligible  bool       `gorm:"not null;default:false" json:"backup_eligible"`
	BackupState     bool       `gorm:"not null;default:false" json:"backup_state"`
	CreatedAt       *time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       *time.Time `gorm:"default:null" json:"updated_at"`
}

func (Passkey) TableName() string {
	return "user_passkeys"
}
