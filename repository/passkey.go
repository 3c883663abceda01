package repository

import (
	"time"

	"passkey_auth_ms/domain"
	"passkey_auth_ms/webauthn"

	"gorm.io/gorm"
)

type IPasskeyRepository interface {
	FindByCredentialID(db *gorm.DB, credentialID []byte) (*domain.Passkey, error)
	UpdateAfterLogin(db *gorm.DB, credentialID []byte, expectedSignCount, newSignCount uint32, backupState bool) error
}

type PasskeyRepository struct {
}

func NewPasskeyRepository() IPasskeyRepository {
	return &PasskeyRepository{}
}

func (p *PasskeyRepository) FindByCredentialID(db *gorm.DB, credentialID []byte) (*domain.Passkey, error) {
	var passkey domain.Passkey
	err := db.Where("credential_id = ?", credentialID).First(&passkey).Error
	if err != nil {
		return nil, err
	}
	return &passkey, nil
}

// UpdateAfterLogin persists the counter and backup state of a
// credential after a successful ceremony. The update is conditional on
// the sign count still holding the value the ceremony read, so two
// concurrent logins racing on the same credential can never both
// advance the counter past the same stored value: the loser sees zero
// rows affected and fails with the sign-count conflict.
func (p *PasskeyRepository) UpdateAfterLogin(db *gorm.DB, credentialID []byte, expectedSignCount, newSignCount uint32, backupState bool) error {
	now := time.Now()
	res := db.Model(&domain.Passkey{}).
		Where("credential_id = ? AND sign_count = ?", credentialID, expectedSignCount).
		Updates(map[string]interface{}{
			"sign_count":   newSignCount,
			"backup_state": backupState,
			"updated_at":   &now,
		})
	if res.Error != nil {
		return &webauthn.StorageError{Op: "passkey update", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return webauthn.ErrSignCountRegression
	}
	return nil
}
