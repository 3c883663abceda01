package domain

import (
	"strconv"
	"time"
)

type User struct {
	Id          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   *time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"default:null" json:"updated_at"`
	DeletedAt   *time.Time `gorm:"default:null" json:"deleted_at"`
	Email       string     `gorm:"size:100;not null" json:"email"`
	Phone       string     `gorm:"size:100;not null" json:"phone"`
	DisplayName string     `gorm:"size:100" json:"display_name"`
	Passkeys    []Passkey  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user_passkeys"`
}

// UserHandle is the opaque identifier bound into credentials at
// registration time and echoed back by the authenticator inside an
// assertion. The decimal user id keeps it stable and reversible.
func (u User) UserHandle() []byte {
	return []byte(strconv.Itoa(int(u.Id)))
}
