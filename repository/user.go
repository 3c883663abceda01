package repository

import (
	"strconv"

	"passkey_auth_ms/domain"

	"gorm.io/gorm"
)

type IUserRepository interface {
	GetByID(db *gorm.DB, id uint) (*domain.User, error)
	FindByUserHandle(db *gorm.DB, handle []byte) (*domain.User, error)
}

type UserRepository struct {
}

func NewUserRepository() IUserRepository {
	return &UserRepository{}
}

func (u *UserRepository) GetByID(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	err := db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUserHandle resolves the user handle carried in an assertion.
// Handles are the decimal user id, see domain.User.UserHandle.
func (u *UserRepository) FindByUserHandle(db *gorm.DB, handle []byte) (*domain.User, error) {
	id, err := strconv.Atoi(string(handle))
	if err != nil || id <= 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return u.GetByID(db, uint(id))
}
