package repository_test_test

import (
	"testing"

	"passkey_auth_ms/repository"
	"passkey_auth_ms/repository/repository_test"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFindByUserHandle_SQLMock(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)
	rows := sqlmock.NewRows([]string{"id", "email"}).
		AddRow(1, "test@example.com")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1 ORDER BY "users"\."id" LIMIT \$2`).
		WithArgs(1, 1).
		WillReturnRows(rows)

	repo := repository.NewUserRepository()
	user, err := repo.FindByUserHandle(conn, []byte("1"))

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Handles that are not a positive decimal id never reach the database.
func TestFindByUserHandle_InvalidHandle(t *testing.T) {
	conn, _ := repository_test.SetupMockDB(t)

	repo := repository.NewUserRepository()
	for _, handle := range [][]byte{[]byte("not-a-number"), []byte("0"), []byte("-3"), {}} {
		user, err := repo.FindByUserHandle(conn, handle)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	}
}
