package repository_test_test

import (
	"testing"

	"passkey_auth_ms/repository"
	"passkey_auth_ms/repository/repository_test"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFindByCredentialID_SQLMock(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)
	credentialID := []byte("credential-id-0001")
	rows := sqlmock.NewRows([]string{"id", "user_id", "credential_id", "sign_count", "backup_eligible", "backup_state"}).
		AddRow(10, 1, credentialID, 5, true, false)
	mock.ExpectQuery(`SELECT \* FROM "user_passkeys" WHERE credential_id = \$1 ORDER BY "user_passkeys"\."id" LIMIT \$2`).
		WithArgs(credentialID, 1).
		WillReturnRows(rows)

	repo := repository.NewPasskeyRepository()
	passkey, err := repo.FindByCredentialID(conn, credentialID)

	assert.NoError(t, err)
	assert.NotNil(t, passkey)
	assert.Equal(t, uint(1), passkey.UserID)
	assert.Equal(t, uint32(5), passkey.SignCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCredentialID_NotFound(t *testing.T) {
	conn, mock := repository_test.SetupMockDB(t)
	credentialID := []byte("no-such-credential")
	mock.ExpectQuery(`SELECT \* FROM "user_passkeys" WHERE credential_id = \$1 ORDER BY "user_passkeys"\."id" LIMIT \$2`).
		WithArgs(credentialID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := repository.NewPasskeyRepository()
	passkey, err := repo.FindByCredentialID(conn, credentialID)

	assert.Nil(t, passkey)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
