package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMockDB(t *testing.T) {
	db, mock, cleanup := SetupMockDB(t)
	require.NotNil(t, db)

	mock.ExpectExec(`UPDATE agencies SET name = \$1`).
		WithArgs("Harbor").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := db.Exec("UPDATE agencies SET name = $1", "Harbor")
	require.NoError(t, err)

	cleanup()
	assert.Error(t, db.Ping())
}

func TestSetupExactMockDB(t *testing.T) {
	db, mock, cleanup := SetupExactMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT name FROM agents WHERE id = $1").
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Dana"))

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM agents WHERE id = $1", "a1").Scan(&name))
	assert.Equal(t, "Dana", name)
}
