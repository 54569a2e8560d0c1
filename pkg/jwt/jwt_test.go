package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	token, err := jwt.Generate("secreto", "user-1", "warehouse_staff", "stock-ledger", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "warehouse_staff", role)
}

func TestParse_Rechazos(t *testing.T) {
	token, err := jwt.Generate("secreto", "user-1", "admin", "stock-ledger", 5)
	require.NoError(t, err)
	expired, err := jwt.Generate("secreto", "user-1", "admin", "stock-ledger", -1)
	require.NoError(t, err)

	_, _, err = jwt.Parse("otro", token)
	assert.Error(t, err, "firma incorrecta")
	_, _, err = jwt.Parse("secreto", expired)
	assert.Error(t, err, "expirado")
	_, _, err = jwt.Parse("secreto", "no-es-un-token")
	assert.Error(t, err)
	_, err = jwt.Generate("", "user-1", "admin", "", 5)
	assert.Error(t, err)
}
