package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	executor := inventory.NewMovementExecutor(store, lock.NewKeyMutex(), nil, zerolog.Nop())
	_, err := executor.Execute(context.Background(),
		entity.DocumentRef{ID: "doc-1", Number: "RCP-2026-001", Kind: entity.KindReceipt, Actor: "u-1"},
		[]entity.Movement{{ProductID: "P-1", LocationID: "WH-A", LedgerType: entity.LedgerReceipt, OnHandDelta: decimal.NewFromInt(8)}})
	require.NoError(t, err)
	return store
}

func testCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// ──────────────────────────────────────────────────────────────────────────────
// verify / position / ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestVerify_Consistente(t *testing.T) {
	store := seededStore(t)
	cmd, out := testCmd()

	require.NoError(t, verify(context.Background(), cmd, store))
	assert.Contains(t, out.String(), "pares revisados: 1")
	assert.Contains(t, out.String(), "ok:")
}

func TestVerify_DetectaDiferencia(t *testing.T) {
	store := seededStore(t)
	drift := entity.NewStock("P-1", "WH-A")
	drift.OnHand = decimal.NewFromInt(9)
	require.NoError(t, store.Stocks().Upsert(context.Background(), drift))

	cmd, out := testCmd()
	err := verify(context.Background(), cmd, store)
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.Contains(t, out.String(), "P-1/WH-A")
	assert.Contains(t, out.String(), "kardex=8 on_hand=9")
}

func TestPosition_ParSinMovimientos(t *testing.T) {
	store := seededStore(t)
	cmd, out := testCmd()

	require.NoError(t, position(cmd, store.Stocks(), "P-9", "WH-A"))
	var pos dto.StockPositionResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &pos))
	assert.Equal(t, "P-9", pos.ProductID)
	assert.True(t, pos.OnHand.IsZero())
}

func TestListLedger_Filtra(t *testing.T) {
	store := seededStore(t)
	cmd, out := testCmd()

	require.NoError(t, listLedger(cmd, store.Ledger(), entity.LedgerFilter{ProductID: "P-1"}))
	var res dto.LedgerListResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Items, 1)
	assert.Equal(t, "RCP-2026-001", res.Items[0].DocumentNumber)

	out.Reset()
	require.NoError(t, listLedger(cmd, store.Ledger(), entity.LedgerFilter{ProductID: "otro"}))
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Empty(t, res.Items)
}

// ──────────────────────────────────────────────────────────────────────────────
// token
// ──────────────────────────────────────────────────────────────────────────────

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestToken_EmiteJWTValido(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := runRoot(t, "token", "--user", "u-7", "--role", entity.RoleInventoryManager)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u-7", userID)
	assert.Equal(t, entity.RoleInventoryManager, role)
}

func TestToken_RolInvalido(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := runRoot(t, "token", "--user", "u-7", "--role", "root")
	assert.ErrorContains(t, err, "rol")
}

func TestToken_SinUsuario(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := runRoot(t, "token")
	assert.Error(t, err)
}
