package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "stock-ledger-test"
	testExpMin    = 60
)

// gatedApp expone GET /protected detrás de AuthMiddleware + RequireRole(roles...).
func gatedApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
		},
	)
	return app
}

func signed(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return tok
}

// tokenForRole header Authorization con un JWT válido para el rol.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return "Bearer " + signed(t, role)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware + RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, "admin", testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secret", testUserID, "admin", testIssuer, testExpMin)
	require.NoError(t, err)

	tests := []struct {
		name       string
		allowed    []string
		authHeader string
		wantStatus int
		wantCode   string
	}{
		{"rol permitido", []string{"admin"}, "Bearer " + signed(t, "admin"), http.StatusOK, ""},
		{"uno de varios roles", []string{"admin", "warehouse_staff"}, "Bearer " + signed(t, "warehouse_staff"), http.StatusOK, ""},
		{"rol no permitido", []string{"admin"}, "Bearer " + signed(t, "inventory_manager"), http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{"admin"}, "Bearer " + signed(t, ""), http.StatusUnauthorized, "MISSING_ROLE"},
		{"sin header", []string{"admin"}, "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto de Bearer", []string{"admin"}, "Basic abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", []string{"admin"}, "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token expirado", []string{"admin"}, "Bearer " + expired, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"firmado con otro secret", []string{"admin"}, "Bearer " + foreign, http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := gatedApp(tt.allowed...).Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			if tt.wantCode != "" {
				assert.Contains(t, string(body), tt.wantCode)
			}
		})
	}
}

func TestAuthMiddleware_CargaUsuarioYRol(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", tokenForRole(t, "inventory_manager"))
	resp, err := gatedApp("inventory_manager").Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "inventory_manager", body["role"])
}
