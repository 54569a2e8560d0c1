// Package cli comandos de operación de stockctl (verificación, consultas y tokens de prueba).
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/backend"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ─── root ───────────────────────────────────────────────────────────────────

// NewRootCmd arma el árbol de comandos. Cada llamada devuelve comandos nuevos (sin estado compartido).
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Operación del kardex y las posiciones de stock",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVerifyCmd(), newPositionCmd(), newLedgerCmd(), newTokenCmd())
	return root
}

// Execute corre stockctl con los argumentos del proceso.
func Execute() error {
	return NewRootCmd().Execute()
}

// env configuración y logger cargados para un comando.
type env struct {
	cfg *config.Config
	log zerolog.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuración: %w", err)
	}
	lg := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: "stockctl",
		Output:  cmd.ErrOrStderr(),
	})
	return &env{cfg: cfg, log: lg.Zerolog()}, nil
}

// openBackend abre el backend configurado; el llamador debe cerrarlo.
func openBackend(cmd *cobra.Command) (*backend.Backend, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, err
	}
	return backend.Open(cmd.Context(), e.cfg, e.log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
