package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// ─── token ──────────────────────────────────────────────────────────────────

func newTokenCmd() *cobra.Command {
	var (
		userID  string
		role    string
		minutes int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT firmado con JWT_SECRET (entornos de prueba)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !entity.IsValidRole(role) {
				return fmt.Errorf("rol %q inválido (admin | inventory_manager | warehouse_staff)", role)
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if minutes <= 0 {
				minutes = e.cfg.JWT.Expiration
			}
			tok, err := pkgjwt.Generate(e.cfg.JWT.Secret, userID, role, e.cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "ID del usuario")
	cmd.Flags().StringVarP(&role, "role", "r", entity.RoleWarehouseStaff, "Rol del token")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
