package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ErrInconsistent el kardex no cuadra con las posiciones.
var ErrInconsistent = errors.New("kardex y stock no coinciden")

// ─── verify ─────────────────────────────────────────────────────────────────

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Reproduce el kardex y lo compara con las posiciones de stock",
		Long: `Reproduce todo el kardex en orden y compara el saldo de cada par (producto, ubicación)
con OnHand, y la reserva de los despachos abiertos con Reserved.
Sale con error si encuentra diferencias.`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}
}

func runVerify(cmd *cobra.Command, _ []string) error {
	be, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer be.Close()
	return verify(cmd.Context(), cmd, be.TxRunner)
}

func verify(ctx context.Context, cmd *cobra.Command, txRunner inventory.TxRunner) error {
	var report *inventory.ReconcileReport
	err := txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		docRepo repository.DocumentRepository,
	) error {
		r, err := inventory.Reconcile(ctx, stockRepo, ledgerRepo, docRepo)
		report = r
		return err
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pares revisados: %d\n", report.Partitions)
	if report.Consistent() {
		fmt.Fprintln(out, "ok: kardex y stock coinciden")
		return nil
	}
	for _, d := range report.Discrepancies {
		fmt.Fprintf(out, "%s/%s  kardex=%s on_hand=%s  reserva_esperada=%s reserved=%s\n",
			d.Key.ProductID, d.Key.LocationID,
			d.LedgerBalance, d.StockOnHand, d.ExpectedReserved, d.StockReserved)
	}
	return fmt.Errorf("%w: %d diferencias", ErrInconsistent, len(report.Discrepancies))
}

// ─── position ───────────────────────────────────────────────────────────────

func newPositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position PRODUCT_ID LOCATION_ID",
		Short: "Muestra OnHand, Reserved y Available de un par",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			be, err := openBackend(cmd)
			if err != nil {
				return err
			}
			defer be.Close()
			return position(cmd, be.Stocks, args[0], args[1])
		},
	}
}

func position(cmd *cobra.Command, stocks repository.StockRepository, productID, locationID string) error {
	st, err := inventory.PositionOf(cmd.Context(), stocks, productID, locationID)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), dto.ToStockPositionResponse(st))
}
