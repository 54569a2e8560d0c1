package cli

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ─── ledger ─────────────────────────────────────────────────────────────────

func newLedgerCmd() *cobra.Command {
	var filter entity.LedgerFilter
	var docType string
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Lista asientos del kardex en orden de escritura",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.DocumentType = entity.LedgerDocumentType(docType)
			be, err := openBackend(cmd)
			if err != nil {
				return err
			}
			defer be.Close()
			return listLedger(cmd, be.Ledger, filter)
		},
	}
	cmd.Flags().StringVarP(&filter.ProductID, "product", "p", "", "Producto")
	cmd.Flags().StringVarP(&filter.LocationID, "location", "l", "", "Ubicación")
	cmd.Flags().StringVar(&filter.DocumentID, "document", "", "ID del documento")
	cmd.Flags().StringVar(&docType, "type", "", "receipt | delivery | transfer_in | transfer_out | adjustment")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 100, "Máximo de asientos (0 = todos)")
	return cmd
}

func listLedger(cmd *cobra.Command, ledger repository.LedgerRepository, filter entity.LedgerFilter) error {
	items := make([]dto.LedgerEntryResponse, 0)
	for e, err := range ledger.Query(cmd.Context(), filter) {
		if err != nil {
			return err
		}
		items = append(items, dto.ToLedgerEntryResponse(e))
	}
	return printJSON(cmd.OutOrStdout(), dto.LedgerListResponse{Items: items})
}
