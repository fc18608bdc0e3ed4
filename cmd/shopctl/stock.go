package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"repairpos/internal/dto"
	"repairpos/internal/repository"
	"repairpos/internal/service"

	"github.com/spf13/cobra"
)

func NewStockCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stock [query]",
		Short: "Show products and stock on hand",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := opts.database()
			if err != nil {
				return err
			}
			svc := service.NewProductService(repository.NewProductRepository(db), repository.NewStockMovementRepository(db))

			filter := dto.ProductFilter{Page: 1, Limit: limit}
			if len(args) == 1 {
				filter.Query = args[0]
			}
			list, err := svc.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SKU\tNAME\tPRICE\tSTOCK")
			for _, p := range list.Data {
				sku := "-"
				if p.SKU != nil && strings.TrimSpace(*p.SKU) != "" {
					sku = *p.SKU
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", sku, p.Name, p.Price.StringFixed(2), p.StockQuantity)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d products\n", len(list.Data), list.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to show")
	return cmd
}
