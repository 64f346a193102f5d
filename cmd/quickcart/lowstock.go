package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/d60-Lab/quickcart/internal/service"
	"github.com/d60-Lab/quickcart/pkg/database"
)

func lowStockCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "lowstock",
		Short: "Print products at or below the low-stock threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.InitDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if limit <= 0 {
				limit = cfg.Store.LowStockLimit
			}
			items, err := service.NewStatsService(db, limit).LowStock(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"SKU", "Product", "Location", "Qty"})
			for _, it := range items {
				t.AppendRow(table.Row{it.SKU, it.ProductName, it.LocationID, it.Quantity})
			}
			t.AppendFooter(table.Row{"", "", "Total", len(items)})
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "threshold (default store.low_stock_limit)")
	return cmd
}
