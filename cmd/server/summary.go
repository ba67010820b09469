package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitpartner/internal/service"
	"github.com/mmynk/splitpartner/internal/storage/sqlite"
)

func (a *app) summaryCmd() *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print one user's dashboard summary as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := sqlite.New(a.cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()

			svc := service.NewExpenseService(store, nil, service.ExpenseOptions{
				Categories:        a.cfg.Ledger.Categories,
				TopCategories:     a.cfg.Ledger.TopCategories,
				ExcludePaidShares: a.cfg.Ledger.ExcludePaidShares,
				StrictPercentages: a.cfg.Ledger.StrictPercentages,
			}, a.logger)

			summary, err := svc.Summary(cmd.Context(), ownerID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "user ID whose expenses are summarized")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
