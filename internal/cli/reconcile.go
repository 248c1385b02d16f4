package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/forgeboard/internal/db"
	"github.com/terraincognita07/forgeboard/internal/services"
)

// NewReconcileCommand rebuilds every project's received amount from its paid
// installments and reports the projects whose stored total had drifted.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute received amounts from paid installments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, closeDatabase, err := loadEnvironment(rootOpts)
			if err != nil {
				return err
			}
			defer closeDatabase()

			repos := db.NewRepositories(database, nil)
			ledger := services.NewLedgerService(repos.Projects, repos.Installments, cfg.Location())
			drifts, err := ledger.RecomputeAll()
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(drifts) == 0 {
				fmt.Fprintln(out, "all projects reconciled, no drift")
				return nil
			}
			for _, drift := range drifts {
				fmt.Fprintf(out, "project %d: stored %s, expected %s (fixed)\n",
					drift.ProjectID, drift.Stored.StringFixed(2), drift.Expected.StringFixed(2))
			}
			fmt.Fprintf(out, "%d project(s) corrected\n", len(drifts))
			return nil
		},
	}
}
