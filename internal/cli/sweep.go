package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/forgeboard/internal/db"
	"github.com/terraincognita07/forgeboard/internal/services"
)

// NewSweepCommand runs one missed-day sweep over all owners, for hosts that
// schedule it with cron instead of keeping the server running.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark closed days without a check-in as missed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, closeDatabase, err := loadEnvironment(rootOpts)
			if err != nil {
				return err
			}
			defer closeDatabase()

			repos := db.NewRepositories(database, nil)
			streaks := services.NewStreakService(repos.DailyLogs, cfg.StreakServiceConfig(), cfg.Location())
			result := services.NewMissSweeper(repos.Users, streaks, cfg.Streak.SweepInterval).RunOnce(cmd.Context())

			fmt.Fprintf(cmd.OutOrStdout(), "swept %d user(s), marked %d missed day(s)\n", result.Users, result.Marked)
			if result.Failed > 0 {
				return fmt.Errorf("sweep failed for %d user(s)", result.Failed)
			}
			return nil
		},
	}
}
