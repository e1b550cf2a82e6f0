package cmd

import (
	"fmt"

	"github.com/jobseeker-app/apiserver/config"
	"github.com/jobseeker-app/apiserver/internal/db"
	"github.com/jobseeker-app/apiserver/internal/services"
	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// seedCmd loads the mock job catalog into an empty database.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the mock job catalog if it is not present",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		inserted, err := services.NewJobService(store.NewJobRepository(conn)).SeedMockJobs(cmd.Context())
		if err != nil {
			return fmt.Errorf("seed mock jobs: %w", err)
		}
		log.Info().Int("jobs", inserted).Msg("seed complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
