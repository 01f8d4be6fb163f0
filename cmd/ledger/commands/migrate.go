package commands

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-ledger-service/internal/ledger/repository"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger tables and seed reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := connectDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.Migrate(context.Background(), db, seed); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", true, "Insert items, locations and zeroed inventory rows")
	return cmd
}
