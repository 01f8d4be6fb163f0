package commands

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-ledger-service/internal/ledger/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/usecase"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print every location's inventory, value and profit as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			defer log.Sync()

			db, err := connectDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout)
			defer cancel()

			uc := usecase.NewLedgerUseCase(repository.NewPGRepository(db), model.DefaultTruckSizes(), log.Named("ledger"))
			snap, err := uc.GetSnapshot(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
}
