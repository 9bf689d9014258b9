package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"airdrop/internal/platform/config"
	"airdrop/internal/platform/database"
	"airdrop/internal/store"
)

func newMigrateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema for the configured DB_DRIVER",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.LoadDatabase()
			if err != nil {
				return err
			}
			if cfg.Driver == config.DriverMemory {
				return fmt.Errorf("nothing to migrate for driver %q", cfg.Driver)
			}

			ctx := cmd.Context()
			db, dialect, err := database.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Migrate(ctx, db, dialect); err != nil {
				return err
			}
			version, err := store.SchemaVersion(ctx, db, dialect)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s, version %d)\n", dialect, version)
			return nil
		},
	}
}
