package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"airdrop/internal/store"
)

func newSeedCommand(opts *Options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Provision users from a YAML file, or the development fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users := store.DefaultSeed()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open seed file: %w", err)
				}
				defer f.Close()
				if users, err = store.LoadSeed(f); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			backend, closeStore, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := store.Seed(ctx, backend, users)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d existing\n", res.Created, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file (users: [{address, amount, terms_signed, not_resident}])")
	return cmd
}
