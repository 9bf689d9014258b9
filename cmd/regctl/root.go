package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"airdrop/internal/platform/config"
	"airdrop/internal/store"
)

// Options carries the dependencies shared by every subcommand.
type Options struct {
	LoadDatabase func() (config.Database, error)
	Getenv       func(string) string
	Out          io.Writer
}

// DefaultOptions reads configuration from the environment and writes to stdout.
func DefaultOptions() *Options {
	return &Options{
		LoadDatabase: config.DatabaseFromEnv,
		Getenv:       os.Getenv,
		Out:          os.Stdout,
	}
}

func NewRootCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "regctl",
		Short:         "Operator tool for the airdrop registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(opts.Out)

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newLogsCommand(opts))
	cmd.AddCommand(newOperatorTokenCommand(opts))
	return cmd
}

// openStore opens the configured SQL backend. The in-memory driver is
// rejected because nothing would outlive the command.
func (o *Options) openStore(ctx context.Context) (store.Backend, func() error, error) {
	cfg, err := o.LoadDatabase()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Driver == config.DriverMemory {
		return nil, nil, fmt.Errorf("regctl needs a persistent DB_DRIVER, got %q", cfg.Driver)
	}
	return store.Open(ctx, cfg)
}
