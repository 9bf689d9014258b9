package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"airdrop/internal/auditlog"
	"airdrop/internal/token"
)

type logLine struct {
	Action    string            `json:"action"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

func newLogsCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logs <token>",
		Short: "Print the audit entries recorded under a token as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, closeStore, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			svc, err := auditlog.New(backend, token.New())
			if err != nil {
				return err
			}
			entries, err := svc.Entries(ctx, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range entries {
				if err := enc.Encode(logLine{Action: e.Action, Payload: e.Payload, CreatedAt: e.CreatedAt}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
