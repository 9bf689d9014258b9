package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "airdrop/internal/jwt_token"
)

func newOperatorTokenCommand(opts *Options) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "operator-token",
		Short: "Mint a bearer token for the /admin routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := opts.Getenv("OPERATOR_JWT_KEY")
			if key == "" {
				return errors.New("OPERATOR_JWT_KEY must be set")
			}
			signed, err := jwttoken.NewJWTService(key).GenerateOperatorToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "operator identity recorded in admin access logs")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
