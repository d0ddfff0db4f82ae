package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/auth"
)

// newTokenCmd signs bearer tokens for local testing and operator scripts.
func newTokenCmd(a *app) *cobra.Command {
	var (
		userID string
		role   string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret must be set")
			}
			r := auth.Role(role)
			if r != auth.RoleAdmin && r != auth.RoleCustomer {
				return fmt.Errorf("--role must be admin or customer")
			}

			token, err := auth.NewVerifier(a.cfg.Auth.JWTSecret, a.cfg.Auth.Issuer).
				Sign(auth.Principal{UserID: userID, Role: r, Email: email}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (sub claim)")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleCustomer), "admin or customer")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
