package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/cart"
)

func newCartsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carts",
		Short: "Maintain abandoned carts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "expire",
		Short: "Delete unrecovered carts past their expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := cart.NewModule(db, a.cfg.Cart, a.logger).UseCase().Expire(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d carts\n", n)
			return nil
		},
	})
	return cmd
}
