package main

import (
	"errors"
	"fmt"

	"giftstore/internal/config"
	"giftstore/internal/infra/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			if cfg.PostgresDSN == "" {
				return errors.New("POSTGRES_DSN is required")
			}
			gdb, err := db.Open(cfg.PostgresDSN)
			if err != nil {
				return err
			}
			applied, err := db.Migrate(cmd.Context(), gdb)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			return nil
		},
	}
}
