package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"giftstore/internal/config"
	"giftstore/internal/infra/db"
	httpinfra "giftstore/internal/infra/http"
	"giftstore/internal/logging"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger := logging.New(cfg.LogLevel)
			store, err := db.NewStore(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()
			if migrate && store.Enabled() {
				if _, err := db.Migrate(cmd.Context(), store.DB); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return httpinfra.NewServer(cfg, store, logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}
