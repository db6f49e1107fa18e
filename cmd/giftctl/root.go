package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "giftctl",
		Short: "Operate the gift certificate store security service.",
		Long: `giftctl runs and administers the storefront authentication service.

Configuration is read from the same environment variables the server uses
(POSTGRES_DSN, JWT_SECRET_KEY, ACCESS_POLICY_FILE, ...).`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCreateUserCmd(),
		newHashPasswordCmd(),
		newPolicyCmd(),
	)
	return root
}
