package main

import (
	"fmt"
	"strings"

	"giftstore/internal/config"
	"giftstore/internal/domain"
	"giftstore/internal/infra/auth/policy"

	"github.com/spf13/cobra"
)

func newPolicyCmd() *cobra.Command {
	var file string
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective access policy.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPolicy(file)
			if err != nil {
				return err
			}
			if asYAML {
				out, err := policy.Marshal(p)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			for i, r := range p.Rules() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i, r)
			}
			fmt.Fprintf(cmd.OutOrStdout(), " -  %-8s %-40s %s\n", "*", "(no match)", policy.AccessAuthenticated)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "policy file (defaults to ACCESS_POLICY_FILE, then the built-in table)")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML")

	cmd.AddCommand(newPolicyCheckCmd(&file))
	return cmd
}

func newPolicyCheckCmd(file *string) *cobra.Command {
	var authorities []string
	cmd := &cobra.Command{
		Use:     "check <METHOD> <path>",
		Short:   "Show which rule governs a request and the outcome.",
		Example: "giftctl policy check POST /users/5 --authority ROLE_USER",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPolicy(*file)
			if err != nil {
				return err
			}
			method := strings.ToUpper(args[0])
			sc := domain.Anonymous(domain.FailureNoCredentials)
			if len(authorities) > 0 {
				sc = domain.Authenticated(domain.User{Username: "cli"}, authorities, domain.Token{})
			}
			d := p.Decide(method, args[1], sc)
			rule := "default"
			if d.Rule != policy.NoRule {
				rule = fmt.Sprintf("%d", d.Rule)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rule=%s outcome=%s\n", rule, d.Outcome)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&authorities, "authority", nil, "authorities held by the caller; omit for an anonymous caller")
	return cmd
}

func loadPolicy(file string) (*policy.Policy, error) {
	if file == "" {
		file = config.FromEnv().AccessPolicyFile
	}
	return policy.Load(file)
}
