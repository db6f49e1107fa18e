package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"giftstore/internal/config"
	"giftstore/internal/domain"
	"giftstore/internal/infra/auth/password"
	"giftstore/internal/infra/db"
	"giftstore/internal/logging"
	"giftstore/internal/usecase"

	"github.com/spf13/cobra"
)

func newCreateUserCmd() *cobra.Command {
	var email, role string
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:     "create-user <username>",
		Short:   "Create a user with the given role.",
		Example: "echo secret | giftctl create-user admin --email admin@example.com --role ADMIN --password-stdin",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return errors.New("--password-stdin is required")
			}
			pw, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg := config.FromEnv()
			if cfg.PostgresDSN == "" {
				return errors.New("POSTGRES_DSN is required")
			}
			gdb, err := db.Open(cfg.PostgresDSN)
			if err != nil {
				return err
			}
			store := db.NewStoreFromDB(gdb)
			defer store.Close()

			svc := usecase.NewAuthService(usecase.AuthServiceDeps{
				Users:  store.Users,
				Roles:  store.Roles,
				Tokens: store.Tokens,
				Hasher: password.NewBcrypt(cfg.BcryptCost),
				Logger: logging.New(cfg.LogLevel),
			})
			user, err := svc.CreateUser(cmd.Context(), usecase.CreateUserRequest{
				Username: args[0],
				Email:    email,
				Password: pw,
				Role:     domain.RoleType(strings.ToUpper(role)),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n", user.Username, user.ID, user.Role.Permission)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "GUEST, USER or ADMIN")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if cost == 0 {
				cost = config.FromEnv().BcryptCost
			}
			hash, err := password.NewBcrypt(cost).Hash(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is empty")
	}
	return line, nil
}
