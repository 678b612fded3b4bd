package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parliyanto/Cash-Tracker/internal/auth"
	"github.com/parliyanto/Cash-Tracker/internal/config"
	"github.com/parliyanto/Cash-Tracker/internal/storage"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCommand())
	cmd.AddCommand(newUserPasswdCommand())
	return cmd
}

func newUserCreateCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := openAuthService()
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := svc.CreateUser(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("creating user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	_ = cmd.MarkFlagRequired("email")
	cmd.Flags().StringVar(&password, "password", "", "account password, at least 8 characters (required)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newUserPasswdCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Reset a user's password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := openAuthService()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.SetPassword(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("setting password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	_ = cmd.MarkFlagRequired("email")
	cmd.Flags().StringVar(&password, "password", "", "new password, at least 8 characters (required)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// openAuthService wires the auth service against the configured database.
// Session settings are irrelevant here, so only the database path is read
// from the environment.
func openAuthService() (*auth.Service, func(), error) {
	cfg := config.Load()
	db, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database %s: %w", cfg.SQLiteDBPath, err)
	}
	svc := auth.NewService(storage.NewUserRepository(db), nil)
	return svc, func() { _ = db.Close() }, nil
}
