package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joestump/shelf/internal/config"
	"github.com/joestump/shelf/internal/db"
	"github.com/joestump/shelf/internal/store"
)

// newGrantRoleCmd adds a role to an existing account. It is how the first
// admin is created, since signup only ever grants the user role.
func newGrantRoleCmd() *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "grant-role",
		Short: "Grant a role to a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" || role == "" {
				return errors.New("--email and --role are required")
			}

			driver, dsn, err := config.LoadDB()
			if err != nil {
				return err
			}
			database, err := db.New(driver, dsn)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			users := store.NewUserStore(database)
			u, err := users.GetByEmail(cmd.Context(), email)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no user with email %q", email)
			}
			if err != nil {
				return err
			}
			if err := users.AddRole(cmd.Context(), u.ID, role); err != nil {
				return fmt.Errorf("grant %q: %w", role, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %s to %s\n", role, email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the account")
	cmd.Flags().StringVar(&role, "role", store.RoleAdmin, "role to grant")
	return cmd
}
