package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookblog/bookblog-server/internal/domain"
	"github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/service"
)

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	cmd.AddCommand(
		c.usersListCmd(),
		c.usersCreateCmd(),
		c.usersResetPasswordCmd(),
		c.usersDeleteCmd(),
	)
	return cmd
}

// withAuth runs fn against the account service.
func (c *cli) withAuth(fn func(*service.AuthService) error) error {
	return c.run(func(i do.Injector) error {
		authService, err := do.Invoke[*service.AuthService](i)
		if err != nil {
			return err
		}
		return fn(authService)
	})
}

func (c *cli) usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withAuth(func(authService *service.AuthService) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tCREATED")
				for _, u := range authService.ListUsers(cmd.Context()) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.CreatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
}

func (c *cli) usersCreateCmd() *cobra.Command {
	var (
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAuth(func(authService *service.AuthService) error {
				u, err := authService.CreateUser(cmd.Context(), args[0], password, domain.Role(role))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with id %s\n", u.Username, u.Role, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for the new account")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "Role: user or admin")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) usersResetPasswordCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Replace an account's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAuth(func(authService *service.AuthService) error {
				u, err := authService.GetUserByUsername(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := authService.ResetPassword(cmd.Context(), u.ID, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password reset for %s\n", u.Username)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "New password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account",
		Long:  "Delete an account. The last administrator cannot be removed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAuth(func(authService *service.AuthService) error {
				ctx := cmd.Context()
				u, err := authService.GetUserByUsername(ctx, args[0])
				if err != nil {
					return err
				}
				// The operator acts as a synthetic admin that is never the target.
				operator := &domain.Identity{ID: "cli", Username: "cli", Role: domain.RoleAdmin}
				if err := authService.DeleteUserAs(ctx, operator, u.ID); err != nil {
					if errors.Is(err, errors.ErrForbidden) {
						return fmt.Errorf("cannot delete %s: %w", u.Username, err)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", u.Username)
				return nil
			})
		},
	}
}
