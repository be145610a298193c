package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/internship-api/internal/app"
)

func newPermissionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Inspect and toggle permissions",
	}
	cmd.AddCommand(newPermissionListCommand())
	cmd.AddCommand(newPermissionToggleCommand("enable", true))
	cmd.AddCommand(newPermissionToggleCommand("disable", false))
	return cmd
}

func newPermissionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List permissions and their state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				perms, err := container.Roles.ListPermissions(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "CODE\tACTIVE\tDESCRIPTION")
				for _, p := range perms {
					fmt.Fprintf(w, "%s\t%t\t%s\n", p.Code, p.Active, p.Description)
				}
				return w.Flush()
			})
		},
	}
}

func newPermissionToggleCommand(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <code>",
		Short: fmt.Sprintf("Mark a permission as %sd for every role", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, container *app.Container) error {
				if err := container.Roles.SetPermissionActive(ctx, nil, args[0], active); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "permission %s %sd\n", args[0], use)
				return nil
			})
		},
	}
}

func withContainer(cmd *cobra.Command, fn func(ctx context.Context, container *app.Container) error) error {
	cfg, logr, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	container, err := app.New(cmd.Context(), cfg, logr)
	if err != nil {
		return err
	}
	defer container.Close(context.Background())
	return fn(cmd.Context(), container)
}
