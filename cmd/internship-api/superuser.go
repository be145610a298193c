package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/internship-api/internal/app"
)

func newCreateSuperuserCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an active staff superuser with the Admin role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logr, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck

			if email == "" {
				email = cfg.Bootstrap.SuperuserEmail
			}
			if password == "" {
				password = cfg.Bootstrap.SuperuserPassword
			}
			if email == "" || password == "" {
				return errors.New("email and password are required (flags or SUPERUSER_EMAIL/SUPERUSER_PASSWORD)")
			}

			container, err := app.New(cmd.Context(), cfg, logr)
			if err != nil {
				return err
			}
			defer container.Close(context.Background())

			user, err := container.Users.CreateSuperuser(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("superuser %s created (id %s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Superuser email")
	cmd.Flags().StringVar(&password, "password", "", "Superuser password")
	return cmd
}
