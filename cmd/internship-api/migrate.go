package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/internship-api/internal/app"
	"github.com/noah-isme/internship-api/pkg/database"
)

func newMigrateCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
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

			return runMigrations(container, args[0], steps)
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to roll back; 0 rolls back all")
	return cmd
}

func runMigrations(container *app.Container, direction string, steps int) error {
	migrator, err := database.NewMigrator(container.DB, container.Config.Database.Name)
	if err != nil {
		return err
	}

	switch direction {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down(steps)
	case "version":
		version, dirty, verr := migrator.Version()
		if verr != nil {
			return verr
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}
	if err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	container.Logger.Sugar().Infow("migrations applied", "direction", direction, "version", version, "dirty", dirty)
	return nil
}
