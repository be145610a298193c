package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/internship-api/internal/app"
	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

const demoPassword = "demo12345"

func newSeedCommand() *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default roles and permissions",
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

			ctx := cmd.Context()
			if err := container.Roles.Seed(ctx); err != nil {
				return fmt.Errorf("seed roles: %w", err)
			}
			fmt.Println("roles and permissions seeded")

			if demo {
				if err := seedDemo(ctx, container); err != nil {
					return err
				}
				fmt.Printf("demo accounts ready (password %q)\n", demoPassword)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "Also create a demo student and company")
	return cmd
}

func seedDemo(ctx context.Context, container *app.Container) error {
	student, err := demoUser(ctx, container, models.RoleStudent, "student@demo.local")
	if err != nil {
		return err
	}
	if student != nil {
		if err := container.Profiles.CreateStudentProfile(ctx, &models.StudentProfile{
			UserID:        student.ID,
			FirstName:     "Demo",
			LastName:      "Student",
			StudentNumber: "S-0001",
			Department:    "Computer Engineering",
			Faculty:       "Engineering",
		}); err != nil {
			return fmt.Errorf("create demo student profile: %w", err)
		}
	}

	company, err := demoUser(ctx, container, models.RoleCompany, "company@demo.local")
	if err != nil {
		return err
	}
	if company != nil {
		if err := container.Profiles.CreateCompanyProfile(ctx, &models.CompanyProfile{
			UserID:        company.ID,
			Name:          "Demo Company",
			ContactPerson: "Demo Contact",
		}); err != nil {
			return fmt.Errorf("create demo company profile: %w", err)
		}
	}
	return nil
}

// demoUser returns nil when the account already exists.
func demoUser(ctx context.Context, container *app.Container, roleName, email string) (*models.User, error) {
	role, err := container.Roles.EnsureRole(ctx, roleName)
	if err != nil {
		return nil, err
	}
	user, err := container.Users.CreateUser(ctx, models.CreateUserParams{
		Email:    email,
		Password: demoPassword,
		RoleID:   role.ID,
		IsActive: true,
		Status:   true,
	})
	if errors.Is(err, appErrors.ErrConflict) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", email, err)
	}
	return user, nil
}
