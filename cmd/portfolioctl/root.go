package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/portfolio-api/internal/config"
	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/seed"
	"github.com/dimitrije/portfolio-api/internal/services"
	"github.com/spf13/cobra"
)

type profileStore interface {
	SetRoleByEmail(ctx context.Context, email, role string) (*models.Profile, error)
	ListAdmins(ctx context.Context) ([]models.Profile, error)
}

type stores struct {
	profiles profileStore
	projects seed.ProjectStore
	close    func()
}

type opener func(ctx context.Context) (*stores, error)

// openStores connects with the same DATABASE_URL the server uses and
// applies pending migrations.
func openStores(ctx context.Context) (*stores, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &stores{
		profiles: services.NewProfileService(db),
		projects: services.NewProjectService(db),
		close:    db.Close,
	}, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolioctl",
		Short: "Admin tooling for the portfolio API",
		Long: `portfolioctl works directly on the portfolio database.

Examples:
  # Give an existing account access to the admin pages
  portfolioctl promote ada@example.com

  # Load the bundled project catalogue into an empty database
  portfolioctl seed`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRoleCmd(open, "promote", models.RoleAdmin, "Grant the admin role to an account"),
		newRoleCmd(open, "demote", models.RoleGuest, "Return an account to the guest role"),
		newAdminsCmd(open),
		newSeedCmd(open),
	)
	return root
}

func newRoleCmd(open opener, use, role, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := open(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			email := args[0]
			profile, err := s.profiles.SetRoleByEmail(ctx, email, role)
			if errors.Is(err, services.ErrProfileNotFound) {
				return fmt.Errorf("no profile found with email %s", email)
			}
			if err != nil {
				return fmt.Errorf("update role: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", profile.Email, profile.Role)
			return nil
		},
	}
}

func newAdminsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "admins",
		Short: "List accounts with the admin role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := open(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			admins, err := s.profiles.ListAdmins(ctx)
			if err != nil {
				return fmt.Errorf("list admins: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(admins) == 0 {
				fmt.Fprintln(out, "No admins found.")
				return nil
			}
			for _, p := range admins {
				fmt.Fprintf(out, "%-36s  %-30s  %s\n", p.ID, p.Email, p.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func newSeedCmd(open opener) *cobra.Command {
	var force bool
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the project catalogue",
		Long: `Replace the projects table with the bundled catalogue, or with --file.

The command refuses to run against a table that already has projects
unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := loadCatalogue(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := open(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			if err := seed.Apply(ctx, s.projects, projects, force); err != nil {
				if errors.Is(err, seed.ErrNotEmpty) {
					return fmt.Errorf("%w, use --force to replace them", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d projects\n", len(projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace existing projects")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalogue to load instead of the bundled one")
	return cmd
}
