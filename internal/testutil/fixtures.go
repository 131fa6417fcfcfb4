package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/dimitrije/portfolio-api/internal/models"
)

// Fixtures inserts rows straight into the database.
type Fixtures struct {
	db      *database.DB
	counter int
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateIdentity inserts a confirmed email identity without a password.
func (f *Fixtures) CreateIdentity(t *testing.T, opts ...IdentityOption) *models.Identity {
	t.Helper()
	f.counter++

	identity := &models.Identity{
		Email:    fmt.Sprintf("user%d@example.com", f.counter),
		Provider: models.ProviderEmail,
	}
	for _, opt := range opts {
		opt(identity)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO identities (email, provider, provider_id, email_confirmed_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, email_confirmed_at, created_at, updated_at
	`, identity.Email, identity.Provider, identity.ProviderID).Scan(
		&identity.ID, &identity.EmailConfirmedAt, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create identity: %v", err)
	}

	return identity
}

type IdentityOption func(*models.Identity)

func WithEmail(email string) IdentityOption {
	return func(i *models.Identity) {
		i.Email = email
	}
}

func WithProvider(provider, providerID string) IdentityOption {
	return func(i *models.Identity) {
		i.Provider = provider
		i.ProviderID = &providerID
	}
}

// CreateProfile inserts a profile for identity with the given role.
func (f *Fixtures) CreateProfile(t *testing.T, identity *models.Identity, role string) *models.Profile {
	t.Helper()

	profile := &models.Profile{ID: identity.ID, Email: identity.Email, Role: role}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO profiles (id, email, role)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, profile.ID, profile.Email, profile.Role).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	return profile
}

// CreateProject inserts a project with a generated title.
func (f *Fixtures) CreateProject(t *testing.T, category string) *models.Project {
	t.Helper()
	f.counter++

	project := &models.Project{
		Title:     fmt.Sprintf("Project %d", f.counter),
		Category:  category,
		Year:      "2024",
		TechStack: []string{"Go"},
	}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO projects (title, category, year, tech_stack)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, project.Title, project.Category, project.Year, project.TechStack).Scan(
		&project.ID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	return project
}
