package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrProfileNotFound is the single-row lookup's "no rows" outcome.
var ErrProfileNotFound = errors.New("profile not found")

const profileColumns = `id, email, role, first_name, last_name, created_at, updated_at`

type ProfileService struct {
	db *database.DB
}

func NewProfileService(db *database.DB) *ProfileService {
	return &ProfileService{db: db}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.Role, &p.FirstName, &p.LastName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetRole expects exactly one row. A missing row is ErrProfileNotFound.
func (s *ProfileService) GetRole(ctx context.Context, id uuid.UUID) (string, error) {
	var role string
	err := s.db.Pool.QueryRow(ctx, `SELECT role FROM profiles WHERE id = $1`, id).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProfileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch role: %w", err)
	}
	return role, nil
}

// FindByID returns nil without error when the profile does not exist.
func (s *ProfileService) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(s.db.Pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil
	}
	return p, err
}

// Create inserts a profile unless one already exists for id. It reports
// whether this call created the row.
func (s *ProfileService) Create(ctx context.Context, id uuid.UUID, email, role string) (bool, error) {
	tag, err := s.db.Pool.Exec(ctx, `
		INSERT INTO profiles (id, email, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, id, email, role)
	if err != nil {
		return false, fmt.Errorf("failed to create profile: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *ProfileService) UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.Profile, error) {
	return scanProfile(s.db.Pool.QueryRow(ctx, `
		UPDATE profiles
		SET first_name = COALESCE($1, first_name), last_name = COALESCE($2, last_name), updated_at = NOW()
		WHERE id = $3
		RETURNING `+profileColumns, firstName, lastName, id))
}

// SetRoleByEmail is used by admin tooling to promote or demote an account.
func (s *ProfileService) SetRoleByEmail(ctx context.Context, email, role string) (*models.Profile, error) {
	if role != models.RoleAdmin && role != models.RoleGuest {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return scanProfile(s.db.Pool.QueryRow(ctx, `
		UPDATE profiles SET role = $1, updated_at = NOW()
		WHERE email = $2
		RETURNING `+profileColumns, role, email))
}

func (s *ProfileService) ListAdmins(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE role = $1
		ORDER BY created_at
	`, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
