package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/oauth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
)

const identityColumns = `id, email, password_hash, provider, provider_id, email_confirmed_at, last_sign_in_at, created_at, updated_at`

// IdentityService is the provider's user directory.
type IdentityService struct {
	db   *database.DB
	cost int
}

func NewIdentityService(db *database.DB) *IdentityService {
	return &IdentityService{db: db, cost: bcrypt.DefaultCost}
}

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var i models.Identity
	err := row.Scan(
		&i.ID, &i.Email, &i.PasswordHash, &i.Provider, &i.ProviderID,
		&i.EmailConfirmedAt, &i.LastSignInAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// CreateWithPassword registers an email identity. When confirmed is false the
// identity cannot sign in until ConfirmEmail runs.
func (s *IdentityService) CreateWithPassword(ctx context.Context, email, password string, confirmed bool) (*models.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity, err := scanIdentity(s.db.Pool.QueryRow(ctx, `
		INSERT INTO identities (email, password_hash, provider, email_confirmed_at)
		VALUES ($1, $2, $3, CASE WHEN $4::boolean THEN NOW() END)
		RETURNING `+identityColumns,
		email, string(hash), models.ProviderEmail, confirmed))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}
	return identity, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	identity, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrIdentityNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if identity.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !identity.Confirmed() {
		return nil, ErrEmailNotConfirmed
	}
	return identity, nil
}

func (s *IdentityService) GetByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return scanIdentity(s.db.Pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE id = $1`, id))
}

func (s *IdentityService) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return scanIdentity(s.db.Pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE email = $1`, email))
}

// FindOrCreateFromOAuth returns the identity linked to the external account.
// An existing email identity with the same address is linked rather than duplicated.
func (s *IdentityService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.Identity, error) {
	identity, err := scanIdentity(s.db.Pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE provider = $1 AND provider_id = $2`,
		info.Provider, info.ID))
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, ErrIdentityNotFound) {
		return nil, err
	}

	identity, err = scanIdentity(s.db.Pool.QueryRow(ctx, `
		UPDATE identities
		SET provider = $1, provider_id = $2, email_confirmed_at = COALESCE(email_confirmed_at, NOW()), updated_at = NOW()
		WHERE email = $3
		RETURNING `+identityColumns,
		info.Provider, info.ID, info.Email))
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, ErrIdentityNotFound) {
		return nil, fmt.Errorf("failed to link identity: %w", err)
	}

	identity, err = scanIdentity(s.db.Pool.QueryRow(ctx, `
		INSERT INTO identities (email, provider, provider_id, email_confirmed_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING `+identityColumns,
		info.Email, info.Provider, info.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}
	return identity, nil
}

func (s *IdentityService) ConfirmEmail(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return scanIdentity(s.db.Pool.QueryRow(ctx, `
		UPDATE identities
		SET email_confirmed_at = COALESCE(email_confirmed_at, NOW()), updated_at = NOW()
		WHERE id = $1
		RETURNING `+identityColumns, id))
}

func (s *IdentityService) TouchLastSignIn(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `UPDATE identities SET last_sign_in_at = NOW() WHERE id = $1`, id)
	return err
}

func (s *IdentityService) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE identities SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`, string(hash), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
