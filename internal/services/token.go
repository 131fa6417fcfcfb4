package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrRefreshTokenInvalid = errors.New("refresh token is invalid or expired")

// TokenService persists hashed refresh tokens. A token is single-use: Rotate
// swaps it for its successor atomically.
type TokenService struct {
	db *database.DB
}

func NewTokenService(db *database.DB) *TokenService {
	return &TokenService{db: db}
}

func (s *TokenService) Store(ctx context.Context, identityID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (identity_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, identityID, tokenHash, expiresAt)
	return err
}

func (s *TokenService) Validate(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	var identityID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT identity_id FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
	`, tokenHash).Scan(&identityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrRefreshTokenInvalid
	}
	return identityID, err
}

// Rotate consumes oldHash and stores newHash for the same identity.
func (s *TokenService) Rotate(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (uuid.UUID, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var identityID uuid.UUID
	err = tx.QueryRow(ctx, `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING identity_id
	`, oldHash).Scan(&identityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrRefreshTokenInvalid
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (identity_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, identityID, newHash, expiresAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return identityID, nil
}

func (s *TokenService) Revoke(ctx context.Context, tokenHash string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

func (s *TokenService) RevokeAll(ctx context.Context, identityID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE identity_id = $1`, identityID)
	return err
}

func (s *TokenService) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
