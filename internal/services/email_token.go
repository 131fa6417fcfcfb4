package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Purposes an email token can be issued for
const (
	PurposeSignup   = "signup"
	PurposeRecovery = "recovery"
)

var ErrEmailTokenInvalid = errors.New("email link is invalid or has expired")

// EmailTokenService issues the one-time links sent in confirmation and
// recovery emails. Only the hash is stored.
type EmailTokenService struct {
	db *database.DB
}

func NewEmailTokenService(db *database.DB) *EmailTokenService {
	return &EmailTokenService{db: db}
}

func (s *EmailTokenService) Issue(ctx context.Context, identityID uuid.UUID, purpose string, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(b)

	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO email_tokens (identity_id, token_hash, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
	`, identityID, HashToken(token), purpose, time.Now().Add(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to store email token: %w", err)
	}
	return token, nil
}

// Consume marks the token used and returns its identity. A token works once.
func (s *EmailTokenService) Consume(ctx context.Context, token, purpose string) (uuid.UUID, error) {
	var identityID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE email_tokens SET used_at = NOW()
		WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > NOW()
		RETURNING identity_id
	`, HashToken(token), purpose).Scan(&identityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrEmailTokenInvalid
	}
	if err != nil {
		return uuid.Nil, err
	}
	return identityID, nil
}

func (s *EmailTokenService) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM email_tokens WHERE expires_at < NOW() OR used_at IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
