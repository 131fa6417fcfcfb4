package services

import (
	"context"
	"errors"

	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/dimitrije/portfolio-api/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageService struct {
	db *database.DB
}

func NewMessageService(db *database.DB) *MessageService {
	return &MessageService{db: db}
}

func (s *MessageService) Create(ctx context.Context, name, email, message string) (*models.ContactMessage, error) {
	var m models.ContactMessage
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, message)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, message, created_at
	`, name, email, message).Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MessageService) List(ctx context.Context) ([]models.ContactMessage, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, email, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *MessageService) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (s *MessageService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&n)
	return n, err
}
