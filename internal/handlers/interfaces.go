package handlers

import (
	"context"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/google/uuid"
)

// ProjectServiceInterface defines the methods used by handlers from ProjectService
type ProjectServiceInterface interface {
	List(ctx context.Context, category string) ([]models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	Update(ctx context.Context, id int64, p *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// MessageServiceInterface defines the methods used by handlers from MessageService
type MessageServiceInterface interface {
	Create(ctx context.Context, name, email, message string) (*models.ContactMessage, error)
	List(ctx context.Context) ([]models.ContactMessage, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// ProfileServiceInterface defines the methods used by handlers from ProfileService
type ProfileServiceInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.Profile, error)
}
