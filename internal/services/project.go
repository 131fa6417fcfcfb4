package services

import (
	"context"
	"errors"

	"github.com/dimitrije/portfolio-api/internal/database"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/jackc/pgx/v5"
)

var ErrProjectNotFound = errors.New("project not found")

const projectColumns = `id, title, description, category, year, image, tech_stack, github_url, live_url, created_at, updated_at`

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Category, &p.Year, &p.Image,
		&p.TechStack, &p.GitHubURL, &p.LiveURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns projects newest first. An empty category means all of them.
func (s *ProjectService) List(ctx context.Context, category string) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE $1 = '' OR category = $1
		ORDER BY created_at DESC, id DESC
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	return scanProject(s.db.Pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

func (s *ProjectService) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	return scanProject(s.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (title, description, category, year, image, tech_stack, github_url, live_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+projectColumns,
		p.Title, p.Description, p.Category, p.Year, p.Image, techStack(p.TechStack), p.GitHubURL, p.LiveURL))
}

func (s *ProjectService) Update(ctx context.Context, id int64, p *models.Project) (*models.Project, error) {
	return scanProject(s.db.Pool.QueryRow(ctx, `
		UPDATE projects
		SET title = $1, description = $2, category = $3, year = $4, image = $5,
			tech_stack = $6, github_url = $7, live_url = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING `+projectColumns,
		p.Title, p.Description, p.Category, p.Year, p.Image, techStack(p.TechStack), p.GitHubURL, p.LiveURL, id))
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// ReplaceAll swaps the whole catalogue in one transaction.
func (s *ProjectService) ReplaceAll(ctx context.Context, projects []models.Project) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM projects`); err != nil {
		return err
	}
	for _, p := range projects {
		_, err := tx.Exec(ctx, `
			INSERT INTO projects (title, description, category, year, image, tech_stack, github_url, live_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.Title, p.Description, p.Category, p.Year, p.Image, techStack(p.TechStack), p.GitHubURL, p.LiveURL)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *ProjectService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n)
	return n, err
}

// tech_stack is NOT NULL
func techStack(stack []string) []string {
	if stack == nil {
		return []string{}
	}
	return stack
}
