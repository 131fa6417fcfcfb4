// Package seed loads the project catalogue that ships with the binary.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dimitrije/portfolio-api/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed projects.yaml
var defaultProjects []byte

// ErrNotEmpty is returned by Apply when projects exist and force is off.
var ErrNotEmpty = errors.New("projects table is not empty")

type file struct {
	Projects []models.Project `yaml:"projects"`
}

type ProjectStore interface {
	Count(ctx context.Context) (int64, error)
	ReplaceAll(ctx context.Context, projects []models.Project) error
}

// Default returns the embedded catalogue.
func Default() ([]models.Project, error) {
	return Parse(defaultProjects)
}

func Parse(data []byte) ([]models.Project, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	for i := range f.Projects {
		p := &f.Projects[i]
		switch {
		case p.Title == "":
			return nil, fmt.Errorf("project %d: title is required", i+1)
		case p.Category == "":
			return nil, fmt.Errorf("project %d: category is required", i+1)
		case p.Year == "":
			return nil, fmt.Errorf("project %d: year is required", i+1)
		}
		if p.TechStack == nil {
			p.TechStack = []string{}
		}
	}
	return f.Projects, nil
}

// Apply replaces the stored catalogue with projects. Without force it
// refuses to touch a non-empty table.
func Apply(ctx context.Context, store ProjectStore, projects []models.Project, force bool) error {
	if !force {
		n, err := store.Count(ctx)
		if err != nil {
			return fmt.Errorf("count projects: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w (%d rows)", ErrNotEmpty, n)
		}
	}

	if err := store.ReplaceAll(ctx, projects); err != nil {
		return fmt.Errorf("replace projects: %w", err)
	}
	slog.Info("seeded projects", "count", len(projects))
	return nil
}
