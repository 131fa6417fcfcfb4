package main

import (
	"fmt"
	"os"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/seed"
)

func loadCatalogue(path string) ([]models.Project, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return seed.Parse(data)
}
