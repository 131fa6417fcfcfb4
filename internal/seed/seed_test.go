package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) ReplaceAll(ctx context.Context, projects []models.Project) error {
	return m.Called(ctx, projects).Error(0)
}

func TestDefault(t *testing.T) {
	projects, err := Default()
	require.NoError(t, err)
	require.Len(t, projects, 6)

	first := projects[0]
	assert.Equal(t, "Real-time Data Pipeline for Financial Analytics", first.Title)
	assert.Equal(t, "Data Engineering", first.Category)
	assert.Equal(t, "2023", first.Year)
	assert.Equal(t, []string{"Apache Kafka", "Spark Streaming", "MongoDB", "Docker"}, first.TechStack)
	require.NotNil(t, first.Description)
	assert.Contains(t, *first.Description, "50TB+")
	assert.Nil(t, first.GitHubURL)

	categories := map[string]bool{}
	for _, p := range projects {
		categories[p.Category] = true
	}
	assert.Len(t, categories, 5)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
		want    int
	}{
		{"empty", "projects: []", "", 0},
		{"no tech stack", "projects:\n  - {title: A, category: Web, year: '2024'}", "", 1},
		{"missing year", "projects:\n  - {title: A, category: Web}", "project 1: year is required", 0},
		{"missing title", "projects:\n  - {category: Web, year: '2024'}", "project 1: title is required", 0},
		{"bad yaml", "projects: [", "parse seed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects, err := Parse([]byte(tt.data))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, projects, tt.want)
			for _, p := range projects {
				assert.NotNil(t, p.TechStack)
			}
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	projects := []models.Project{{Title: "A", Category: "Web", Year: "2024"}}

	t.Run("empty table", func(t *testing.T) {
		store := &mockStore{}
		store.On("Count", ctx).Return(int64(0), nil)
		store.On("ReplaceAll", ctx, projects).Return(nil)

		require.NoError(t, Apply(ctx, store, projects, false))
		store.AssertExpectations(t)
	})

	t.Run("refuses non-empty table", func(t *testing.T) {
		store := &mockStore{}
		store.On("Count", ctx).Return(int64(3), nil)

		err := Apply(ctx, store, projects, false)
		assert.ErrorIs(t, err, ErrNotEmpty)
		store.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
	})

	t.Run("force skips the check", func(t *testing.T) {
		store := &mockStore{}
		store.On("ReplaceAll", ctx, projects).Return(nil)

		require.NoError(t, Apply(ctx, store, projects, true))
		store.AssertNotCalled(t, "Count", mock.Anything)
	})

	t.Run("replace fails", func(t *testing.T) {
		store := &mockStore{}
		store.On("ReplaceAll", ctx, projects).Return(errors.New("tx aborted"))

		err := Apply(ctx, store, projects, true)
		assert.ErrorContains(t, err, "replace projects: tx aborted")
	})
}
