package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

type stubSource struct {
	bounds   domain.Bounds
	features map[string][]domain.Feature
	fail     string
}

func (s *stubSource) LoadBoundary(ctx context.Context) (domain.Bounds, error) {
	return s.bounds, nil
}

func (s *stubSource) LoadCategory(ctx context.Context, c domain.Category) ([]domain.Feature, error) {
	if c.Name == s.fail {
		return nil, errors.New("broken file")
	}
	return s.features[c.Name], nil
}

type memRepo struct {
	mu         sync.Mutex
	categories map[string][]domain.Feature
	boundaries map[string]domain.Bounds
}

func newMemRepo() *memRepo {
	return &memRepo{categories: map[string][]domain.Feature{}, boundaries: map[string]domain.Bounds{}}
}

func (r *memRepo) ReplaceCategory(ctx context.Context, c domain.Category, features []domain.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.Name] = features
	return nil
}

func (r *memRepo) ListByCategory(ctx context.Context, category string) ([]domain.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.categories[category], nil
}

func (r *memRepo) SaveBoundary(ctx context.Context, name string, b domain.Bounds) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boundaries[name] = b
	return nil
}

func (r *memRepo) GetBoundary(ctx context.Context, name string) (domain.Bounds, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boundaries[name]
	if !ok {
		return domain.Bounds{}, domain.ErrNotFound
	}
	return b, nil
}

func TestSelectCategories(t *testing.T) {
	all, err := selectCategories(domain.DefaultCategories, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(domain.DefaultCategories))

	some, err := selectCategories(domain.DefaultCategories, []string{"police stations", "Schools"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "Police Stations", some[0].Name)
	assert.Equal(t, "Schools", some[1].Name)

	_, err = selectCategories(domain.DefaultCategories, []string{"Parks"})
	assert.Error(t, err)
}

func TestRun_ImportsBoundaryAndCategories(t *testing.T) {
	bounds := domain.Bounds{MinLat: 10.9, MinLon: 76.8, MaxLat: 11.2, MaxLon: 77.1}
	src := &stubSource{
		bounds: bounds,
		features: map[string][]domain.Feature{
			"Hospitals": {{ID: "hospital:0", Category: "Hospitals"}},
		},
	}
	repo := newMemRepo()
	cats := domain.DefaultCategories[:2]

	require.NoError(t, run(context.Background(), src, repo, "Coimbatore.geojson", cats, 2))

	assert.Equal(t, bounds, repo.boundaries["Coimbatore"])
	assert.Len(t, repo.categories["Hospitals"], 1)
	_, ok := repo.categories["Schools"]
	assert.True(t, ok, "empty categories are still replaced")
}

func TestRun_StopsOnLoadError(t *testing.T) {
	src := &stubSource{fail: "Schools"}
	repo := newMemRepo()

	err := run(context.Background(), src, repo, "Coimbatore.geojson", domain.DefaultCategories[:2], 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Schools")
}
