package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/usecases"
)

// --- Mock AssetSource ---

type mockAssetSource struct {
	boundary    domain.Bounds
	boundaryErr error
	features    map[string][]domain.Feature
	errs        map[string]error
}

func (m *mockAssetSource) LoadBoundary(ctx context.Context) (domain.Bounds, error) {
	return m.boundary, m.boundaryErr
}

func (m *mockAssetSource) LoadCategory(ctx context.Context, category domain.Category) ([]domain.Feature, error) {
	if err := m.errs[category.Name]; err != nil {
		return nil, err
	}
	return m.features[category.Name], nil
}

func TestLoaderService_Run(t *testing.T) {
	f := newFixture(t, false)
	pub := &mockPublisher{}
	source := &mockAssetSource{
		boundary: cityBounds,
		features: map[string][]domain.Feature{
			"Hospitals": hospitalFeatures(),
			"Schools":   schoolFeatures(),
		},
	}

	err := usecases.NewLoaderService(source, f.data, f.registry, pub, 2, "data/icons/").Run(context.Background())
	require.NoError(t, err)

	assert.True(t, f.data.Ready())
	assert.Equal(t, 3, f.data.Count("Hospitals"))
	assert.Equal(t, 2, f.data.Count("Schools"))
	assert.Equal(t, 0, f.data.Count("Police Stations"))

	b, ok := f.data.Boundary()
	require.True(t, ok)
	assert.Equal(t, cityBounds, b)

	layer, ok := f.registry.Overlay("Hospitals")
	require.True(t, ok)
	assert.Equal(t, 3, layer.Count)
	assert.Equal(t, "data/icons/hospital.png", layer.IconURL)

	assert.ElementsMatch(t, []string{"Hospitals", "Schools", "Police Stations"}, pub.assets)
	assert.Empty(t, pub.failed)
}

func TestLoaderService_FailedCategoryDegradesToEmpty(t *testing.T) {
	f := newFixture(t, false)
	pub := &mockPublisher{}
	schoolErr := errors.New("unexpected EOF")
	source := &mockAssetSource{
		boundary: cityBounds,
		features: map[string][]domain.Feature{"Hospitals": hospitalFeatures()},
		errs:     map[string]error{"Schools": schoolErr},
	}

	err := usecases.NewLoaderService(source, f.data, f.registry, pub, 4, "").Run(context.Background())
	require.ErrorIs(t, err, schoolErr)
	assert.Contains(t, err.Error(), "category Schools")

	assert.True(t, f.data.Ready(), "a failed load still counts as completed")
	assert.Equal(t, 0, f.data.Count("Schools"))
	assert.ErrorIs(t, f.data.Failed("Schools"), schoolErr)

	layer, ok := f.registry.Overlay("Schools")
	require.True(t, ok)
	assert.Equal(t, 0, layer.Count)
	assert.Equal(t, []string{"Schools"}, pub.failed)

	action, err := usecases.NewSearchResolver(f.data).Resolve("kmch")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionHighlight, action.Kind)
}

func TestLoaderService_BoundaryFailure(t *testing.T) {
	f := newFixture(t, false)
	source := &mockAssetSource{boundaryErr: errors.New("404 Not Found")}

	err := usecases.NewLoaderService(source, f.data, f.registry, nil, 0, "").Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boundary")

	_, ok := f.data.Boundary()
	assert.False(t, ok)
	assert.True(t, f.data.Ready())

	_, err = usecases.NewSearchResolver(f.data).Resolve("temple")
	assert.ErrorIs(t, err, domain.ErrBoundaryNotReady)
}

func TestDataStore_CompleteOnce(t *testing.T) {
	store := usecases.NewDataStore([]domain.Category{hospitals})
	var calls int
	store.OnCategoryLoaded(func(domain.Category) { calls++ })

	store.Complete("Hospitals", hospitalFeatures(), nil)
	store.Complete("Hospitals", nil, errors.New("late failure"))
	store.Complete("Libraries", nil, nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, store.Completed())
	assert.Equal(t, 3, store.Count("Hospitals"))
	assert.NoError(t, store.Failed("Hospitals"))

	store.SetBoundary(cityBounds)
	store.SetBoundary(domain.Bounds{})
	b, _ := store.Boundary()
	assert.Equal(t, cityBounds, b)
}
