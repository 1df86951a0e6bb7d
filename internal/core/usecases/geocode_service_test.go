package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/core/usecases"
)

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestGeocodeService_CachesAnswers(t *testing.T) {
	geo := &mockGeocoder{
		searchFn: func(ctx context.Context, query string, bounds domain.Bounds, opts ports.GeocodeOptions) ([]domain.Place, error) {
			return []domain.Place{gandhipuram}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewGeocodeService(geo, cache, 120)
	opts := ports.GeocodeOptions{Limit: 1}

	first, err := svc.Search(context.Background(), "Gandhipuram", cityBounds, opts)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), " gandhipuram ", cityBounds, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, geo.Queries(), 1)
	require.Len(t, cache.ttls, 1)
	for key, ttl := range cache.ttls {
		assert.Equal(t, "geocode:gandhipuram:76.8,11.2,77.1,10.9:1:false", key)
		assert.Equal(t, 120, ttl)
	}

	// Different options are a different lookup.
	_, err = svc.Search(context.Background(), "gandhipuram", cityBounds, ports.GeocodeOptions{Limit: 5, AddressDetails: true})
	require.NoError(t, err)
	assert.Len(t, geo.Queries(), 2)
}

func TestGeocodeService_ErrorsAreNotCached(t *testing.T) {
	geo := &mockGeocoder{
		searchFn: func(ctx context.Context, query string, bounds domain.Bounds, opts ports.GeocodeOptions) ([]domain.Place, error) {
			return nil, domain.ErrNetworkFailure
		},
	}
	cache := newMockCache()
	svc := usecases.NewGeocodeService(geo, cache, 0)

	_, err := svc.Search(context.Background(), "temple", cityBounds, ports.GeocodeOptions{Limit: 1})
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.Empty(t, cache.data)
}

func TestGeocodeService_WithoutCache(t *testing.T) {
	geo := &mockGeocoder{}
	svc := usecases.NewGeocodeService(geo, nil, 60)

	places, err := svc.Search(context.Background(), "temple", cityBounds, ports.GeocodeOptions{Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, places)

	_, err = svc.Search(context.Background(), "temple", cityBounds, ports.GeocodeOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, geo.Queries(), 2)

	_, err = svc.Search(context.Background(), "  ", cityBounds, ports.GeocodeOptions{})
	assert.Error(t, err)
}
