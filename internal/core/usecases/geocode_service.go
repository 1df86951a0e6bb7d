package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/pkg/metrics"
)

// GeocodeService puts a read-through cache in front of a geocoder.
type GeocodeService struct {
	upstream ports.Geocoder
	cache    ports.CacheService
	ttl      int
}

// NewGeocodeService creates a GeocodeService. cache may be nil.
func NewGeocodeService(upstream ports.Geocoder, cache ports.CacheService, ttlSeconds int) *GeocodeService {
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	return &GeocodeService{upstream: upstream, cache: cache, ttl: ttlSeconds}
}

// Search returns places matching query inside bounds.
func (s *GeocodeService) Search(ctx context.Context, query string, bounds domain.Bounds, opts ports.GeocodeOptions) ([]domain.Place, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("geocode query must not be empty")
	}

	cacheKey := fmt.Sprintf("geocode:%s:%s:%d:%t",
		strings.ToLower(strings.TrimSpace(query)), bounds.Viewbox(), opts.Limit, opts.AddressDetails)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var places []domain.Place
			if err := json.Unmarshal(data, &places); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return places, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	places, err := s.upstream.Search(ctx, query, bounds, opts)
	if err != nil {
		return nil, err
	}

	// Empty answers are cached too; the box never changes at runtime.
	if s.cache != nil {
		if data, err := json.Marshal(places); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}

	return places, nil
}
