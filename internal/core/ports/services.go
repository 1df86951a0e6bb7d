package ports

import (
	"context"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

// GeocodeOptions tunes a geocoder query.
type GeocodeOptions struct {
	Limit          int
	AddressDetails bool
}

// Geocoder resolves free text to places inside a bounding box.
type Geocoder interface {
	Search(ctx context.Context, query string, bounds domain.Bounds, opts GeocodeOptions) ([]domain.Place, error)
}

// EventPublisher publishes session and asset events to a message broker.
type EventPublisher interface {
	PublishScene(ctx context.Context, scene *domain.SceneState) error
	PublishAssetLoaded(ctx context.Context, category string, count int, failed bool) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
