package ports

import (
	"context"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

// AssetSource loads the boundary polygon and the per-category datasets.
type AssetSource interface {
	// LoadBoundary returns the bounding rectangle of the city boundary.
	LoadBoundary(ctx context.Context) (domain.Bounds, error)
	// LoadCategory returns every feature of one category, in dataset order.
	LoadCategory(ctx context.Context, category domain.Category) ([]domain.Feature, error)
}

// AmenityRepository persists amenity features for the postgres asset source.
type AmenityRepository interface {
	ReplaceCategory(ctx context.Context, category domain.Category, features []domain.Feature) error
	ListByCategory(ctx context.Context, category string) ([]domain.Feature, error)
	SaveBoundary(ctx context.Context, name string, bounds domain.Bounds) error
	GetBoundary(ctx context.Context, name string) (domain.Bounds, error)
}
