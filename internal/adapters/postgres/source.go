package postgres

import (
	"context"
	"strings"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

// AssetSource serves imported datasets from the database.
type AssetSource struct {
	repo     ports.AmenityRepository
	boundary string
}

var _ ports.AssetSource = (*AssetSource)(nil)

// NewAssetSource reads features from repo. boundaryFile names the boundary
// the importer stored, with or without its .geojson suffix.
func NewAssetSource(repo ports.AmenityRepository, boundaryFile string) *AssetSource {
	return &AssetSource{repo: repo, boundary: BoundaryName(boundaryFile)}
}

func (s *AssetSource) LoadBoundary(ctx context.Context) (domain.Bounds, error) {
	return s.repo.GetBoundary(ctx, s.boundary)
}

func (s *AssetSource) LoadCategory(ctx context.Context, category domain.Category) ([]domain.Feature, error) {
	return s.repo.ListByCategory(ctx, category.Name)
}

// BoundaryName is the key a boundary file is stored under.
func BoundaryName(file string) string {
	return strings.TrimSuffix(file, ".geojson")
}
