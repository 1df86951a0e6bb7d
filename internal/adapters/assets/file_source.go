package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

// Dataset locations relative to the data root.
const (
	AmenitiesDir = "Amenities"
	BoundaryDir  = "AOI"
)

// FileSource reads datasets from a local data directory laid out as
// <dir>/AOI/<boundary> and <dir>/Amenities/<category file>.
type FileSource struct {
	dir          string
	boundaryFile string
}

var _ ports.AssetSource = (*FileSource)(nil)

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir, boundaryFile string) *FileSource {
	return &FileSource{dir: dir, boundaryFile: boundaryFile}
}

func (s *FileSource) LoadBoundary(ctx context.Context) (domain.Bounds, error) {
	data, err := s.read(ctx, filepath.Join(BoundaryDir, s.boundaryFile))
	if err != nil {
		return domain.Bounds{}, err
	}
	return ParseBoundary(data)
}

func (s *FileSource) LoadCategory(ctx context.Context, category domain.Category) ([]domain.Feature, error) {
	data, err := s.read(ctx, filepath.Join(AmenitiesDir, category.SourceFile))
	if err != nil {
		return nil, err
	}
	return ParseFeatures(data, category)
}

func (s *FileSource) read(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, rel))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	return data, nil
}
