package usecases_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/civicmap/internal/adapters/scene"
	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/core/usecases"
)

// --- Mock Geocoder ---

type mockGeocoder struct {
	mu       sync.Mutex
	searchFn func(ctx context.Context, query string, bounds domain.Bounds, opts ports.GeocodeOptions) ([]domain.Place, error)
	queries  []string
	bounds   []domain.Bounds
}

func (m *mockGeocoder) Search(ctx context.Context, query string, bounds domain.Bounds, opts ports.GeocodeOptions) ([]domain.Place, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.bounds = append(m.bounds, bounds)
	fn := m.searchFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, query, bounds, opts)
	}
	return nil, nil
}

func (m *mockGeocoder) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// --- Fixtures ---

var (
	hospitals = domain.Category{Name: "Hospitals", SourceFile: "hospital.geojson"}
	schools   = domain.Category{Name: "Schools", SourceFile: "school.geojson"}
	police    = domain.Category{Name: "Police Stations", SourceFile: "police.geojson"}

	cityBounds  = domain.Bounds{MinLat: 10.9, MinLon: 76.8, MaxLat: 11.2, MaxLon: 77.1}
	gandhipuram = domain.Place{DisplayName: "Gandhipuram, Coimbatore", Location: domain.GeoPoint{Lat: 11.0183, Lon: 76.9725}}
)

func feature(cat, id, name string, lat, lon float64) domain.Feature {
	return domain.Feature{
		ID:         id,
		Category:   cat,
		Location:   domain.GeoPoint{Lat: lat, Lon: lon},
		Attributes: domain.Attributes{{Key: "name", Value: name}},
	}
}

func hospitalFeatures() []domain.Feature {
	return []domain.Feature{
		feature("Hospitals", "hospital:0", "Government Hospital", 11.0, 76.96),
		feature("Hospitals", "hospital:1", "KMCH", 11.04, 77.04),
		feature("Hospitals", "hospital:2", "PSG Hospitals", 11.02, 77.0),
	}
}

func schoolFeatures() []domain.Feature {
	return []domain.Feature{
		feature("Schools", "school:0", "St. Joseph School", 11.01, 76.95),
		feature("Schools", "school:1", "PSG", 11.03, 77.01),
	}
}

type fixture struct {
	data     *usecases.DataStore
	registry *usecases.LayerRegistry
	geocoder *mockGeocoder
	catalog  *usecases.Catalog
}

func testSettings() domain.MapSettings {
	s := domain.DefaultMapSettings()
	s.SuggestDelay = 10 * time.Millisecond
	return s
}

// newFixture builds a catalog over hospitals, schools and police. When
// loaded is set every category and the boundary are in place.
func newFixture(t *testing.T, loaded bool) *fixture {
	t.Helper()
	data := usecases.NewDataStore([]domain.Category{hospitals, schools, police})
	registry := usecases.NewLayerRegistry(domain.DefaultBaseLayers)
	geocoder := &mockGeocoder{}
	f := &fixture{
		data:     data,
		registry: registry,
		geocoder: geocoder,
		catalog:  usecases.NewCatalog(data, registry, geocoder, testSettings()),
	}
	if loaded {
		f.complete(hospitals, hospitalFeatures())
		f.complete(schools, schoolFeatures())
		f.complete(police, nil)
		data.SetBoundary(cityBounds)
	}
	return f
}

func (f *fixture) complete(cat domain.Category, features []domain.Feature) {
	f.registry.Register(cat, len(features), "data/icons/")
	f.data.Complete(cat.Name, features, nil)
}

func (f *fixture) session(t *testing.T, mobile bool) (*usecases.Session, *scene.Scene) {
	t.Helper()
	sc := scene.New(f.data.Categories(), "data/icons/", scene.Options{Mobile: mobile, ChartTarget: true})
	s := usecases.NewSession("session-1", mobile, f.catalog, sc, nil)
	t.Cleanup(s.Close)
	return s, sc
}

func hasLayer(st domain.SceneState, id string) bool {
	for _, l := range st.Layers {
		if l == id {
			return true
		}
	}
	return false
}

func checked(st domain.SceneState) []string {
	var out []string
	for _, e := range st.Legend {
		if e.Checked {
			out = append(out, e.Category)
		}
	}
	return out
}
