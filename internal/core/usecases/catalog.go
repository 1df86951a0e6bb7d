package usecases

import (
	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

// Catalog is the state shared by every session: loaded data, layer handles,
// the resolver and the geocoder.
type Catalog struct {
	Store    *DataStore
	Registry *LayerRegistry
	Resolver *SearchResolver
	Geocoder ports.Geocoder
	Settings domain.MapSettings
}

// NewCatalog assembles a Catalog.
func NewCatalog(store *DataStore, registry *LayerRegistry, geocoder ports.Geocoder, settings domain.MapSettings) *Catalog {
	return &Catalog{
		Store:    store,
		Registry: registry,
		Resolver: NewSearchResolver(store),
		Geocoder: geocoder,
		Settings: settings,
	}
}

// searchBounds returns the geocoding box once both the data and the
// boundary are available.
func (c *Catalog) searchBounds() (domain.Bounds, bool) {
	if !c.Store.Ready() {
		return domain.Bounds{}, false
	}
	return c.Store.Boundary()
}
