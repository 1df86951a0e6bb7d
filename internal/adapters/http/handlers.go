package http

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

// CategoryView describes one amenity category and its load state.
type CategoryView struct {
	Name       string `json:"name"`
	SourceFile string `json:"source_file"`
	IconURL    string `json:"icon_url"`
	Count      int    `json:"count"`
	Loaded     bool   `json:"loaded"`
	Failed     bool   `json:"failed"`
}

// pathParam returns a route parameter with percent-escapes decoded, so
// category names with spaces can be addressed.
func pathParam(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func categoryViews(deps *Dependencies) []CategoryView {
	store := deps.Catalog.Store
	iconBase := deps.Catalog.Settings.IconBaseURL
	cats := store.Categories()
	out := make([]CategoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryView{
			Name:       c.Name,
			SourceFile: c.SourceFile,
			IconURL:    iconBase + c.IconFile(),
			Count:      store.Count(c.Name),
			Loaded:     store.Loaded(c.Name),
			Failed:     store.Failed(c.Name) != nil,
		})
	}
	return out
}

// ListCategoriesHandler returns every category in enumeration order.
func ListCategoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store := deps.Catalog.Store
		if !store.Ready() {
			c.Set("Cache-Control", "no-cache")
		}
		return c.JSON(fiber.Map{
			"categories": categoryViews(deps),
			"completed":  store.Completed(),
			"ready":      store.Ready(),
		})
	}
}

// CategoryFeaturesHandler returns a page of one category's features.
func CategoryFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := pathParam(c, "name")
		store := deps.Catalog.Store
		if _, ok := store.Category(name); !ok {
			return errNotFound(c, fmt.Sprintf("unknown category %q", name))
		}
		if !store.Loaded(name) {
			return errDomain(c, domain.ErrDataNotReady)
		}

		features := store.Features(name)
		pg := newPagination(c.QueryInt("offset", 0), c.QueryInt("limit", defaultPageLimit), defaultPageLimit, len(features))
		start, end := pg.Window()
		page := features[start:end]
		if page == nil {
			page = []domain.Feature{}
		}

		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// ListBaseLayersHandler returns the base map choices.
func ListBaseLayersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"base_layers": deps.Catalog.Registry.BaseLayers(),
			"default":     deps.Catalog.Settings.DefaultBaseLayer,
		})
	}
}

// BoundaryHandler returns the city bounding box.
func BoundaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, ok := deps.Catalog.Store.Boundary()
		if !ok {
			return errDomain(c, domain.ErrBoundaryNotReady)
		}
		return c.JSON(fiber.Map{
			"bounds":  b,
			"viewbox": b.Viewbox(),
		})
	}
}

// ResolveHandler classifies a query without applying it to any session.
func ResolveHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := c.Query("q")
		if len(q) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		action, err := deps.Catalog.Resolver.Resolve(q)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(action)
	}
}
