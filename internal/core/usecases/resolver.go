package usecases

import (
	"strings"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

// DefaultAliases maps lower-case search terms to the category they filter.
var DefaultAliases = map[string]string{
	"hospital":       "Hospitals",
	"hospitals":      "Hospitals",
	"school":         "Schools",
	"schools":        "Schools",
	"police":         "Police Stations",
	"police station": "Police Stations",
	"fire station":   "Fire Stations",
	"post office":    "Post Offices",
	"town hall":      "Town Halls",
	"prison":         "Prisons",
	"jail":           "Prisons",
}

// SearchResolver turns free text into a map action. It never mutates state.
type SearchResolver struct {
	store   *DataStore
	aliases map[string]string
}

// NewSearchResolver creates a resolver over store. Every category name is an
// alias of itself in addition to DefaultAliases.
func NewSearchResolver(store *DataStore) *SearchResolver {
	aliases := make(map[string]string, len(DefaultAliases))
	for _, c := range store.Categories() {
		aliases[strings.ToLower(c.Name)] = c.Name
	}
	for alias, name := range DefaultAliases {
		if _, ok := store.Category(name); ok {
			aliases[alias] = name
		}
	}
	return &SearchResolver{store: store, aliases: aliases}
}

// Resolve classifies query as a category filter, a feature highlight or a
// geocoder lookup bounded by the city box.
//
// Name matching prefers an exact (case-insensitive) name anywhere in the
// store; otherwise the first name containing the query wins, walking
// categories and then features in load order.
func (r *SearchResolver) Resolve(query string) (domain.Action, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return domain.Action{Kind: domain.ActionNone}, nil
	}
	if !r.store.Ready() {
		return domain.Action{}, domain.ErrDataNotReady
	}

	lower := strings.ToLower(q)
	if name, ok := r.aliases[lower]; ok {
		return domain.Action{Kind: domain.ActionFilter, Query: q, Category: name}, nil
	}

	if f := r.findFeature(lower); f != nil {
		return domain.Action{
			Kind:     domain.ActionHighlight,
			Query:    q,
			Category: f.Category,
			Feature:  f,
		}, nil
	}

	bounds, ok := r.store.Boundary()
	if !ok {
		return domain.Action{}, domain.ErrBoundaryNotReady
	}
	return domain.Action{Kind: domain.ActionGeocode, Query: q, Bounds: &bounds}, nil
}

func (r *SearchResolver) findFeature(lower string) *domain.Feature {
	var partial *domain.Feature
	for _, c := range r.store.Categories() {
		features := r.store.Features(c.Name)
		for i := range features {
			name := strings.ToLower(features[i].Name())
			if name == "" {
				continue
			}
			if name == lower {
				f := features[i]
				return &f
			}
			if partial == nil && strings.Contains(name, lower) {
				f := features[i]
				partial = &f
			}
		}
	}
	return partial
}
