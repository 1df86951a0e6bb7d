package usecases

import (
	"sync"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

// DataStore holds the features of every amenity category and the city
// boundary. Entries are written once, when their asset load completes.
type DataStore struct {
	categories []domain.Category

	mu        sync.RWMutex
	features  map[string][]domain.Feature
	failed    map[string]error
	completed int
	boundary  *domain.Bounds
	listeners []func(domain.Category)
}

// NewDataStore creates an empty store for the given categories.
func NewDataStore(categories []domain.Category) *DataStore {
	cats := make([]domain.Category, len(categories))
	copy(cats, categories)
	return &DataStore{
		categories: cats,
		features:   make(map[string][]domain.Feature, len(cats)),
		failed:     make(map[string]error),
	}
}

// Categories returns the categories in enumeration order.
func (s *DataStore) Categories() []domain.Category {
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Category looks up a category by name.
func (s *DataStore) Category(name string) (domain.Category, bool) {
	for _, c := range s.categories {
		if c.Name == name {
			return c, true
		}
	}
	return domain.Category{}, false
}

// Complete records the outcome of one category load. A failed load leaves
// the category empty but still counts towards readiness. Repeated
// completions of the same category are ignored.
func (s *DataStore) Complete(category string, features []domain.Feature, loadErr error) {
	cat, ok := s.Category(category)
	if !ok {
		return
	}

	s.mu.Lock()
	if _, done := s.features[category]; done {
		s.mu.Unlock()
		return
	}
	if loadErr != nil {
		features = nil
		s.failed[category] = loadErr
	}
	if features == nil {
		features = []domain.Feature{}
	}
	s.features[category] = features
	s.completed++
	listeners := make([]func(domain.Category), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cat)
	}
}

// OnCategoryLoaded registers fn to run after each category completes.
func (s *DataStore) OnCategoryLoaded(fn func(domain.Category)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Features returns the loaded features of a category.
func (s *DataStore) Features(category string) []domain.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.features[category]
}

// Count returns the number of loaded features of a category.
func (s *DataStore) Count(category string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.features[category])
}

// Loaded reports whether the category load has completed.
func (s *DataStore) Loaded(category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.features[category]
	return ok
}

// Failed returns the load error of a category, if any.
func (s *DataStore) Failed(category string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failed[category]
}

// Completed returns how many category loads have finished.
func (s *DataStore) Completed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed
}

// Ready reports whether every category load has finished.
func (s *DataStore) Ready() bool {
	return s.Completed() == len(s.categories)
}

// SetBoundary stores the boundary box. Only the first call has effect.
func (s *DataStore) SetBoundary(b domain.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundary == nil {
		s.boundary = &b
	}
}

// Boundary returns the boundary box once it is loaded.
func (s *DataStore) Boundary() (domain.Bounds, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.boundary == nil {
		return domain.Bounds{}, false
	}
	return *s.boundary, true
}
