package usecases

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
)

const suggestTimeout = 10 * time.Second

// SuggestFunc receives the geocoder answer for one input generation.
type SuggestFunc func(gen uint64, places []domain.Place, err error)

// Suggester debounces live search suggestions. Each input bumps a generation
// counter; a pending lookup is cancelled by newer input and an answer whose
// generation is no longer current must be dropped by the receiver.
type Suggester struct {
	geocoder ports.Geocoder
	delay    time.Duration
	limit    int
	ready    func() (domain.Bounds, bool)
	deliver  SuggestFunc

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewSuggester creates a suggester. ready reports the geocoding box once
// lookups are allowed.
func NewSuggester(geocoder ports.Geocoder, delay time.Duration, limit int, ready func() (domain.Bounds, bool), deliver SuggestFunc) *Suggester {
	return &Suggester{
		geocoder: geocoder,
		delay:    delay,
		limit:    limit,
		ready:    ready,
		deliver:  deliver,
	}
}

// Input schedules a lookup of text after the quiet period and returns the
// new generation. Blank text only cancels what is pending.
func (s *Suggester) Input(text string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.stopLocked()

	q := strings.TrimSpace(text)
	if q == "" || s.closed {
		return s.gen
	}

	gen := s.gen
	s.wg.Add(1)
	s.timer = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		s.fire(gen, q)
	})
	return gen
}

// Cancel drops any pending or in-flight lookup.
func (s *Suggester) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.stopLocked()
}

// Current reports whether gen is still the latest input.
func (s *Suggester) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen == s.gen
}

// Close cancels pending work and waits for running lookups to return.
func (s *Suggester) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	s.stopLocked()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Suggester) stopLocked() {
	if s.timer != nil && s.timer.Stop() {
		s.wg.Done()
	}
	s.timer = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// begin returns the context of the lookup for gen, or false when gen has been
// superseded. The context is cancelled by the next input.
func (s *Suggester) begin(gen uint64) (context.Context, context.CancelFunc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return nil, nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), suggestTimeout)
	s.cancel = cancel
	return ctx, cancel, true
}

func (s *Suggester) fire(gen uint64, query string) {
	if !s.Current(gen) {
		return
	}

	bounds, ok := s.ready()
	if !ok {
		s.deliver(gen, nil, domain.ErrDataNotReady)
		return
	}

	ctx, cancel, ok := s.begin(gen)
	if !ok {
		return
	}
	defer cancel()

	places, err := s.geocoder.Search(ctx, query, bounds, ports.GeocodeOptions{
		Limit:          s.limit,
		AddressDetails: true,
	})
	s.deliver(gen, places, err)
}
