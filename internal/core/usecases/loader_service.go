package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/civicmap/internal/core/usecases")

// LoaderService fetches the boundary and every category dataset
// concurrently. Loads finish in any order; a failed load is logged, its
// category stays empty and the completed count still advances.
type LoaderService struct {
	source      ports.AssetSource
	store       *DataStore
	registry    *LayerRegistry
	publisher   ports.EventPublisher
	concurrency int
	iconBaseURL string
}

// NewLoaderService creates a LoaderService. publisher may be nil.
func NewLoaderService(source ports.AssetSource, store *DataStore, registry *LayerRegistry, publisher ports.EventPublisher, concurrency int, iconBaseURL string) *LoaderService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &LoaderService{
		source:      source,
		store:       store,
		registry:    registry,
		publisher:   publisher,
		concurrency: concurrency,
		iconBaseURL: iconBaseURL,
	}
}

// Run loads every asset and returns the joined load errors, if any.
func (l *LoaderService) Run(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(l.concurrency)

	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	g.Go(func() error {
		if err := l.loadBoundary(ctx); err != nil {
			record(err)
		}
		return nil
	})
	for _, cat := range l.store.Categories() {
		g.Go(func() error {
			if err := l.loadCategory(ctx, cat); err != nil {
				record(err)
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("asset loading finished",
		"categories", len(l.store.Categories()),
		"completed", l.store.Completed(),
		"failures", len(errs),
	)
	return errors.Join(errs...)
}

func (l *LoaderService) loadBoundary(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "LoadBoundary")
	defer span.End()

	bounds, err := l.source.LoadBoundary(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.AssetLoadErrors.WithLabelValues("boundary").Inc()
		slog.Error("boundary load failed", "error", err)
		return fmt.Errorf("boundary: %w", err)
	}

	l.store.SetBoundary(bounds)
	slog.Info("boundary loaded", "viewbox", bounds.Viewbox())
	return nil
}

func (l *LoaderService) loadCategory(ctx context.Context, cat domain.Category) error {
	ctx, span := tracer.Start(ctx, "LoadCategory")
	span.SetAttributes(attribute.String("category", cat.Name))
	defer span.End()

	start := time.Now()
	features, err := l.source.LoadCategory(ctx, cat)
	metrics.AssetLoadDuration.WithLabelValues(cat.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.AssetLoadErrors.WithLabelValues(cat.Name).Inc()
		slog.Error("amenity load failed", "category", cat.Name, "file", cat.SourceFile, "error", err)
		features = nil
	} else {
		metrics.FeaturesLoaded.WithLabelValues(cat.Name).Set(float64(len(features)))
		slog.Info("amenities loaded", "category", cat.Name, "count", len(features))
	}

	// The layer must exist before sessions hear about the completion.
	l.registry.Register(cat, len(features), l.iconBaseURL)
	l.store.Complete(cat.Name, features, err)

	if l.store.Ready() {
		slog.Info("all amenities loaded")
	}
	if l.publisher != nil {
		if perr := l.publisher.PublishAssetLoaded(ctx, cat.Name, len(features), err != nil); perr != nil {
			slog.Warn("publish asset event failed", "category", cat.Name, "error", perr)
		}
	}

	if err != nil {
		return fmt.Errorf("category %s: %w", cat.Name, err)
	}
	return nil
}
