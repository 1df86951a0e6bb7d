package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/civicmap/internal/adapters/assets"
	"github.com/samirrijal/civicmap/internal/adapters/postgres"
	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/pkg/config"
	"github.com/samirrijal/civicmap/internal/pkg/logging"
)

var (
	fromSource   string
	skipBoundary bool
	concurrency  int
)

func init() {
	RootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&fromSource, "from", "f", config.SourceFile, "read datasets from file or http (see data.dir / data.base_url)")
	importCmd.Flags().BoolVar(&skipBoundary, "skip-boundary", false, "do not import the city boundary")
	importCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "parallel category imports (default data.concurrency)")
}

var importCmd = &cobra.Command{
	Use:   "import [<category>...]",
	Short: "Replace amenity rows with the contents of the datasets",
	Long:  "Replace amenity rows with the contents of the datasets. Without arguments every category is imported.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load("civicmap-importer")
		if err != nil {
			return err
		}
		logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var source ports.AssetSource
		switch fromSource {
		case config.SourceFile:
			source = assets.NewFileSource(cfg.Data.Dir, cfg.Data.BoundaryFile)
		case config.SourceHTTP:
			if cfg.Data.BaseURL == "" {
				return fmt.Errorf("data.base_url is required to import over http")
			}
			source = assets.NewHTTPSource(cfg.Data.BaseURL, cfg.Data.BoundaryFile)
		default:
			return fmt.Errorf("--from must be file or http, got %q", fromSource)
		}

		categories, err := selectCategories(domain.DefaultCategories, args)
		if err != nil {
			return err
		}

		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		repo := postgres.NewAmenityRepo(db)

		limit := concurrency
		if limit <= 0 {
			limit = cfg.Data.Concurrency
		}
		return run(ctx, source, repo, cfg.Data.BoundaryFile, categories, limit)
	},
}

// selectCategories keeps the categories named in args, matched
// case-insensitively. No args selects all of them.
func selectCategories(all []domain.Category, args []string) ([]domain.Category, error) {
	if len(args) == 0 {
		return all, nil
	}
	var out []domain.Category
	for _, arg := range args {
		found := false
		for _, c := range all {
			if strings.EqualFold(c.Name, arg) {
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown category %q", arg)
		}
	}
	return out, nil
}

func run(ctx context.Context, source ports.AssetSource, repo ports.AmenityRepository, boundaryFile string, categories []domain.Category, limit int) error {
	start := time.Now()

	if !skipBoundary {
		b, err := source.LoadBoundary(ctx)
		if err != nil {
			return fmt.Errorf("load boundary: %w", err)
		}
		if err := repo.SaveBoundary(ctx, postgres.BoundaryName(boundaryFile), b); err != nil {
			return fmt.Errorf("save boundary: %w", err)
		}
		slog.Info("boundary imported", "name", postgres.BoundaryName(boundaryFile), "viewbox", b.Viewbox())
	}

	var total atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, cat := range categories {
		g.Go(func() error {
			features, err := source.LoadCategory(ctx, cat)
			if err != nil {
				return fmt.Errorf("load %s: %w", cat.Name, err)
			}
			if err := repo.ReplaceCategory(ctx, cat, features); err != nil {
				return fmt.Errorf("store %s: %w", cat.Name, err)
			}
			total.Add(int64(len(features)))
			slog.Info("category imported", "category", cat.Name, "features", humanize.Comma(int64(len(features))))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("imported %s features in %d categories (%s)\n",
		humanize.Comma(total.Load()), len(categories), time.Since(start).Round(time.Millisecond))
	return nil
}
