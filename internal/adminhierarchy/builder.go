// Package adminhierarchy materializes AdminDivision nodes from the
// gazetteer's administrative feature codes and links Place/AdminDivision
// nodes into a Country-rooted hierarchy, scaling its batching strategy to
// the country's place count.
package adminhierarchy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jburnford/geo-linked-open-data-kg/internal/progress"
)

// Thresholds selecting the chunking strategy per country, by place count.
const (
	MegaThreshold  = 50000
	UltraThreshold = 500000
)

// Store is the subset of the Neo4j write surface the builder needs. It is
// satisfied by *store.Writer; declared locally so this package does not
// import store's batching internals directly.
type Store interface {
	CountPlacesForCountry(ctx context.Context, countryCode string) (int, error)
	CreateAdminDivisionsForCountry(ctx context.Context, countryCode string, batchSize int) error
	LinkPlacesNormal(ctx context.Context, countryCode string, batchSize int) error
	LinkPlacesMegaByAdmin1(ctx context.Context, countryCode string, batchSize int) error
	LinkPlacesUltraByAdmin2(ctx context.Context, countryCode string, batchSize int) error
	LinkAdminHierarchy(ctx context.Context, countryCode string) error
	ListCountries(ctx context.Context) ([]string, error)
}

// Options controls batching and retry behavior.
type Options struct {
	BatchSize        int
	CountryWallClock time.Duration
}

// Builder runs admin hierarchy construction country by country, resuming
// from a durable progress log and adapting its chunking strategy to each
// country's place count.
type Builder struct {
	store    Store
	progress *progress.Controller
	opts     Options
	logger   *slog.Logger
}

// New constructs a Builder.
func New(store Store, progress *progress.Controller, opts Options, logger *slog.Logger) *Builder {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10000
	}
	if opts.CountryWallClock <= 0 {
		opts.CountryWallClock = 30 * time.Minute
	}
	return &Builder{store: store, progress: progress, opts: opts, logger: logger}
}

// BuildAll processes every country not already completed or failed in the
// progress log. A country whose processing fails is recorded as failed and
// skipped; it is not retried within this call.
func (b *Builder) BuildAll(ctx context.Context) error {
	countries, err := b.store.ListCountries(ctx)
	if err != nil {
		return fmt.Errorf("list countries: %w", err)
	}

	remaining := b.progress.Remaining(countries)
	b.logger.Info("admin hierarchy build starting", "countries", len(remaining))

	for _, country := range remaining {
		countryCtx, cancel := context.WithTimeout(ctx, b.opts.CountryWallClock)
		err := b.buildCountry(countryCtx, country)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("admin hierarchy build canceled, leaving in-flight country unmarked", "country", country)
				return ctx.Err()
			}
			b.logger.Error("admin hierarchy build failed for country", "country", country, "error", err)
			if markErr := b.progress.MarkFailed(country, err); markErr != nil {
				return fmt.Errorf("persist failure for %s: %w", country, markErr)
			}
			continue
		}

		if err := b.progress.MarkDone(country); err != nil {
			return fmt.Errorf("persist completion for %s: %w", country, err)
		}
		b.logger.Info("admin hierarchy build completed for country", "country", country)
	}
	return nil
}

// buildCountry runs the three-step pipeline for one country: materialize
// AdminDivision nodes, link places to their admin divisions, then link
// admin divisions to each other and to the country.
func (b *Builder) buildCountry(ctx context.Context, country string) error {
	if err := b.store.CreateAdminDivisionsForCountry(ctx, country, b.opts.BatchSize); err != nil {
		return fmt.Errorf("materialize admin divisions: %w", err)
	}

	count, err := b.store.CountPlacesForCountry(ctx, country)
	if err != nil {
		return fmt.Errorf("count places: %w", err)
	}

	linkFn := b.store.LinkPlacesNormal
	switch {
	case count > UltraThreshold:
		linkFn = b.store.LinkPlacesUltraByAdmin2
	case count > MegaThreshold:
		linkFn = b.store.LinkPlacesMegaByAdmin1
	}

	if err := b.retryHalved(ctx, func(ctx context.Context, batchSize int) error {
		return linkFn(ctx, country, batchSize)
	}); err != nil {
		return fmt.Errorf("link places to admin divisions: %w", err)
	}

	if err := b.store.LinkAdminHierarchy(ctx, country); err != nil {
		return fmt.Errorf("link admin hierarchy: %w", err)
	}
	return nil
}

// retryHalved runs fn with the configured batch size; on failure it halves
// the batch size and retries once more before giving up, mirroring the
// backoff idiom used elsewhere in this service for transient write
// failures.
func (b *Builder) retryHalved(ctx context.Context, fn func(ctx context.Context, batchSize int) error) error {
	err := fn(ctx, b.opts.BatchSize)
	if err == nil {
		return nil
	}

	halved := b.opts.BatchSize / 2
	if halved < 1 {
		halved = 1
	}
	b.logger.Warn("batch failed, retrying with halved batch size", "error", err, "batchSize", halved)

	if !sleepWithContext(ctx, 500*time.Millisecond) {
		return ctx.Err()
	}
	return fn(ctx, halved)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
