// Package resolver links WikidataPlace nodes to Place nodes sourced from
// the gazetteer: an exact pass on the shared GeoNames identifier, then a
// spatial-proximity pass scored on distance, name similarity, and entity
// type, scaled to run country by country against a 10^7-node graph without
// an all-pairs distance computation.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
	"github.com/jburnford/geo-linked-open-data-kg/internal/progress"
	"github.com/jburnford/geo-linked-open-data-kg/internal/store"
)

// Candidate is a Place considered as a Phase B match, carrying the
// haversine distance from the source point it was fetched for.
type Candidate struct {
	GeonameID    int64
	Name         string
	FeatureClass string
	FeatureCode  string
	Latitude     float64
	Longitude    float64
	DistanceKM   float64
}

// Store is the Neo4j surface the resolver needs. Satisfied by
// *store.Writer.
type Store interface {
	WriteDirectMatches(ctx context.Context, batchSize int) (int64, error)
	CountriesByUnlinkedCount(ctx context.Context) ([]string, error)
	UnlinkedWikidataPlacesForCountry(ctx context.Context, countryQid string, batchSize int) ([]store.CandidateSource, error)
	NearbyPlaces(ctx context.Context, box domain.BoundingBox) ([]store.CandidateTarget, error)
	WriteResolverEdges(ctx context.Context, edges []domain.ResolverEdge, batchSize int) error
}

// Options controls batching, radius, and thresholds for both phases.
type Options struct {
	DirectMatchBatchSize int
	CountryBatchSize     int

	RadiusKM       float64
	CandidateCap   int
	LinkThreshold  float64
	EmitThreshold  float64
	CacheSize      int
}

func (o *Options) setDefaults() {
	if o.DirectMatchBatchSize <= 0 {
		o.DirectMatchBatchSize = 50000
	}
	if o.CountryBatchSize <= 0 {
		o.CountryBatchSize = 1000
	}
	if o.RadiusKM <= 0 {
		o.RadiusKM = 10.0
	}
	if o.CandidateCap <= 0 {
		o.CandidateCap = 5
	}
	if o.LinkThreshold <= 0 {
		o.LinkThreshold = 0.7
	}
	if o.EmitThreshold <= 0 {
		o.EmitThreshold = 0.5
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 4096
	}
}

// Resolver runs Phase A (direct-id match) and Phase B (spatial proximity)
// against a Neo4j-backed Store, resuming country-by-country from a
// progress log.
type Resolver struct {
	store    Store
	progress *progress.Controller
	opts     Options
	cache    *candidateCache
	logger   *slog.Logger
}

// New constructs a Resolver.
func New(store Store, progressCtl *progress.Controller, opts Options, logger *slog.Logger) *Resolver {
	opts.setDefaults()
	return &Resolver{
		store:    store,
		progress: progressCtl,
		opts:     opts,
		cache:    newCandidateCache(opts.CacheSize),
		logger:   logger,
	}
}

// RunDirectMatch executes Phase A. Phase A failures are always retried
// (without halving or giving up) since Phase B's unlinked-count scans
// depend on Phase A having already run to completion.
func (r *Resolver) RunDirectMatch(ctx context.Context) (int64, error) {
	for attempt := 1; ; attempt++ {
		matched, err := r.store.WriteDirectMatches(ctx, r.opts.DirectMatchBatchSize)
		if err == nil {
			r.logger.Info("direct identifier match complete", "edgesCreated", matched)
			return matched, nil
		}
		r.logger.Warn("direct identifier match failed, retrying", "attempt", attempt, "error", err)
		if !sleepWithContext(ctx, 500*time.Millisecond) {
			return 0, ctx.Err()
		}
	}
}

// RunSpatialMatch executes Phase B over every country not already
// completed or failed in the progress log, ascending by unlinked count.
func (r *Resolver) RunSpatialMatch(ctx context.Context) error {
	countries, err := r.store.CountriesByUnlinkedCount(ctx)
	if err != nil {
		return fmt.Errorf("list countries by unlinked count: %w", err)
	}

	remaining := r.progress.Remaining(countries)
	r.logger.Info("spatial resolution starting", "countries", len(remaining))

	for _, country := range remaining {
		if err := r.resolveCountryWithRetry(ctx, country); err != nil {
			if ctx.Err() != nil {
				r.logger.Info("spatial resolution canceled, leaving in-flight country unmarked", "countryQid", country)
				return ctx.Err()
			}
			r.logger.Error("spatial resolution failed for country", "countryQid", country, "error", err)
			if markErr := r.progress.MarkFailed(country, err); markErr != nil {
				return fmt.Errorf("persist failure for %s: %w", country, markErr)
			}
			continue
		}
		if err := r.progress.MarkDone(country); err != nil {
			return fmt.Errorf("persist completion for %s: %w", country, err)
		}
		r.logger.Info("spatial resolution completed for country", "countryQid", country)
	}
	return nil
}

// resolveCountryWithRetry processes every unlinked-place batch in country,
// halving the batch size and retrying once on failure, then giving up on
// the country after a second failure.
func (r *Resolver) resolveCountryWithRetry(ctx context.Context, country string) error {
	batchSize := r.opts.CountryBatchSize
	for {
		sources, err := r.store.UnlinkedWikidataPlacesForCountry(ctx, country, batchSize)
		if err != nil {
			return fmt.Errorf("fetch unlinked places: %w", err)
		}
		if len(sources) == 0 {
			return nil
		}

		if err := r.resolveBatch(ctx, sources); err != nil {
			halved := batchSize / 2
			if halved < 1 {
				halved = 1
			}
			r.logger.Warn("batch failed, retrying with halved batch size", "countryQid", country, "error", err, "batchSize", halved)
			if !sleepWithContext(ctx, 500*time.Millisecond) {
				return ctx.Err()
			}

			retrySources, fetchErr := r.store.UnlinkedWikidataPlacesForCountry(ctx, country, halved)
			if fetchErr != nil {
				return fmt.Errorf("fetch unlinked places on retry: %w", fetchErr)
			}
			if retryErr := r.resolveBatch(ctx, retrySources); retryErr != nil {
				qids := make([]string, len(retrySources))
				for i, s := range retrySources {
					qids[i] = s.QID
				}
				r.logger.Error("batch failed again after halving, marking country failed", "countryQid", country, "qids", qids, "error", retryErr)
				return retryErr
			}
			batchSize = halved
			continue
		}
	}
}

// resolveBatch scores every source in the batch against its nearby
// candidates and writes the resulting edges.
func (r *Resolver) resolveBatch(ctx context.Context, sources []store.CandidateSource) error {
	var edges []domain.ResolverEdge
	now := domain.Now()

	for _, src := range sources {
		candidates, err := r.nearbyCandidates(ctx, src.Latitude, src.Longitude)
		if err != nil {
			return fmt.Errorf("nearby candidates for %s: %w", src.QID, err)
		}
		if len(candidates) == 0 {
			continue
		}

		best, bestConfidence, ok := r.bestCandidate(src, candidates)
		if !ok || bestConfidence < r.opts.EmitThreshold {
			continue
		}

		sourcePriority := domain.WikidataPriority(src.InstanceOfLabel)
		targetPriority := domain.GeoNamesPriority(best.FeatureClass, best.FeatureCode)
		kind := domain.SelectEdgeKind(bestConfidence, best.DistanceKM, sourcePriority, targetPriority)

		if kind == domain.SameAs && bestConfidence < r.opts.LinkThreshold {
			continue
		}

		edges = append(edges, domain.ResolverEdge{
			Kind:       kind,
			SourceID:   src.QID,
			TargetID:   fmt.Sprintf("%d", best.GeonameID),
			Confidence: bestConfidence,
			DistanceKM: best.DistanceKM,
			Evidence:   domain.EvidenceSpatialProximity,
			LinkedDate: now,
		})
	}

	if len(edges) == 0 {
		return nil
	}
	return r.store.WriteResolverEdges(ctx, edges, len(edges))
}

// bestCandidate scores every candidate against src and returns the one
// with the highest confidence.
func (r *Resolver) bestCandidate(src store.CandidateSource, candidates []Candidate) (Candidate, float64, bool) {
	sourcePriority := domain.WikidataPriority(src.InstanceOfLabel)

	var best Candidate
	bestScore := -1.0
	found := false
	for _, c := range candidates {
		targetPriority := domain.GeoNamesPriority(c.FeatureClass, c.FeatureCode)
		confidence := domain.ScoreCandidate(src.Label, c.Name, c.DistanceKM, sourcePriority, targetPriority).Final
		if confidence > bestScore {
			bestScore = confidence
			best = c
			found = true
		}
	}
	return best, bestScore, found
}

// nearbyCandidates returns the k nearest Place candidates within radius of
// (lat, lon), checking the candidate cache first.
func (r *Resolver) nearbyCandidates(ctx context.Context, lat, lon float64) ([]Candidate, error) {
	key := quantizeKey(lat, lon, r.opts.RadiusKM)
	if cached, ok := r.cache.get(key); ok {
		return cached, nil
	}

	box := domain.NewBoundingBox(lat, lon, r.opts.RadiusKM)
	rows, err := r.store.NearbyPlaces(ctx, box)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		d := domain.HaversineKM(lat, lon, row.Latitude, row.Longitude)
		if d > r.opts.RadiusKM {
			continue
		}
		candidates = append(candidates, Candidate{
			GeonameID:    row.GeonameID,
			Name:         row.Name,
			FeatureClass: row.FeatureClass,
			FeatureCode:  row.FeatureCode,
			Latitude:     row.Latitude,
			Longitude:    row.Longitude,
			DistanceKM:   d,
		})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].DistanceKM < candidates[j].DistanceKM })
	if len(candidates) > r.opts.CandidateCap {
		candidates = candidates[:r.opts.CandidateCap]
	}

	r.cache.put(key, candidates)
	return candidates, nil
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
