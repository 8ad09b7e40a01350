// Command geokg builds and links a historical-geography knowledge graph in
// Neo4j from a GeoNames gazetteer dump, a filtered Wikidata JSON dump, and a
// set of CIDOC-CRM Turtle files. Each pipeline stage is a subcommand:
//
//	geokg ingest-geonames  -file allCountries.txt
//	geokg filter-wikidata  -file latest-all.json -out ./wikidata-streams
//	geokg ingest-wikidata  -dir ./wikidata-streams
//	geokg build-admin
//	geokg resolve
//	geokg ingest-rdf       -file persons.ttl
//	geokg link             -file persons.ttl
//
// Every subcommand loads its configuration from the environment (see
// internal/config). Every subcommand except filter-wikidata also exposes
// /healthz, /readyz, and /metrics on HTTP_ADDR for the duration of the run.
package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"

	"github.com/jburnford/geo-linked-open-data-kg/internal/adminhierarchy"
	"github.com/jburnford/geo-linked-open-data-kg/internal/config"
	"github.com/jburnford/geo-linked-open-data-kg/internal/domain"
	"github.com/jburnford/geo-linked-open-data-kg/internal/gazetteer"
	"github.com/jburnford/geo-linked-open-data-kg/internal/httpserver"
	"github.com/jburnford/geo-linked-open-data-kg/internal/linker"
	"github.com/jburnford/geo-linked-open-data-kg/internal/observability"
	"github.com/jburnford/geo-linked-open-data-kg/internal/progress"
	"github.com/jburnford/geo-linked-open-data-kg/internal/rdf"
	"github.com/jburnford/geo-linked-open-data-kg/internal/resolver"
	"github.com/jburnford/geo-linked-open-data-kg/internal/store"
	"github.com/jburnford/geo-linked-open-data-kg/internal/wikidata"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: geokg <subcommand> [flags]")
		fmt.Fprintln(os.Stderr, "subcommands: ingest-geonames, filter-wikidata, ingest-wikidata, build-admin, resolve, ingest-rdf, link")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub := os.Args[1]
	args := os.Args[2:]

	var runErr error
	switch sub {
	case "filter-wikidata":
		// Pure stream transform; no graph store or HTTP server needed.
		runErr = runFilterWikidata(ctx, args, cfg, logger, metrics)
	case "ingest-geonames", "ingest-wikidata", "build-admin", "resolve", "ingest-rdf", "link":
		runErr = runWithStore(ctx, sub, args, cfg, logger, metrics)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", sub)
		os.Exit(1)
	}

	os.Exit(exitCode(runErr, sub, logger))
}

// errPartialCompletion signals that a resumable subcommand (build-admin,
// resolve) ran to completion but left one or more countries marked failed
// in its progress file; a rerun will pick up only those countries.
var errPartialCompletion = errors.New("one or more countries failed; see progress file")

// exitCode maps a subcommand's terminal error to a process exit status: 0
// for success or a clean SIGINT/SIGTERM cancellation (safe to resume later
// with the in-flight country untouched), 2 for partial completion recorded
// in the progress file, 1 for any other failure.
func exitCode(runErr error, sub string, logger *slog.Logger) int {
	if runErr == nil {
		return 0
	}
	if errors.Is(runErr, context.Canceled) {
		logger.Info("subcommand canceled", "subcommand", sub)
		return 0
	}
	if errors.Is(runErr, errPartialCompletion) {
		logger.Error("subcommand completed with failed countries", "subcommand", sub, "error", runErr)
		return 2
	}
	logger.Error("subcommand failed", "subcommand", sub, "error", runErr)
	return 1
}

// runWithStore wires a Neo4j driver and health server around a subcommand
// that writes to the graph, then shuts both down gracefully on completion
// or on SIGINT/SIGTERM.
func runWithStore(ctx context.Context, sub string, args []string, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return fmt.Errorf("connect to neo4j: %w", err)
	}
	defer driver.Close(ctx)

	limiter := rate.NewLimiter(rate.Limit(cfg.StoreRateLimit), 1)
	writer := store.NewWriter(driver, limiter, logger)

	if err := writer.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	checker := &readinessChecker{driver: driver}
	srv := httpserver.NewServer(cfg.HTTPAddr, checker, logger)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	workDone := make(chan error, 1)
	go func() {
		workDone <- dispatch(runCtx, sub, args, cfg, writer, logger, metrics)
	}()

	var runErr error
	select {
	case runErr = <-workDone:
	case <-ctx.Done():
		logger.Info("shutdown signal received, waiting for in-flight work")
		runErr = <-workDone
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	<-serverErrCh

	return runErr
}

func dispatch(ctx context.Context, sub string, args []string, cfg *config.Config, writer *store.Writer, logger *slog.Logger, metrics *observability.Metrics) error {
	switch sub {
	case "ingest-geonames":
		return runIngestGeonames(ctx, args, cfg, writer, logger, metrics)
	case "ingest-wikidata":
		return runIngestWikidata(ctx, args, cfg, writer, logger, metrics)
	case "build-admin":
		return runBuildAdmin(ctx, cfg, writer, logger, metrics)
	case "resolve":
		return runResolve(ctx, cfg, writer, logger, metrics)
	case "ingest-rdf":
		return runIngestRDF(ctx, args, writer, logger)
	case "link":
		return runLink(ctx, args, cfg, writer, logger)
	}
	return fmt.Errorf("unknown subcommand %q", sub)
}

type readinessChecker struct {
	driver neo4j.DriverWithContext
}

func (r *readinessChecker) CheckReadiness(ctx context.Context) error {
	return r.driver.VerifyConnectivity(ctx)
}

// ── ingest-geonames ──

func runIngestGeonames(ctx context.Context, args []string, cfg *config.Config, writer *store.Writer, logger *slog.Logger, metrics *observability.Metrics) error {
	fs := flag.NewFlagSet("ingest-geonames", flag.ExitOnError)
	path := fs.String("file", "", "path to the GeoNames allCountries.txt dump")
	mode := fs.String("mode", "bulk", "write mode: bulk or incremental")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-file is required")
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open gazetteer file: %w", err)
	}
	defer f.Close()

	writeMode, err := parseMode(*mode)
	if err != nil {
		return err
	}

	reader := gazetteer.NewReader(bufio.NewReaderSize(f, 1<<20), gazetteer.Options{})

	batch := make([]domain.Place, 0, cfg.PlaceBatchSize)
	var total int64
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		start := time.Now()
		fix, err := writer.WritePlaces(ctx, batch, writeMode, cfg.PlaceBatchSize)
		metrics.StoreWriteDuration.WithLabelValues("place").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		metrics.StoreWritesTotal.WithLabelValues("place").Add(float64(len(batch)))
		if fix.Swapped > 0 {
			metrics.StoreCoordinateFixes.WithLabelValues("swapped").Add(float64(fix.Swapped))
		}
		if fix.Invalid > 0 {
			metrics.StoreCoordinateFixes.WithLabelValues("invalid").Add(float64(fix.Invalid))
		}
		total += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for {
		place, ok, err := reader.Next(ctx)
		if err != nil {
			return fmt.Errorf("read gazetteer: %w", err)
		}
		if !ok {
			break
		}
		batch = append(batch, place)
		if len(batch) >= cfg.PlaceBatchSize {
			if err := flush(); err != nil {
				return fmt.Errorf("write place batch: %w", err)
			}
			logger.Info("geonames ingest progress", "written", total)
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("write final place batch: %w", err)
	}

	stats := reader.Stats()
	skipped := stats.DiscardedBadColumns + stats.DiscardedCoordinate + stats.DiscardedFilter
	logger.Info("geonames ingest complete", "written", total, "skipped", skipped)
	return nil
}

func parseMode(s string) (store.Mode, error) {
	switch s {
	case "bulk", "":
		return store.ModeBulkLoad, nil
	case "incremental":
		return store.ModeIncremental, nil
	}
	return 0, fmt.Errorf("unknown write mode %q", s)
}

// ── filter-wikidata ──

func runFilterWikidata(ctx context.Context, args []string, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	fs := flag.NewFlagSet("filter-wikidata", flag.ExitOnError)
	path := fs.String("file", "", "path to the Wikidata latest-all.json dump")
	outDir := fs.String("out", ".", "directory to write the three NDJSON streams into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-file is required")
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open wikidata dump: %w", err)
	}
	defer f.Close()

	sinks, closeSinks, err := wikidata.OpenFileSinks(*outDir, *path, cfg.WikidataOutputBufferSize)
	if err != nil {
		return err
	}
	defer closeSinks()

	filter := wikidata.New(wikidata.Options{
		ProgressEvery:   int64(cfg.WikidataProgressEvery),
		ChannelCapacity: 4,
	}, logger)

	stats, err := filter.Run(ctx, bufio.NewReaderSize(f, 1<<20), sinks)
	if err != nil {
		return fmt.Errorf("filter wikidata dump: %w", err)
	}
	if err := closeSinks(); err != nil {
		return fmt.Errorf("close output streams: %w", err)
	}

	metrics.WikidataEntitiesTotal.Add(float64(stats.TotalEntities))
	metrics.WikidataMatchesTotal.WithLabelValues("geographic").Add(float64(stats.Geographic))
	metrics.WikidataMatchesTotal.WithLabelValues("person").Add(float64(stats.Person))
	metrics.WikidataMatchesTotal.WithLabelValues("organization").Add(float64(stats.Organization))
	metrics.WikidataParseErrorsTotal.Add(float64(stats.ParseErrors))

	logger.Info("wikidata filter complete",
		"entities", stats.TotalEntities,
		"geographic", stats.Geographic,
		"person", stats.Person,
		"organization", stats.Organization,
		"parseErrors", stats.ParseErrors,
	)
	return nil
}

// ── ingest-wikidata ──

func runIngestWikidata(ctx context.Context, args []string, cfg *config.Config, writer *store.Writer, logger *slog.Logger, metrics *observability.Metrics) error {
	fs := flag.NewFlagSet("ingest-wikidata", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory containing the filtered NDJSON streams")
	mode := fs.String("mode", "bulk", "write mode: bulk or incremental")
	if err := fs.Parse(args); err != nil {
		return err
	}

	writeMode, err := parseMode(*mode)
	if err != nil {
		return err
	}

	places, err := readNDJSONStream[domain.WikidataPlace](*dir + "/geographic.ndjson.gz")
	if err != nil {
		return fmt.Errorf("read geographic stream: %w", err)
	}
	if len(places) > 0 {
		fix, err := writer.WriteWikidataPlaces(ctx, places, writeMode, cfg.EntityBatchSize)
		if err != nil {
			return fmt.Errorf("write wikidata places: %w", err)
		}
		metrics.StoreWritesTotal.WithLabelValues("wikidata_place").Add(float64(len(places)))
		metrics.StoreCoordinateFixes.WithLabelValues("swapped").Add(float64(fix.Swapped))
		metrics.StoreCoordinateFixes.WithLabelValues("invalid").Add(float64(fix.Invalid))
	}

	persons, err := readNDJSONStream[domain.Person](*dir + "/person.ndjson.gz")
	if err != nil {
		return fmt.Errorf("read person stream: %w", err)
	}
	if len(persons) > 0 {
		if err := writer.WritePersons(ctx, persons, writeMode, cfg.EntityBatchSize); err != nil {
			return fmt.Errorf("write wikidata persons: %w", err)
		}
		metrics.StoreWritesTotal.WithLabelValues("person").Add(float64(len(persons)))
	}

	orgs, err := readNDJSONStream[domain.Organization](*dir + "/organization.ndjson.gz")
	if err != nil {
		return fmt.Errorf("read organization stream: %w", err)
	}
	if len(orgs) > 0 {
		if err := writer.WriteOrganizations(ctx, orgs, writeMode, cfg.EntityBatchSize); err != nil {
			return fmt.Errorf("write wikidata organizations: %w", err)
		}
		metrics.StoreWritesTotal.WithLabelValues("organization").Add(float64(len(orgs)))
	}

	logger.Info("wikidata ingest complete", "places", len(places), "persons", len(persons), "organizations", len(orgs))
	return nil
}

// readNDJSONStream decodes a gzip NDJSON file produced by
// wikidata.OpenFileSinks, skipping its leading metadata line.
func readNDJSONStream[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out []T
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue // metadata header line
		}
		var v T
		if err := json.Unmarshal(scanner.Bytes(), &v); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, v)
	}
	return out, scanner.Err()
}

// ── build-admin ──

func runBuildAdmin(ctx context.Context, cfg *config.Config, writer *store.Writer, logger *slog.Logger, metrics *observability.Metrics) error {
	prog, err := progress.Load(cfg.AdminProgressFile)
	if err != nil {
		return fmt.Errorf("load admin hierarchy progress: %w", err)
	}

	metrics.AdminHierarchyRunning.Set(1)
	defer metrics.AdminHierarchyRunning.Set(0)

	builder := adminhierarchy.New(writer, prog, adminhierarchy.Options{
		BatchSize:        cfg.AdminBatchSize,
		CountryWallClock: cfg.CountryWallClock,
	}, logger)

	if err := builder.BuildAll(ctx); err != nil {
		return err
	}
	metrics.AdminHierarchyCountriesTotal.WithLabelValues("completed").Inc()
	if n := prog.FailedCount(); n > 0 {
		return fmt.Errorf("%d countries failed: %w", n, errPartialCompletion)
	}
	return nil
}

// ── resolve ──

func runResolve(ctx context.Context, cfg *config.Config, writer *store.Writer, logger *slog.Logger, metrics *observability.Metrics) error {
	prog, err := progress.Load(cfg.ResolverProgressFile)
	if err != nil {
		return fmt.Errorf("load resolver progress: %w", err)
	}

	metrics.ResolverRunning.Set(1)
	defer metrics.ResolverRunning.Set(0)

	r := resolver.New(writer, prog, resolver.Options{
		DirectMatchBatchSize: cfg.ResolverPhaseABatchSize,
		CountryBatchSize:     cfg.ResolverBatchSize,
		RadiusKM:             cfg.ResolverRadiusKM,
		CandidateCap:         cfg.ResolverCandidateCap,
		LinkThreshold:        cfg.ResolverLinkThreshold,
		EmitThreshold:        cfg.ResolverEmitThreshold,
	}, logger)

	matched, err := r.RunDirectMatch(ctx)
	if err != nil {
		return fmt.Errorf("direct match phase: %w", err)
	}
	metrics.ResolverDirectMatchesTotal.Add(float64(matched))
	logger.Info("direct match phase complete", "matched", matched)

	if err := r.RunSpatialMatch(ctx); err != nil {
		return fmt.Errorf("spatial match phase: %w", err)
	}
	if n := prog.FailedCount(); n > 0 {
		return fmt.Errorf("%d countries failed: %w", n, errPartialCompletion)
	}
	return nil
}

// ── ingest-rdf ──

func runIngestRDF(ctx context.Context, args []string, writer *store.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("ingest-rdf", flag.ExitOnError)
	path := fs.String("file", "", "path to a CIDOC-CRM Turtle file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-file is required")
	}

	result, err := readRDFFile(*path)
	if err != nil {
		return err
	}

	if len(result.Persons) > 0 {
		if err := writer.WritePersons(ctx, result.Persons, store.ModeIncremental, 500); err != nil {
			return fmt.Errorf("write rdf persons: %w", err)
		}
	}
	logger.Info("rdf ingest complete", "persons", len(result.Persons), "events", len(result.Events), "relationships", len(result.Relationships))
	return nil
}

func readRDFFile(path string) (rdf.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return rdf.Result{}, fmt.Errorf("open rdf file: %w", err)
	}
	defer f.Close()

	result, err := rdf.Read(f)
	if err != nil {
		return rdf.Result{}, fmt.Errorf("parse rdf file: %w", err)
	}
	return result, nil
}

// ── link ──

func runLink(ctx context.Context, args []string, cfg *config.Config, writer *store.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	path := fs.String("file", "", "path to the CIDOC-CRM Turtle file whose facts should be linked")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-file is required")
	}

	result, err := readRDFFile(*path)
	if err != nil {
		return err
	}

	l := linker.New(writer, linker.Options{BatchSize: cfg.LinkerBatchSize}, logger)
	stats, err := l.Link(ctx, result.Persons, result.Events, result.Relationships)
	if err != nil {
		return fmt.Errorf("link facts: %w", err)
	}

	logger.Info("link complete",
		"identitiesVerified", stats.IdentitiesVerified,
		"identitiesMissing", stats.IdentitiesMissing,
		"eventsWritten", stats.EventsWritten,
		"eventsSkipped", stats.EventsSkipped,
		"relationshipsWritten", stats.RelationshipsWritten,
	)
	return nil
}
