package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges shared
// across every subcommand: the Wikidata streaming filter, the entity store
// writer, the admin hierarchy builder, the spatial resolver, and the
// cross-source linker.
type Metrics struct {
	// C2 Wikidata streaming filter.
	WikidataEntitiesTotal    prometheus.Counter
	WikidataMatchesTotal     *prometheus.CounterVec // labels: stream={geographic,person,organization}
	WikidataParseErrorsTotal prometheus.Counter

	// C4 entity store writer.
	StoreWritesTotal       *prometheus.CounterVec // labels: entity={place,wikidata_place,person,organization,edge}
	StoreCoordinateFixes   *prometheus.CounterVec // labels: kind={swapped,invalid}
	StoreWriteDuration     *prometheus.HistogramVec // labels: entity

	// C5 admin hierarchy builder.
	AdminHierarchyCountriesTotal *prometheus.CounterVec // labels: outcome={completed,failed}
	AdminHierarchyRunning        prometheus.Gauge

	// C6 spatial resolver.
	ResolverDirectMatchesTotal  prometheus.Counter
	ResolverSpatialEdgesTotal   *prometheus.CounterVec // labels: kind={same_as,near,located_in}
	ResolverCountriesTotal      *prometheus.CounterVec // labels: outcome={completed,failed}
	ResolverCandidateCacheTotal *prometheus.CounterVec // labels: result={hit,miss}
	ResolverRunning             prometheus.Gauge

	// C7 cross-source linker.
	LinkerEventsWrittenTotal  *prometheus.CounterVec // labels: kind={born_in,died_in,worked_at}
	LinkerEventsSkippedTotal  prometheus.Counter
	LinkerIdentitiesVerified  prometheus.Counter
	LinkerIdentitiesMissing   prometheus.Counter
	LinkerRelationshipsTotal  *prometheus.CounterVec // labels: kind={parent_of,child_of,spouse_of}
}

// NewMetrics creates and registers every metric with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(collectors(m)...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		WikidataEntitiesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "wikidata_entities_total",
			Help:      "Total Wikidata dump entities parsed.",
		}),
		WikidataMatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "wikidata_matches_total",
			Help:      "Entities classified and routed to an output stream, by stream.",
		}, []string{"stream"}),
		WikidataParseErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "wikidata_parse_errors_total",
			Help:      "Dump lines that failed to parse as JSON.",
		}),

		StoreWritesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "store_writes_total",
			Help:      "Batch writes committed to the graph, by entity type.",
		}, []string{"entity"}),
		StoreCoordinateFixes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "store_coordinate_fixes_total",
			Help:      "Coordinate pairs corrected or dropped by the sanity check, by kind.",
		}, []string{"kind"}),
		StoreWriteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "geokg",
			Name:      "store_write_duration_seconds",
			Help:      "Duration of a batch write transaction, by entity type.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"entity"}),

		AdminHierarchyCountriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "admin_hierarchy_countries_total",
			Help:      "Countries processed by the admin hierarchy builder, by outcome.",
		}, []string{"outcome"}),
		AdminHierarchyRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "geokg",
			Name:      "admin_hierarchy_running",
			Help:      "1 while the admin hierarchy builder is active, 0 otherwise.",
		}),

		ResolverDirectMatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "resolver_direct_matches_total",
			Help:      "SAME_AS edges created by the Phase A geonames-id match.",
		}),
		ResolverSpatialEdgesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "resolver_spatial_edges_total",
			Help:      "Edges created by the Phase B spatial match, by edge kind.",
		}, []string{"kind"}),
		ResolverCountriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "resolver_countries_total",
			Help:      "Countries processed by the spatial resolver, by outcome.",
		}, []string{"outcome"}),
		ResolverCandidateCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "resolver_candidate_cache_total",
			Help:      "Candidate-list cache lookups, by result.",
		}, []string{"result"}),
		ResolverRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "geokg",
			Name:      "resolver_running",
			Help:      "1 while the spatial resolver is active, 0 otherwise.",
		}),

		LinkerEventsWrittenTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "linker_events_written_total",
			Help:      "Biographical event edges written, by kind.",
		}, []string{"kind"}),
		LinkerEventsSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "linker_events_skipped_total",
			Help:      "Event facts skipped for lacking a resolvable GeoNames id.",
		}),
		LinkerIdentitiesVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "linker_identities_verified_total",
			Help:      "RDF persons whose cross-source Wikidata QID was found in the graph.",
		}),
		LinkerIdentitiesMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "linker_identities_missing_total",
			Help:      "RDF persons referencing a Wikidata QID absent from this run's graph.",
		}),
		LinkerRelationshipsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokg",
			Name:      "linker_relationships_total",
			Help:      "Relationship edges written, by kind.",
		}, []string{"kind"}),
	}
}

func collectors(m *Metrics) []prometheus.Collector {
	return []prometheus.Collector{
		m.WikidataEntitiesTotal,
		m.WikidataMatchesTotal,
		m.WikidataParseErrorsTotal,
		m.StoreWritesTotal,
		m.StoreCoordinateFixes,
		m.StoreWriteDuration,
		m.AdminHierarchyCountriesTotal,
		m.AdminHierarchyRunning,
		m.ResolverDirectMatchesTotal,
		m.ResolverSpatialEdgesTotal,
		m.ResolverCountriesTotal,
		m.ResolverCandidateCacheTotal,
		m.ResolverRunning,
		m.LinkerEventsWrittenTotal,
		m.LinkerEventsSkippedTotal,
		m.LinkerIdentitiesVerified,
		m.LinkerIdentitiesMissing,
		m.LinkerRelationshipsTotal,
	}
}
