// Package metrics provides Prometheus metrics for the foresight rating engine.
package metrics

import (
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default buckets for absolute team deltas (Elo points).
var defaultDeltaBuckets = []float64{0.5, 1, 2, 4, 8, 12, 16, 24, 32, 48} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for a rating run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	deltaBuckets     []float64
	registry         prometheus.Registerer

	// Fold Metrics
	gamesProcessed    prometheus.Counter
	gamesSkipped      *prometheus.CounterVec
	gameFailures      prometheus.Counter
	seasonTransitions prometheus.Counter
	teamDelta         prometheus.Histogram
	playerUpdates     prometheus.Counter
	foldDuration      prometheus.Histogram

	// Store Metrics
	trackedEntities *prometheus.GaugeVec

	// Loader Metrics
	rowsRead        *prometheus.CounterVec
	malformedFields *prometheus.CounterVec
	duplicateRows   prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "foresight",
		subsystem:        "elo",
		histogramBuckets: prometheus.DefBuckets,
		deltaBuckets:     defaultDeltaBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)

	// Fold Metrics - what the engine did with each game
	m.gamesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_processed_total",
		Help:      "Total number of games folded into the ratings",
	})

	m.gamesSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "games_skipped_total",
			Help:      "Total number of games skipped without mutation, by reason",
		},
		[]string{"reason"},
	)

	m.gameFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_failures_total",
		Help:      "Total number of games rolled back after a computation failure",
	})

	m.seasonTransitions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "season_transitions_total",
		Help:      "Total number of season boundaries that triggered regression",
	})

	m.teamDelta = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "team_delta_points",
		Help:      "Absolute team rating change per game",
		Buckets:   m.deltaBuckets,
	})

	m.playerUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "player_updates_total",
		Help:      "Total number of player rating updates applied",
	})

	m.foldDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fold_duration_seconds",
		Help:      "Wall time of a full fold over the game sequence",
		Buckets:   m.histogramBuckets,
	})

	// Store Metrics
	m.trackedEntities = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "tracked_entities",
			Help:      "Number of rated entities held in the store, by kind",
		},
		[]string{"kind"},
	)

	// Loader Metrics - input data quality
	m.rowsRead = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "loader_rows_total",
			Help:      "Total number of input rows read, by source file",
		},
		[]string{"source"},
	)

	m.malformedFields = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "loader_malformed_fields_total",
			Help:      "Total number of unparseable fields replaced by their default, by column",
		},
		[]string{"column"},
	)

	m.duplicateRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_duplicate_rows_total",
		Help:      "Total number of duplicate input rows dropped",
	})
}

// RecordGameProcessed increments the processed games counter.
func RecordGameProcessed() {
	globalManager.gamesProcessed.Inc()
}

// RecordGameSkipped increments the skipped games counter for reason.
func RecordGameSkipped(reason string) {
	globalManager.gamesSkipped.WithLabelValues(reason).Inc()
}

// RecordGameFailure increments the failed games counter.
func RecordGameFailure() {
	globalManager.gameFailures.Inc()
}

// RecordSeasonTransition increments the season transition counter.
func RecordSeasonTransition() {
	globalManager.seasonTransitions.Inc()
}

// RecordTeamDelta observes the magnitude of a team rating change.
func RecordTeamDelta(delta float64) {
	globalManager.teamDelta.Observe(math.Abs(delta))
}

// RecordPlayerUpdates adds n applied player updates.
func RecordPlayerUpdates(n int) {
	if n > 0 {
		globalManager.playerUpdates.Add(float64(n))
	}
}

// RecordFoldDuration records the duration of a fold in seconds.
func RecordFoldDuration(seconds float64) {
	globalManager.foldDuration.Observe(seconds)
}

// UpdateTrackedEntities sets the number of tracked entities of kind.
func UpdateTrackedEntities(kind string, count int) {
	globalManager.trackedEntities.WithLabelValues(kind).Set(float64(count))
}

// Loader Metrics Functions.

// RecordRowsRead adds n rows read from source.
func RecordRowsRead(source string, n int) {
	if n > 0 {
		globalManager.rowsRead.WithLabelValues(source).Add(float64(n))
	}
}

// RecordMalformedField increments the malformed field counter for column.
func RecordMalformedField(column string) {
	globalManager.malformedFields.WithLabelValues(column).Inc()
}

// RecordDuplicateRow increments the duplicate rows counter.
func RecordDuplicateRow() {
	globalManager.duplicateRows.Inc()
}

// WriteTextfile writes the registry in the text exposition format to path,
// for collection by a node exporter textfile collector after a batch run.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrTextfileWrite, err)
	}
	return nil
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
