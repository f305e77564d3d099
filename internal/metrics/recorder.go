// Package metrics exports spotlight activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

const (
	// MetricsNamespace is the namespace for all spotlight metrics.
	MetricsNamespace = "spotlight"

	migrationSubsystem = "migration"
)

// Recorder implements spotlight.Recorder with Prometheus collectors.
type Recorder struct {
	// Migration metrics
	ItemsMigrated     prometheus.Counter
	MigrationFailures *prometheus.CounterVec
	MigrationRuns     prometheus.Counter
	LastMigrated      prometheus.Gauge

	// Query metrics
	QueriesRewritten prometheus.Counter
	ClausesRewritten prometheus.Counter

	// Save metrics
	SavesHandled *prometheus.CounterVec
}

// NewRecorder creates and registers all spotlight metrics.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	r := &Recorder{}

	r.initMigrationMetrics(factory)

	r.QueriesRewritten = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "legacy_queries_rewritten_total",
		Help:      "Total number of queries rewritten from the legacy flag",
	})
	r.ClausesRewritten = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "legacy_clauses_rewritten_total",
		Help:      "Total number of legacy flag clauses replaced",
	})
	r.SavesHandled = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "saves_handled_total",
		Help:      "Total number of item saves seen, by outcome",
	}, []string{"outcome"})

	return r
}

// initMigrationMetrics initializes upgrade scan metrics.
func (r *Recorder) initMigrationMetrics(factory promauto.Factory) {
	r.ItemsMigrated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: migrationSubsystem,
		Name:      "items_migrated_total",
		Help:      "Total number of items given the featured membership by the upgrade",
	})
	r.MigrationFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: migrationSubsystem,
		Name:      "failures_total",
		Help:      "Total number of upgrade write failures, by stage",
	}, []string{"stage"})
	r.MigrationRuns = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: migrationSubsystem,
		Name:      "runs_completed_total",
		Help:      "Total number of completed upgrade scans",
	})
	r.LastMigrated = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: migrationSubsystem,
		Name:      "last_run_items",
		Help:      "Items migrated by the most recent upgrade scan",
	})
}

func (r *Recorder) ItemMigrated() {
	r.ItemsMigrated.Inc()
}

func (r *Recorder) MigrationFailure(stage string) {
	r.MigrationFailures.WithLabelValues(stage).Inc()
}

func (r *Recorder) MigrationCompleted(items int) {
	r.MigrationRuns.Inc()
	r.LastMigrated.Set(float64(items))
}

func (r *Recorder) QueryRewritten(clauses int) {
	r.QueriesRewritten.Inc()
	r.ClausesRewritten.Add(float64(clauses))
}

func (r *Recorder) SaveHandled(outcome spotlight.SaveOutcome) {
	r.SavesHandled.WithLabelValues(string(outcome)).Inc()
}
