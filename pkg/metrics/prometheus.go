// Package metrics records per-run counters for the index batch jobs and
// exports them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the run metrics on a private registry.
type Manager struct {
	namespace string
	subsystem string
	registry  *prometheus.Registry

	rowsRead       prometheus.Counter
	rowsSkipped    *prometheus.CounterVec
	gamesAdded     prometheus.Counter
	duplicates     prometheus.Counter
	bucketsTouched prometheus.Counter
	bucketsCreated prometheus.Counter

	indexBuckets prometheus.Gauge
	indexGames   prometheus.Gauge
	runDuration  *prometheus.GaugeVec
	lastRunUnix  *prometheus.GaugeVec
}

// NewManager creates a manager with its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "uniqorn",
		subsystem: "index",
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	f := promauto.With(m.registry)
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}

	m.rowsRead = counter("rows_read_total", "Raw rows read from the data source.")
	m.rowsSkipped = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rows_skipped_total", Help: "Rows dropped before merging, by reason.",
	}, []string{"reason"})
	m.gamesAdded = counter("games_added_total", "Games inserted into the index.")
	m.duplicates = counter("duplicates_total", "Games already present in their bucket.")
	m.bucketsTouched = counter("buckets_touched_total", "Buckets that received at least one game.")
	m.bucketsCreated = counter("buckets_created_total", "Buckets created by a batch.")

	m.indexBuckets = gauge("buckets", "Buckets in the saved index.")
	m.indexGames = gauge("games", "Games in the saved index.")
	m.runDuration = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "run_duration_seconds", Help: "Wall time of the last run, by command.",
	}, []string{"command"})
	m.lastRunUnix = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "last_run_timestamp_seconds", Help: "Completion time of the last run, by command.",
	}, []string{"command"})
}

// Registry returns the registry the manager gathers from.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Batch is the subset of a merge report the manager records.
type Batch struct {
	RowsRead       int
	Skipped        map[string]int
	GamesAdded     int
	Duplicates     int
	BucketsTouched int
	BucketsCreated int
}

// RecordBatch adds a batch's counts.
func (m *Manager) RecordBatch(b Batch) {
	m.rowsRead.Add(float64(b.RowsRead))
	for reason, n := range b.Skipped {
		m.rowsSkipped.WithLabelValues(reason).Add(float64(n))
	}
	m.gamesAdded.Add(float64(b.GamesAdded))
	m.duplicates.Add(float64(b.Duplicates))
	m.bucketsTouched.Add(float64(b.BucketsTouched))
	m.bucketsCreated.Add(float64(b.BucketsCreated))
}

// SetIndexSize records the size of the saved index.
func (m *Manager) SetIndexSize(buckets, games int) {
	m.indexBuckets.Set(float64(buckets))
	m.indexGames.Set(float64(games))
}

// ObserveRun records how long command took, stamped at end.
func (m *Manager) ObserveRun(command string, d time.Duration, end time.Time) {
	m.runDuration.WithLabelValues(command).Set(d.Seconds())
	m.lastRunUnix.WithLabelValues(command).Set(float64(end.Unix()))
}

// WriteTextfile writes every gathered metric to path for the node-exporter
// textfile collector. The write goes through a temp file and a rename.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExportFailed, path, err)
	}
	return nil
}
