package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cache metrics (page cache and data-item cache)
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_cache_hits_total",
			Help: "Total number of cache acquisitions served from a resident entry",
		},
		[]string{"cache"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_cache_misses_total",
			Help: "Total number of cache acquisitions that had to load the resource",
		},
		[]string{"cache"},
	)

	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_cache_evictions_total",
			Help: "Total number of cache entries evicted at zero refcount",
		},
		[]string{"cache"},
	)

	CacheResident = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quill_cache_resident",
			Help: "Current number of resident entries in a cache",
		},
		[]string{"cache"},
	)

	// Transaction manager metrics
	TxActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quill_tx_active",
			Help: "Number of transactions currently active",
		},
	)

	TxCommittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_tx_committed_total",
			Help: "Total number of transactions committed",
		},
	)

	TxAbortedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_tx_aborted_total",
			Help: "Total number of transactions aborted (explicit or automatic)",
		},
	)

	// Concurrency control metrics
	DeadlocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_deadlocks_total",
			Help: "Total number of deadlocks detected by the lock table",
		},
	)

	VersionSkipsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_version_skips_total",
			Help: "Total number of repeatable-read version-skip aborts",
		},
	)

	LockWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quill_lock_wait_duration_seconds",
			Help:    "Time spent blocked on the lock table's waiter latch",
			Buckets: prometheus.DefBuckets,
		},
	)

	// WAL and recovery metrics
	WALAppendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quill_wal_append_duration_seconds",
			Help:    "Time taken to append and fsync one log record",
			Buckets: prometheus.DefBuckets,
		},
	)

	WALBytesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_wal_bytes_written_total",
			Help: "Total number of bytes appended to the write-ahead log",
		},
	)

	RecoveryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quill_recovery_duration_seconds",
			Help:    "Time taken to run crash recovery at open",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	// B+ tree metrics
	BTreeSplitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_btree_splits_total",
			Help: "Total number of B+ tree node splits",
		},
	)

	// Page allocation metrics
	PageAllocationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_page_allocations_total",
			Help: "Total number of new pages appended to the data file",
		},
	)

	// Executor/catalog metrics
	RowsInsertedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_rows_inserted_total",
			Help: "Total number of rows inserted through the executor",
		},
	)

	TablesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quill_tables_total",
			Help: "Number of tables currently in the catalog",
		},
	)
)

func init() {
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(CacheEvictions)
	prometheus.MustRegister(CacheResident)
	prometheus.MustRegister(TxActive)
	prometheus.MustRegister(TxCommittedTotal)
	prometheus.MustRegister(TxAbortedTotal)
	prometheus.MustRegister(DeadlocksTotal)
	prometheus.MustRegister(VersionSkipsTotal)
	prometheus.MustRegister(LockWaitDuration)
	prometheus.MustRegister(WALAppendDuration)
	prometheus.MustRegister(WALBytesWritten)
	prometheus.MustRegister(RecoveryDuration)
	prometheus.MustRegister(BTreeSplitsTotal)
	prometheus.MustRegister(PageAllocationsTotal)
	prometheus.MustRegister(RowsInsertedTotal)
	prometheus.MustRegister(TablesTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
