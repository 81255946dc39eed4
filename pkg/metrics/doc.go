/*
Package metrics provides Prometheus metrics collection and exposition for quill.

The metrics package defines and registers every quill metric using the
Prometheus client library, giving observability into cache behavior,
transaction outcomes, lock contention, WAL durability, recovery cost,
B+ tree maintenance, and catalog activity. Metrics are exposed via an
HTTP endpoint for scraping by Prometheus servers.

# Architecture

quill's metrics system follows Prometheus best practices with
instrumentation across every storage-engine layer:

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  │  - Automatic Go runtime metrics             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Types                   │          │
	│  │                                              │          │
	│  │  Gauge: Instant values (tables, tx active)  │          │
	│  │  Counter: Monotonic increases (inserts)     │          │
	│  │  Histogram: Distributions (WAL append time) │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  Cache: hits, misses, evictions, resident   │          │
	│  │  Transactions: active, committed, aborted   │          │
	│  │  Concurrency: deadlocks, version skips      │          │
	│  │  WAL/Recovery: append time, recovery time   │          │
	│  │  Index: B+ tree splits, page allocations    │          │
	│  │  Catalog: rows inserted, tables total       │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Prometheus Server                   │          │
	│  │  - Scrapes /metrics every 15s               │          │
	│  │  - Stores time series data                  │          │
	│  │  - Provides PromQL query interface          │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Metric Registry:
  - Global Prometheus DefaultRegistry
  - All metrics registered at package init
  - Automatic collection of Go runtime metrics
  - Thread-safe for concurrent updates

Gauge Metrics:
  - Instant value that can go up or down
  - Examples: cache resident count, active transactions, tables total
  - Operations: Set, Inc, Dec, Add, Sub

Counter Metrics:
  - Monotonically increasing value
  - Examples: cache hits, committed transactions, rows inserted
  - Operations: Inc, Add (cannot decrease)

Histogram Metrics:
  - Distribution of observed values
  - Buckets for latency percentiles (p50, p95, p99)
  - Examples: WAL append duration, lock wait duration, recovery duration
  - Includes: sum, count, buckets

Collector:
  - Polls a StatsFunc callback on a 15-second interval
  - Republishes the snapshot as gauges (currently TablesTotal)
  - Decoupled from pkg/engine by the StatsFunc indirection so this
    package never has to import it back

Timer Helper:
  - Convenience wrapper for timing operations
  - Start timer, observe duration to histogram
  - Supports label values for histogram vectors

# Metrics Catalog

Cache Metrics:

quill_cache_hits_total{cache}:
  - Type: Counter
  - Description: Cache acquisitions served from a resident entry
  - Labels: cache (page, dataitem)
  - Example: quill_cache_hits_total{cache="page"} 12045

quill_cache_misses_total{cache}:
  - Type: Counter
  - Description: Cache acquisitions that had to load the resource
  - Labels: cache

quill_cache_evictions_total{cache}:
  - Type: Counter
  - Description: Cache entries evicted at zero refcount
  - Labels: cache

quill_cache_resident{cache}:
  - Type: Gauge
  - Description: Current number of resident entries in a cache
  - Labels: cache

Transaction Metrics:

quill_tx_active:
  - Type: Gauge
  - Description: Number of transactions currently active

quill_tx_committed_total:
  - Type: Counter
  - Description: Total transactions committed

quill_tx_aborted_total:
  - Type: Counter
  - Description: Total transactions aborted, explicit or automatic

Concurrency Control Metrics:

quill_deadlocks_total:
  - Type: Counter
  - Description: Deadlocks detected by the lock table

quill_version_skips_total:
  - Type: Counter
  - Description: Repeatable-read version-skip aborts

quill_lock_wait_duration_seconds:
  - Type: Histogram
  - Description: Time spent blocked on the lock table's waiter latch
  - Buckets: Default Prometheus buckets

WAL and Recovery Metrics:

quill_wal_append_duration_seconds:
  - Type: Histogram
  - Description: Time to append and fsync one log record
  - Buckets: Default Prometheus buckets

quill_wal_bytes_written_total:
  - Type: Counter
  - Description: Bytes appended to the write-ahead log

quill_recovery_duration_seconds:
  - Type: Histogram
  - Description: Time to run crash recovery at open
  - Buckets: 0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30

Index Metrics:

quill_btree_splits_total:
  - Type: Counter
  - Description: B+ tree node splits

quill_page_allocations_total:
  - Type: Counter
  - Description: New pages appended to the data file

Catalog/Executor Metrics:

quill_rows_inserted_total:
  - Type: Counter
  - Description: Rows inserted through the executor

quill_tables_total:
  - Type: Gauge
  - Description: Tables currently in the catalog
  - Example: quill_tables_total 4

# Usage

Updating Counter and Gauge Metrics:

	import "github.com/cuemby/quill/pkg/metrics"

	// Cache bookkeeping
	metrics.CacheHits.WithLabelValues("page").Inc()
	metrics.CacheMisses.WithLabelValues("page").Inc()
	metrics.CacheResident.WithLabelValues("page").Set(128)

	// Transaction bookkeeping
	metrics.TxActive.Inc()
	metrics.TxCommittedTotal.Inc()

Recording Histogram Observations:

	// Direct observation
	metrics.LockWaitDuration.Observe(0.003) // 3ms

	// Using Timer helper
	timer := metrics.NewTimer()
	// ... append a WAL record ...
	timer.ObserveDuration(metrics.WALAppendDuration)

Running the Collector:

	collector := metrics.NewCollector(func() metrics.Stats {
		return metrics.Stats{TableCount: len(eng.Catalog().TableNames())}
	})
	collector.Start()
	defer collector.Stop()

Complete Example:

	package main

	import (
		"net/http"

		"github.com/cuemby/quill/pkg/metrics"
	)

	func main() {
		// ... open an engine ...

		collector := metrics.NewCollector(func() metrics.Stats {
			return metrics.Stats{TableCount: 3}
		})
		collector.Start()
		defer collector.Stop()

		metrics.RowsInsertedTotal.Inc()

		// Expose metrics endpoint
		http.Handle("/metrics", metrics.Handler())
		http.ListenAndServe(":9090", nil)
	}

# Integration Points

This package integrates with:

  - pkg/cache (under pkg/pagecache and pkg/dm): Cache hit/miss/eviction/resident metrics
  - pkg/vm: Transaction active/committed/aborted, version skips, lock-wait duration
  - pkg/locktable: Deadlock counter
  - pkg/wal, pkg/recovery: Append duration, bytes written, recovery duration
  - pkg/bplustree: Split counter
  - pkg/pagecache: Page allocation counter
  - pkg/executor: Rows inserted
  - Collector (started by pkg/engine): Tables total
  - Prometheus: Scrapes /metrics endpoint

# Design Patterns

Package Init Registration:
  - All metrics registered in init() function
  - MustRegister panics on duplicate registration
  - Ensures metrics available before main()
  - No runtime registration needed

Label Discipline:
  - Use WithLabelValues for cardinality-bounded labels (cache name only)
  - Avoid high-cardinality labels (transaction IDs, row UIDs)
  - Keep label count low (< 5 per metric)

Timer Pattern:
  - Create timer at operation start
  - Defer or explicitly call ObserveDuration
  - Automatically calculates elapsed time
  - Supports both simple and vector histograms

StatsFunc Indirection:
  - Collector depends on a caller-supplied func() Stats, not a concrete
    engine type
  - Keeps pkg/metrics free of an import cycle back through pkg/engine,
    which itself depends on pkg/metrics via pkg/dm/pkg/wal/pkg/vm

Global Metrics:
  - Package-level variables for all metrics
  - Accessible from any quill package
  - Thread-safe concurrent updates
  - No initialization required by callers

# Performance Characteristics

Metric Update Overhead:
  - Gauge set/inc: ~50ns per operation
  - Counter inc: ~50ns per operation
  - Histogram observe: ~200ns per operation
  - Labels: +100ns per label value
  - Negligible impact on hot path

Memory Usage:
  - Per metric: ~1KB baseline
  - Per label combination: ~100 bytes
  - Histogram buckets: ~50 bytes each

Scrape Performance:
  - Metrics gathering: ~1-5ms for full scrape
  - Recommendation: Scrape interval >= 15s
  - Concurrent scrapes: Safe (read-only)

# Troubleshooting

Common Issues:

Missing Metrics:
  - Symptom: Metric not appearing in /metrics output
  - Check: Metric registered in init() function
  - Check: MustRegister called (panics if duplicate)
  - Solution: Verify metric variable is exported

High Cardinality:
  - Symptom: Prometheus memory usage grows
  - Cause: Using row UIDs or timestamps as labels
  - Solution: Remove high-cardinality labels, aggregate differently

Stale Metrics:
  - Symptom: Metrics not updating
  - Cause: Code not calling metric update methods, or Collector never
    started
  - Solution: Confirm Collector.Start() was called and instrument the
    missing code path

# Monitoring

Prometheus Queries (PromQL):

Cache Health:
  - Hit ratio: rate(quill_cache_hits_total[5m]) / (rate(quill_cache_hits_total[5m]) + rate(quill_cache_misses_total[5m]))
  - Resident entries: quill_cache_resident

Transaction Health:
  - Abort ratio: rate(quill_tx_aborted_total[5m]) / rate(quill_tx_committed_total[5m])
  - Deadlock rate: rate(quill_deadlocks_total[5m])

WAL/Recovery:
  - p95 append latency: histogram_quantile(0.95, quill_wal_append_duration_seconds_bucket)
  - Last recovery cost: quill_recovery_duration_seconds

# Alerting Rules

Recommended Prometheus alerts:

High Abort Rate:
  - Alert: rate(quill_tx_aborted_total[5m]) > rate(quill_tx_committed_total[5m])
  - Description: More transactions aborting than committing
  - Action: Check for deadlocks or version-skip contention

Frequent Deadlocks:
  - Alert: rate(quill_deadlocks_total[5m]) > 0.1
  - Description: Lock table is detecting deadlocks regularly
  - Action: Review transaction access order in callers

Slow WAL Appends:
  - Alert: histogram_quantile(0.95, quill_wal_append_duration_seconds_bucket) > 0.05
  - Description: p95 WAL append latency exceeds 50ms
  - Action: Check underlying disk latency and fsync behavior

# Grafana Dashboards

Recommended dashboard panels:

Storage Overview:
  - Gauge: Tables total
  - Time series: Rows inserted rate
  - Time series: Cache hit ratio by cache name

Transaction Health:
  - Time series: Active transactions
  - Time series: Committed vs aborted rate
  - Time series: Deadlocks and version skips

WAL/Recovery:
  - Time series: WAL append duration percentiles
  - Single stat: Last recovery duration
  - Time series: WAL bytes written rate

# See Also

  - Prometheus documentation: https://prometheus.io/docs/
  - Prometheus client library: https://github.com/prometheus/client_golang
  - PromQL tutorial: https://prometheus.io/docs/prometheus/latest/querying/basics/
  - Histogram best practices: https://prometheus.io/docs/practices/histograms/
*/
package metrics
