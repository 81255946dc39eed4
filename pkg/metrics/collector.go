package metrics

import "time"

// Stats is a snapshot of the gauges Collector refreshes periodically.
// It is a plain struct rather than a concrete engine type so this
// package never has to import pkg/engine (which itself depends on
// pkg/metrics through pkg/dm/pkg/wal/pkg/vm).
type Stats struct {
	TableCount int
}

// StatsFunc produces a fresh Stats snapshot; the caller (typically
// pkg/engine or cmd/quill) supplies one backed by its own catalog.
type StatsFunc func() Stats

// Collector polls a StatsFunc on an interval and republishes it as
// gauges.
type Collector struct {
	stats  StatsFunc
	stopCh chan struct{}
}

// NewCollector wires a Collector around stats.
func NewCollector(stats StatsFunc) *Collector {
	return &Collector{stats: stats, stopCh: make(chan struct{})}
}

// Start begins polling on a 15-second interval, collecting once
// immediately.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts polling.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	s := c.stats()
	TablesTotal.Set(float64(s.TableCount))
}
