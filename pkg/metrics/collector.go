package metrics

import "time"

// Gauges is the subset of a running scheduler the Collector samples on
// each tick. pkg/scheduler.Scheduler satisfies this directly; it is
// expressed as an interface here so metrics never imports pkg/scheduler
// and the two packages stay decoupled the way module composes both.
type Gauges interface {
	FreeCount() int
	TaskQueueLen() int
	ISRQueueLen() int
	ParkedCount() int
}

// Collector periodically samples a running scheduler's gauges into the
// package-level Prometheus metrics.
type Collector struct {
	source   Gauges
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector builds a Collector over source, sampling every interval
// (DefaultInterval if zero or negative).
func NewCollector(source Gauges, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Collector{source: source, interval: interval, stopCh: make(chan struct{})}
}

// DefaultInterval is used when NewCollector is given a non-positive
// interval.
const DefaultInterval = 5 * time.Second

// Start begins sampling in a background goroutine. It is ambient
// demo-process behavior — the core packages themselves only increment
// counters inline, never run a goroutine of their own.
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
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

// Stop halts sampling.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	PoolFree.Set(float64(c.source.FreeCount()))
	TaskQueueDepth.Set(float64(c.source.TaskQueueLen()))
	ISRQueueDepth.Set(float64(c.source.ISRQueueLen()))
	ParkedResponses.Set(float64(c.source.ParkedCount()))
}
