package monitoring

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Collector drives the background refresh loop and fans each cycle's
// snapshot out to a subscriber channel. The same guarantees apply whether
// refreshes come from here or from a caller invoking Monitor.Refresh
// directly; the Monitor's lock serializes them.
type Collector struct {
	monitor  *Monitor
	interval time.Duration

	// OnCycle, when set, observes the duration of every completed cycle.
	OnCycle func(elapsed time.Duration)
}

// NewCollector wraps monitor in a loop running one refresh per interval.
func NewCollector(monitor *Monitor, interval time.Duration) *Collector {
	return &Collector{monitor: monitor, interval: interval}
}

// Run refreshes until ctx is done, sending a snapshot to out after every
// cycle. When a cycle overruns the cadence the next one starts immediately;
// cycles are never skipped or coalesced. A subscriber that cannot keep up
// misses snapshots rather than stalling sampling.
func (c *Collector) Run(ctx context.Context, out chan<- Snapshot) {
	log.Info().Dur("interval", c.interval).Msg("collector started")
	for {
		start := time.Now()
		c.monitor.Refresh()
		elapsed := time.Since(start)
		if c.OnCycle != nil {
			c.OnCycle(elapsed)
		}

		if out != nil {
			select {
			case out <- c.monitor.Snapshot():
			default:
			}
		}

		wait := c.interval - elapsed
		if wait <= 0 {
			select {
			case <-ctx.Done():
				log.Info().Msg("collector stopped")
				return
			default:
			}
			continue
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("collector stopped")
			return
		case <-time.After(wait):
		}
	}
}
