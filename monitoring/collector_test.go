package monitoring

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorPublishesSnapshots(t *testing.T) {
	src := &fakeSource{
		cpuSamples: [][2]float64{{100, 50}, {110, 55}},
		procs:      testProcs(),
	}
	mon := newTestMonitor(src)
	collector := NewCollector(mon, 10*time.Millisecond)

	var cycles atomic.Int64
	collector.OnCycle = func(time.Duration) { cycles.Add(1) }

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Snapshot, 8)
	done := make(chan struct{})
	go func() {
		collector.Run(ctx, out)
		close(done)
	}()

	var snap Snapshot
	select {
	case snap = <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published")
	}
	assert.False(t, snap.Timestamp.IsZero())
	assert.NotEmpty(t, snap.Processes)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop on cancel")
	}
	require.Greater(t, cycles.Load(), int64(0))
}

func TestCollectorToleratesFullSubscriber(t *testing.T) {
	src := &fakeSource{procs: testProcs()}
	mon := newTestMonitor(src)
	collector := NewCollector(mon, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Capacity one and never drained: sends past the first must be dropped
	// without stalling the loop.
	out := make(chan Snapshot, 1)
	done := make(chan struct{})
	go func() {
		collector.Run(ctx, out)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector stalled behind a full subscriber")
	}
}

func TestCollectorNilSubscriber(t *testing.T) {
	src := &fakeSource{procs: testProcs()}
	mon := newTestMonitor(src)
	collector := NewCollector(mon, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	collector.Run(ctx, nil)
	assert.NotEmpty(t, mon.CombinedProcessList())
}
