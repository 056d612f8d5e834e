package monitoring

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Default sampling parameters. The CPU interval is the wait between the two
// counter samples of a cycle; the disk interval is the cooldown between two
// filesystem enumerations, which are much more expensive than the other
// probes.
const (
	DefaultCPUSampleInterval   = 500 * time.Millisecond
	DefaultDiskRefreshInterval = 60 * time.Second
)

// Options tunes a Monitor. Zero values select the defaults. The Disable
// flags turn individual probes off entirely; a disabled probe behaves like
// one that always fails, leaving its cached value untouched.
type Options struct {
	CPUSampleInterval   time.Duration
	DiskRefreshInterval time.Duration

	DisableMemory    bool
	DisableDisks     bool
	DisableNetworks  bool
	DisableProcesses bool
}

// Monitor owns the latest sampled state of the machine behind one exclusive
// lock. A background collector (or any caller) mutates it through Refresh;
// any number of goroutines read it through the query methods. Queries copy
// what they need while holding the lock and never touch the OS.
//
// Refresh holds the lock across both CPU sample phases. That blocks readers
// for the sample interval but guarantees no other mutation can interleave
// the two samples of a cycle.
type Monitor struct {
	mu     sync.Mutex
	source MetricSource
	opts   Options

	cpuSampleInterval   time.Duration
	diskRefreshInterval time.Duration

	cpuUsage        float64
	memory          MemorySnapshot
	disks           []DiskSample
	networks        []NetworkInterfaceSample
	procs           map[int32]RawProcessSample
	combined        []CombinedProcess
	lastDiskRefresh time.Time
}

// NewMonitor creates a Monitor over the given source. State is empty until
// the first Refresh.
func NewMonitor(source MetricSource, opts Options) *Monitor {
	if opts.CPUSampleInterval <= 0 {
		opts.CPUSampleInterval = DefaultCPUSampleInterval
	}
	if opts.DiskRefreshInterval <= 0 {
		opts.DiskRefreshInterval = DefaultDiskRefreshInterval
	}
	return &Monitor{
		source:              source,
		opts:                opts,
		cpuSampleInterval:   opts.CPUSampleInterval,
		diskRefreshInterval: opts.DiskRefreshInterval,
		procs:               make(map[int32]RawProcessSample),
	}
}

// Refresh runs one full sampling cycle and replaces the cached state.
// Each sub-probe is best-effort: on failure the previous value stays.
func (m *Monitor) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Two-phase CPU sampling. The kernel counters are cumulative, so the
	// percentage is only defined over a measured interval.
	total1, idle1, err1 := m.source.CPUTimes()
	time.Sleep(m.cpuSampleInterval)
	total2, idle2, err2 := m.source.CPUTimes()
	if err1 == nil && err2 == nil {
		if dt := total2 - total1; dt > 0 {
			usage := 100 * (1 - (idle2-idle1)/dt)
			if usage < 0 {
				usage = 0
			}
			m.cpuUsage = usage
		}
	}

	if !m.opts.DisableMemory {
		if snap, err := m.source.Memory(); err == nil {
			m.memory = snap
		} else {
			log.Debug().Err(err).Msg("memory probe failed, keeping cached snapshot")
		}
	}

	if !m.opts.DisableDisks && time.Since(m.lastDiskRefresh) >= m.diskRefreshInterval {
		if disks, err := m.source.Disks(); err == nil {
			m.disks = disks
			m.lastDiskRefresh = time.Now()
		} else {
			log.Debug().Err(err).Msg("disk probe failed, keeping cached list")
		}
	}

	if !m.opts.DisableNetworks {
		if nets, err := m.source.Networks(); err == nil {
			m.networks = nets
		} else {
			log.Debug().Err(err).Msg("network probe failed, keeping cached list")
		}
	}

	if !m.opts.DisableProcesses {
		if samples, err := m.source.Processes(); err == nil {
			procs := make(map[int32]RawProcessSample, len(samples))
			for _, s := range samples {
				procs[s.PID] = s
			}
			m.procs = procs
			m.combined = combineByName(procs)
		} else {
			log.Debug().Err(err).Msg("process probe failed, keeping cached table")
		}
	}
}

// GlobalCPUUsage returns the last sampled system-wide CPU percentage.
func (m *Monitor) GlobalCPUUsage() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpuUsage
}

// LastDiskRefresh returns when the disk list was last enumerated. Callers
// can compare successive values to tell enumerating cycles from cache hits.
func (m *Monitor) LastDiskRefresh() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastDiskRefresh
}

// MemoryInfo returns the cached memory snapshot.
func (m *Monitor) MemoryInfo() MemorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memory
}

// DiskInfo returns a copy of the cached disk list. The list only changes
// when the disk cooldown window has elapsed.
func (m *Monitor) DiskInfo() []DiskSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DiskSample, len(m.disks))
	copy(out, m.disks)
	return out
}

// NetworkInfo returns a copy of the cached interface list.
func (m *Monitor) NetworkInfo() []NetworkInterfaceSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NetworkInterfaceSample, len(m.networks))
	copy(out, m.networks)
	return out
}

// CombinedProcessList returns the cached per-name aggregation. The entries
// are built fresh each cycle and never mutated afterwards, so a shallow
// copy of the slice is enough.
func (m *Monitor) CombinedProcessList() []CombinedProcess {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CombinedProcess, len(m.combined))
	copy(out, m.combined)
	return out
}

// UsageForPid looks up the raw sample for pid. The second return is false
// when the pid is absent from the current table.
func (m *Monitor) UsageForPid(pid int32) (PidUsage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sample, ok := m.procs[pid]
	if !ok {
		return PidUsage{}, false
	}
	return PidUsage{CPUUsage: sample.CPUUsage, MemoryBytes: sample.MemoryBytes}, true
}

// ProcessDetails returns the richer fields for pid, or false when absent.
func (m *Monitor) ProcessDetails(pid int32) (ProcessDetails, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sample, ok := m.procs[pid]
	if !ok {
		return ProcessDetails{}, false
	}
	return ProcessDetails{
		Command:   sample.Command,
		StartTime: sample.StartTime,
		ParentPID: sample.ParentPID,
	}, true
}

// Snapshot copies everything the monitor caches under one lock acquisition.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		Timestamp: time.Now(),
		CPUUsage:  m.cpuUsage,
		Memory:    m.memory,
		Disks:     make([]DiskSample, len(m.disks)),
		Networks:  make([]NetworkInterfaceSample, len(m.networks)),
		Processes: make([]CombinedProcess, len(m.combined)),
	}
	copy(snap.Disks, m.disks)
	copy(snap.Networks, m.networks)
	copy(snap.Processes, m.combined)
	return snap
}

// KillProcess forcefully terminates pid. The pid must be present in the
// current raw table; the table itself is only updated on the next refresh.
func (m *Monitor) KillProcess(pid int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sample, ok := m.procs[pid]
	if !ok {
		return newProcessError("kill", pid, "process not found in current table", ErrorCodeProcessNotFound)
	}
	log.Info().Int32("pid", pid).Str("name", sample.Name).Msg("killing process")
	if err := m.source.KillProcess(pid); err != nil {
		return &ProcessError{
			Op: "kill", PID: pid,
			Message: "kill signal failed",
			Code:    ErrorCodeOperationFailed,
			Err:     err,
		}
	}
	return nil
}

// TerminateProcess asks pid to exit gracefully. On platforms without a
// graceful-terminate primitive this reports NotSupported without touching
// the process; it never degrades to a kill.
func (m *Monitor) TerminateProcess(pid int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sample, ok := m.procs[pid]
	if !ok {
		return newProcessError("terminate", pid, "process not found in current table", ErrorCodeProcessNotFound)
	}
	if !m.source.SupportsTerminate() {
		return newProcessError("terminate", pid, "graceful terminate not available on this platform", ErrorCodeNotSupported)
	}
	log.Info().Int32("pid", pid).Str("name", sample.Name).Msg("terminating process")
	if err := m.source.TerminateProcess(pid); err != nil {
		return &ProcessError{
			Op: "terminate", PID: pid,
			Message: "terminate signal failed",
			Code:    ErrorCodeOperationFailed,
			Err:     err,
		}
	}
	return nil
}
