package monitoring

import "time"

// RawProcessSample is one process as enumerated from the OS in a single
// sampling cycle.
type RawProcessSample struct {
	PID         int32     `json:"pid"`
	Name        string    `json:"name"`
	CPUUsage    float64   `json:"cpu_usage"`
	MemoryBytes uint64    `json:"memory_bytes"`
	Command     string    `json:"command"`
	StartTime   time.Time `json:"start_time"`
	ParentPID   int32     `json:"parent_pid"`
}

// CombinedProcess aggregates every live process sharing one name.
type CombinedProcess struct {
	Name        string  `json:"name"`
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage uint64  `json:"memory_usage"`
	PIDs        []int32 `json:"pids"`
}

// MemorySnapshot is system memory at one instant, in bytes.
type MemorySnapshot struct {
	Used      uint64 `json:"used"`
	Free      uint64 `json:"free"`
	Total     uint64 `json:"total"`
	Available uint64 `json:"available"`
	SwapUsed  uint64 `json:"swap_used"`
	SwapTotal uint64 `json:"swap_total"`
}

// DiskSample is one mounted filesystem. Used and Available always sum to
// Total.
type DiskSample struct {
	Name       string `json:"name"`
	Filesystem string `json:"filesystem"`
	MountPoint string `json:"mount_point"`
	Used       uint64 `json:"used"`
	Available  uint64 `json:"available"`
	Total      uint64 `json:"total"`
}

// NetworkInterfaceSample carries the cumulative byte counters of one
// interface since boot.
type NetworkInterfaceSample struct {
	Name    string `json:"name"`
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`
}

// PidUsage is the per-pid usage pair returned by targeted lookups.
type PidUsage struct {
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryBytes uint64  `json:"memory_bytes"`
}

// ProcessDetails holds the slower-moving fields of one process.
type ProcessDetails struct {
	Command   string    `json:"command"`
	StartTime time.Time `json:"start_time"`
	ParentPID int32     `json:"parent_pid"`
}

// Snapshot is everything the monitor caches, copied at one instant. It is
// what the collector broadcasts after each cycle.
type Snapshot struct {
	Timestamp time.Time                `json:"timestamp"`
	CPUUsage  float64                  `json:"cpu_usage"`
	Memory    MemorySnapshot           `json:"memory"`
	Disks     []DiskSample             `json:"disks"`
	Networks  []NetworkInterfaceSample `json:"networks"`
	Processes []CombinedProcess        `json:"processes"`
}
