package monitoring

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// MetricSource abstracts the OS-specific probes behind capability-named
// operations. Every probe is best-effort: when one fails the Monitor keeps
// its previously cached value rather than failing the whole cycle.
type MetricSource interface {
	// CPUTimes returns the cumulative busy/idle counters in seconds.
	// A usage percentage only means anything as a delta between two
	// time-separated calls; the Monitor does that arithmetic.
	CPUTimes() (total, idle float64, err error)
	Memory() (MemorySnapshot, error)
	Disks() ([]DiskSample, error)
	Networks() ([]NetworkInterfaceSample, error)
	Processes() ([]RawProcessSample, error)

	KillProcess(pid int32) error
	TerminateProcess(pid int32) error
	// SupportsTerminate reports whether the platform has a graceful
	// terminate primitive distinct from a forceful kill.
	SupportsTerminate() bool
}

// systemSource is the gopsutil-backed MetricSource used in production.
type systemSource struct{}

// NewSystemSource returns a MetricSource reading from the local OS.
func NewSystemSource() MetricSource {
	return &systemSource{}
}

func (s *systemSource) CPUTimes() (float64, float64, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return 0, 0, err
	}
	if len(times) == 0 {
		return 0, 0, nil
	}
	t := times[0]
	return t.Total(), t.Idle + t.Iowait, nil
}

func (s *systemSource) Memory() (MemorySnapshot, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemorySnapshot{}, err
	}
	swap, err := mem.SwapMemory()
	if err != nil {
		return MemorySnapshot{}, err
	}
	snap := MemorySnapshot{
		Used:      vm.Used,
		Free:      vm.Free,
		Total:     vm.Total,
		Available: vm.Available,
		SwapUsed:  swap.Used,
		SwapTotal: swap.Total,
	}
	// Some kernels report available a page or two above total right after
	// boot; clamp so the snapshot invariants always hold.
	if snap.Available > snap.Total {
		snap.Available = snap.Total
	}
	if snap.Used > snap.Total {
		snap.Used = snap.Total
	}
	if snap.Free > snap.Total {
		snap.Free = snap.Total
	}
	return snap, nil
}

func (s *systemSource) Disks() ([]DiskSample, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}
	samples := make([]DiskSample, 0, len(partitions))
	for _, part := range partitions {
		usage, err := disk.Usage(part.Mountpoint)
		if err != nil {
			// Unreadable mounts (fuse, permissions) are skipped, not fatal.
			continue
		}
		total := usage.Total
		avail := usage.Free
		if avail > total {
			avail = total
		}
		samples = append(samples, DiskSample{
			Name:       part.Device,
			Filesystem: part.Fstype,
			MountPoint: part.Mountpoint,
			Used:       total - avail,
			Available:  avail,
			Total:      total,
		})
	}
	return samples, nil
}

func (s *systemSource) Networks() ([]NetworkInterfaceSample, error) {
	counters, err := gopsnet.IOCounters(true)
	if err != nil {
		return nil, err
	}
	return activeInterfaces(counters), nil
}

// activeInterfaces keeps only interfaces that have moved traffic since boot.
func activeInterfaces(counters []gopsnet.IOCountersStat) []NetworkInterfaceSample {
	samples := make([]NetworkInterfaceSample, 0, len(counters))
	for _, c := range counters {
		if c.BytesRecv+c.BytesSent == 0 {
			continue
		}
		samples = append(samples, NetworkInterfaceSample{
			Name:    c.Name,
			RxBytes: c.BytesRecv,
			TxBytes: c.BytesSent,
		})
	}
	return samples
}

func (s *systemSource) Processes() ([]RawProcessSample, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	samples := make([]RawProcessSample, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			// Kernel threads and processes that exited mid-walk.
			continue
		}
		sample := RawProcessSample{PID: p.Pid, Name: name}
		if cpuPct, err := p.CPUPercent(); err == nil {
			sample.CPUUsage = cpuPct
		}
		if memInfo, err := p.MemoryInfo(); err == nil && memInfo != nil {
			sample.MemoryBytes = memInfo.RSS
		}
		if cmd, err := p.Cmdline(); err == nil && cmd != "" {
			sample.Command = cmd
		} else {
			sample.Command = name
		}
		if createMs, err := p.CreateTime(); err == nil {
			sample.StartTime = time.UnixMilli(createMs)
		}
		if ppid, err := p.Ppid(); err == nil {
			sample.ParentPID = ppid
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (s *systemSource) KillProcess(pid int32) error {
	p, err := process.NewProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

func (s *systemSource) TerminateProcess(pid int32) error {
	p, err := process.NewProcess(pid)
	if err != nil {
		return err
	}
	return p.Terminate()
}

func (s *systemSource) SupportsTerminate() bool {
	// Windows has no SIGTERM equivalent; gopsutil's Terminate degenerates
	// to a forceful TerminateProcess there, which callers must not mistake
	// for a graceful shutdown request.
	return runtime.GOOS != "windows"
}
