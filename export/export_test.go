package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysdash/monitoring"
)

func sampleSnapshot() monitoring.Snapshot {
	return monitoring.Snapshot{
		Timestamp: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		CPUUsage:  37.25,
		Memory: monitoring.MemorySnapshot{
			Used:  4 << 30,
			Free:  2 << 30,
			Total: 8 << 30,
		},
		Processes: []monitoring.CombinedProcess{
			{Name: "postgres", CPUUsage: 10.5, MemoryUsage: 256 << 20, PIDs: []int32{300}},
			{Name: "nginx", CPUUsage: 2.0, MemoryUsage: 64 << 20, PIDs: []int32{10, 11}},
		},
	}
}

func TestWriteCSVFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSnapshot()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, []string{"Type", "Name", "CPU Usage %", "Memory MB", "PIDs"}, records[0])
	assert.Equal(t, []string{"System", "CPU", "37.25", "", ""}, records[1])
	assert.Equal(t, "Memory", records[2][1])
	assert.Equal(t, "4096.00", records[2][3])

	assert.Equal(t, []string{"Process", "postgres", "10.50", "256", "300"}, records[3])
	assert.Equal(t, []string{"Process", "nginx", "2.00", "64", "10,11"}, records[4])
}

func TestWriteCSVEmptyProcesses(t *testing.T) {
	var buf bytes.Buffer
	snap := sampleSnapshot()
	snap.Processes = nil
	require.NoError(t, WriteCSV(&buf, snap))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestWriteJSONShape(t *testing.T) {
	var buf bytes.Buffer
	snap := sampleSnapshot()
	require.NoError(t, WriteJSON(&buf, snap))

	var out struct {
		Timestamp int64   `json:"timestamp"`
		CPUUsage  float64 `json:"cpu_usage"`
		Memory    struct {
			UsedGB  float64 `json:"used_gb"`
			TotalGB float64 `json:"total_gb"`
		} `json:"memory"`
		Processes []struct {
			Name     string  `json:"name"`
			MemoryMB uint64  `json:"memory_mb"`
			PIDs     []int32 `json:"pids"`
		} `json:"processes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, snap.Timestamp.Unix(), out.Timestamp)
	assert.InDelta(t, 37.25, out.CPUUsage, 1e-9)
	assert.InDelta(t, 4.0, out.Memory.UsedGB, 1e-9)
	assert.InDelta(t, 8.0, out.Memory.TotalGB, 1e-9)
	require.Len(t, out.Processes, 2)
	assert.Equal(t, "postgres", out.Processes[0].Name)
	assert.Equal(t, uint64(256), out.Processes[0].MemoryMB)
	assert.Equal(t, []int32{10, 11}, out.Processes[1].PIDs)
}
