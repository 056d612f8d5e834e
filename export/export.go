// Package export renders a snapshot as CSV or JSON for saving or piping
// elsewhere. It formats data only; where the bytes go is the caller's
// business.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sysdash/monitoring"
)

const bytesPerGiB = 1024 * 1024 * 1024

// jsonExport reshapes a snapshot into the export schema: memory in GiB,
// process memory in MiB.
type jsonExport struct {
	Timestamp int64            `json:"timestamp"`
	CPUUsage  float64          `json:"cpu_usage"`
	Memory    jsonMemory       `json:"memory"`
	Processes []jsonProcessRow `json:"processes"`
}

type jsonMemory struct {
	UsedGB  float64 `json:"used_gb"`
	FreeGB  float64 `json:"free_gb"`
	TotalGB float64 `json:"total_gb"`
}

type jsonProcessRow struct {
	Name     string  `json:"name"`
	CPUUsage float64 `json:"cpu_usage"`
	MemoryMB uint64  `json:"memory_mb"`
	PIDs     []int32 `json:"pids"`
}

// WriteJSON writes snap to w as indented JSON.
func WriteJSON(w io.Writer, snap monitoring.Snapshot) error {
	out := jsonExport{
		Timestamp: snap.Timestamp.Unix(),
		CPUUsage:  snap.CPUUsage,
		Memory: jsonMemory{
			UsedGB:  float64(snap.Memory.Used) / bytesPerGiB,
			FreeGB:  float64(snap.Memory.Free) / bytesPerGiB,
			TotalGB: float64(snap.Memory.Total) / bytesPerGiB,
		},
		Processes: make([]jsonProcessRow, 0, len(snap.Processes)),
	}
	for _, p := range snap.Processes {
		out.Processes = append(out.Processes, jsonProcessRow{
			Name:     p.Name,
			CPUUsage: p.CPUUsage,
			MemoryMB: p.MemoryUsage / 1024 / 1024,
			PIDs:     p.PIDs,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// WriteCSV writes snap to w as CSV: a header, two System rows for overall
// CPU and memory, then one Process row per combined entry.
func WriteCSV(w io.Writer, snap monitoring.Snapshot) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"Type", "Name", "CPU Usage %", "Memory MB", "PIDs"},
		{"System", "CPU", fmt.Sprintf("%.2f", snap.CPUUsage), "", ""},
		{"System", "Memory", "", fmt.Sprintf("%.2f", float64(snap.Memory.Used)/1024/1024), ""},
	}
	for _, p := range snap.Processes {
		pids := make([]string, 0, len(p.PIDs))
		for _, pid := range p.PIDs {
			pids = append(pids, strconv.Itoa(int(pid)))
		}
		records = append(records, []string{
			"Process",
			p.Name,
			fmt.Sprintf("%.2f", p.CPUUsage),
			strconv.FormatUint(p.MemoryUsage/1024/1024, 10),
			strings.Join(pids, ","),
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
