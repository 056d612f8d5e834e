package monitoring

// combineByName folds the raw process table into one CombinedProcess per
// process name, summing cpu and memory usage and collecting member pids.
// Unrelated processes sharing a name collapse into one entry; that mirrors
// how the process table is presented and is intentional. Output order is
// not significant.
func combineByName(raw map[int32]RawProcessSample) []CombinedProcess {
	byName := make(map[string]*CombinedProcess)
	for _, sample := range raw {
		entry, ok := byName[sample.Name]
		if !ok {
			entry = &CombinedProcess{Name: sample.Name}
			byName[sample.Name] = entry
		}
		entry.CPUUsage += sample.CPUUsage
		entry.MemoryUsage += sample.MemoryBytes
		entry.PIDs = append(entry.PIDs, sample.PID)
	}
	combined := make([]CombinedProcess, 0, len(byName))
	for _, entry := range byName {
		combined = append(combined, *entry)
	}
	return combined
}
