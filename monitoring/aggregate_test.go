package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineByNameEmpty(t *testing.T) {
	assert.Empty(t, combineByName(nil))
	assert.Empty(t, combineByName(map[int32]RawProcessSample{}))
}

func TestCombineByNameSingletons(t *testing.T) {
	raw := map[int32]RawProcessSample{
		1: {PID: 1, Name: "init", CPUUsage: 0.5, MemoryBytes: 1 << 20},
		2: {PID: 2, Name: "kthreadd", CPUUsage: 0.0, MemoryBytes: 0},
	}
	combined := combineByName(raw)
	require.Len(t, combined, 2)
	for _, c := range combined {
		assert.Len(t, c.PIDs, 1)
		sample := raw[c.PIDs[0]]
		assert.Equal(t, sample.Name, c.Name)
		assert.Equal(t, sample.CPUUsage, c.CPUUsage)
		assert.Equal(t, sample.MemoryBytes, c.MemoryUsage)
	}
}

func TestCombineByNameMerges(t *testing.T) {
	raw := map[int32]RawProcessSample{
		10: {PID: 10, Name: "nginx", CPUUsage: 1.0, MemoryBytes: 10 << 20},
		11: {PID: 11, Name: "nginx", CPUUsage: 2.0, MemoryBytes: 20 << 20},
		12: {PID: 12, Name: "nginx", CPUUsage: 4.0, MemoryBytes: 40 << 20},
		20: {PID: 20, Name: "redis", CPUUsage: 0.5, MemoryBytes: 5 << 20},
	}
	combined := combineByName(raw)
	require.Len(t, combined, 2)

	byName := make(map[string]CombinedProcess, len(combined))
	for _, c := range combined {
		byName[c.Name] = c
	}

	nginx, ok := byName["nginx"]
	require.True(t, ok)
	assert.InDelta(t, 7.0, nginx.CPUUsage, 1e-9)
	assert.Equal(t, uint64(70<<20), nginx.MemoryUsage)
	assert.ElementsMatch(t, []int32{10, 11, 12}, nginx.PIDs)

	redis, ok := byName["redis"]
	require.True(t, ok)
	assert.Equal(t, []int32{20}, redis.PIDs)
}
