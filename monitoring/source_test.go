package monitoring

import (
	"testing"

	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveInterfacesFiltersZeroTraffic(t *testing.T) {
	counters := []gopsnet.IOCountersStat{
		{Name: "lo", BytesRecv: 0, BytesSent: 0},
		{Name: "eth0", BytesRecv: 1500, BytesSent: 700},
		{Name: "wlan0", BytesRecv: 0, BytesSent: 42},
		{Name: "dummy0", BytesRecv: 0, BytesSent: 0},
	}

	samples := activeInterfaces(counters)
	require.Len(t, samples, 2)
	assert.Equal(t, NetworkInterfaceSample{Name: "eth0", RxBytes: 1500, TxBytes: 700}, samples[0])
	assert.Equal(t, NetworkInterfaceSample{Name: "wlan0", RxBytes: 0, TxBytes: 42}, samples[1])
	for _, s := range samples {
		assert.Positive(t, s.RxBytes+s.TxBytes)
	}
}

func TestActiveInterfacesEmpty(t *testing.T) {
	assert.Empty(t, activeInterfaces(nil))
	assert.Empty(t, activeInterfaces([]gopsnet.IOCountersStat{{Name: "lo"}}))
}
