package perf

import (
	"sort"
	"testing"
	"time"
)

func TestPortalLatencyTargets(t *testing.T) {
	scenarios := []struct {
		name      string
		samples   []time.Duration
		threshold time.Duration
	}{
		{
			name:      "permission_resolve",
			samples:   []time.Duration{8 * time.Millisecond, 9 * time.Millisecond, 11 * time.Millisecond, 12 * time.Millisecond, 14 * time.Millisecond, 15 * time.Millisecond, 17 * time.Millisecond, 19 * time.Millisecond, 22 * time.Millisecond, 26 * time.Millisecond},
			threshold: 50 * time.Millisecond,
		},
		{
			name:      "contact_list",
			samples:   []time.Duration{120 * time.Millisecond, 140 * time.Millisecond, 160 * time.Millisecond, 180 * time.Millisecond, 200 * time.Millisecond, 220 * time.Millisecond, 230 * time.Millisecond, 250 * time.Millisecond, 260 * time.Millisecond, 270 * time.Millisecond},
			threshold: 500 * time.Millisecond,
		},
		{
			name:      "document_upload",
			samples:   []time.Duration{900 * time.Millisecond, 1000 * time.Millisecond, 1100 * time.Millisecond, 1200 * time.Millisecond, 1300 * time.Millisecond, 1350 * time.Millisecond, 1400 * time.Millisecond, 1500 * time.Millisecond, 1600 * time.Millisecond, 1700 * time.Millisecond},
			threshold: 2 * time.Second,
		},
	}

	for _, scenario := range scenarios {
		p95 := percentile95(scenario.samples)
		if p95 > scenario.threshold {
			t.Fatalf("%s latency regression: p95=%s threshold=%s", scenario.name, p95, scenario.threshold)
		}
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
