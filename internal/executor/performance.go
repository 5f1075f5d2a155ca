package executor

import (
	"context"
	"sort"
	"time"

	"api-test-engine/internal/types"
)

// PerformanceStats summarizes the latency series of a performance replay.
type PerformanceStats struct {
	Iterations int           `json:"iterations"`
	Min        time.Duration `json:"min"`
	Max        time.Duration `json:"max"`
	Mean       time.Duration `json:"mean"`
	P50        time.Duration `json:"p50"`
	P90        time.Duration `json:"p90"`
	P99        time.Duration `json:"p99"`
}

// RunPerformance replays one logical case sequentially and summarizes the
// observed response times.
func (e *Executor) RunPerformance(ctx context.Context, tc types.TestCase, iterations int) ([]types.TestResult, PerformanceStats) {
	if iterations <= 0 {
		iterations = e.cfg.PerformanceIterations
	}
	results := make([]types.TestResult, 0, iterations)
	durations := make([]time.Duration, 0, iterations)
	for i := 0; i < iterations; i++ {
		result := e.Execute(ctx, cloneCase(tc, types.CategoryPerformance, i))
		durations = append(durations, result.Duration)
		results = append(results, result)
	}
	return results, summarize(durations)
}

func summarize(durations []time.Duration) PerformanceStats {
	stats := PerformanceStats{Iterations: len(durations)}
	if len(durations) == 0 {
		return stats
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.Mean = total / time.Duration(len(sorted))
	stats.P50 = percentile(sorted, 0.50)
	stats.P90 = percentile(sorted, 0.90)
	stats.P99 = percentile(sorted, 0.99)
	return stats
}

// percentile indexes the ascending-sorted series at floor(count * p).
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
