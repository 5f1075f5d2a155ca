package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"api-test-engine/internal/types"
)

// ProgressFunc receives a callback after every executed case.
type ProgressFunc func(current, total int, label string)

// interCaseDelay paces sequential batches so the target is not
// overwhelmed. It is a throttle, not a concurrency primitive.
const interCaseDelay = 100 * time.Millisecond

// RunAll executes cases sequentially. Cancellation is honored only
// between cases: the in-flight request always completes, remaining cases
// come back marked skipped.
func (e *Executor) RunAll(ctx context.Context, cases []types.TestCase, progress ProgressFunc) []types.TestResult {
	results := make([]types.TestResult, 0, len(cases))
	for i, tc := range cases {
		select {
		case <-ctx.Done():
			for _, rest := range cases[i:] {
				results = append(results, skippedResult(rest))
			}
			return results
		default:
		}

		// The case itself runs on a fresh context so batch cancellation
		// never aborts a request mid-flight; the client timeout bounds it.
		results = append(results, e.Execute(context.Background(), tc))
		if progress != nil {
			progress(i+1, len(cases), tc.Name)
		}
		if i < len(cases)-1 {
			time.Sleep(interCaseDelay)
		}
	}
	return results
}

func skippedResult(tc types.TestCase) types.TestResult {
	now := time.Now()
	return types.TestResult{
		Case:       tc,
		StartedAt:  now,
		FinishedAt: now,
		Skipped:    true,
		Log:        []string{"skipped: batch cancelled"},
	}
}

// RunConcurrent clones one logical case n times and executes every clone
// in parallel. Each clone owns its own buffers; results are returned only
// once all clones have resolved, and no clone can short-circuit another.
func (e *Executor) RunConcurrent(ctx context.Context, tc types.TestCase, n int) []types.TestResult {
	if n <= 0 {
		n = e.cfg.Concurrency
	}
	results := make([]types.TestResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Execute(ctx, cloneCase(tc, types.CategoryConcurrent, i))
		}(i)
	}
	wg.Wait()
	return results
}

// cloneCase derives a replica of a logical case with a distinguished id
// suffix and an independent input copy.
func cloneCase(tc types.TestCase, category types.Category, i int) types.TestCase {
	clone := tc
	clone.ID = fmt.Sprintf("%s_%s_%d", tc.ID, category, i)
	clone.Name = fmt.Sprintf("%s [%s %d]", tc.Name, category, i)
	clone.Category = category
	clone.Input = tc.Input.Clone()
	return clone
}
