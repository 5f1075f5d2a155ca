package reporter

import (
	"fmt"
	"time"

	"api-test-engine/internal/config"
	"api-test-engine/internal/types"

	"github.com/google/uuid"
)

// CategorySummary is the per-category slice of the run summary.
type CategorySummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summary holds the computed statistics of one run.
type Summary struct {
	Total      int                               `json:"total"`
	Passed     int                               `json:"passed"`
	Failed     int                               `json:"failed"`
	Skipped    int                               `json:"skipped"`
	Duration   time.Duration                     `json:"duration"`
	PassRate   string                            `json:"pass_rate"`
	ByCategory map[types.Category]CategorySummary `json:"by_category"`
}

// TestReport is the aggregate of one test run. The embedded configuration
// copy is sanitized; the report is persisted once and never mutated.
type TestReport struct {
	ID          string                     `json:"id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Config      config.Config              `json:"config"`
	Summary     Summary                    `json:"summary"`
	Results     []types.TestResult         `json:"results"`
	Endpoints   []types.EndpointDescriptor `json:"endpoints"`
}

// Build aggregates a result batch into a report. Secrets in the
// configuration are replaced with the mask token before embedding.
func Build(results []types.TestResult, endpoints []types.EndpointDescriptor, cfg *config.Config) *TestReport {
	return &TestReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Config:      cfg.Sanitized(),
		Summary:     summarize(results),
		Results:     results,
		Endpoints:   endpoints,
	}
}

func summarize(results []types.TestResult) Summary {
	s := Summary{
		Total:      len(results),
		ByCategory: make(map[types.Category]CategorySummary),
	}
	for _, r := range results {
		s.Duration += r.Duration
		cat := s.ByCategory[r.Case.Category]
		switch {
		case r.Skipped:
			s.Skipped++
		case r.Passed:
			s.Passed++
			cat.Passed++
			cat.Total++
		default:
			s.Failed++
			cat.Failed++
			cat.Total++
		}
		if !r.Skipped {
			s.ByCategory[r.Case.Category] = cat
		}
	}
	if s.Total > 0 {
		s.PassRate = fmt.Sprintf("%.1f%%", float64(s.Passed)/float64(s.Total)*100)
	} else {
		s.PassRate = "0.0%"
	}
	return s
}
