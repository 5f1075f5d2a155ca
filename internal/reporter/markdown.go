package reporter

import (
	"fmt"
	"sort"
	"strings"

	"api-test-engine/internal/types"
)

// renderSummary produces the primary human-readable artifact: overview,
// per-category pass rates, failure detail, pass list and endpoint
// coverage.
func renderSummary(report *TestReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# API Test Report\n\n")
	fmt.Fprintf(&b, "- Report ID: %s\n", report.ID)
	fmt.Fprintf(&b, "- Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Target: %s\n\n", report.Config.BaseURL)

	s := report.Summary
	b.WriteString("## Overview\n\n")
	b.WriteString("| Total | Passed | Failed | Skipped | Pass Rate | Duration |\n")
	b.WriteString("|-------|--------|--------|---------|-----------|----------|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %s | %s |\n\n",
		s.Total, s.Passed, s.Failed, s.Skipped, s.PassRate, s.Duration)

	b.WriteString("## Results by Category\n\n")
	b.WriteString("| Category | Total | Passed | Failed | Pass Rate |\n")
	b.WriteString("|----------|-------|--------|--------|-----------|\n")
	for _, cat := range sortedCategories(s.ByCategory) {
		cs := s.ByCategory[cat]
		rate := "0.0%"
		if cs.Total > 0 {
			rate = fmt.Sprintf("%.1f%%", float64(cs.Passed)/float64(cs.Total)*100)
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %s |\n", cat, cs.Total, cs.Passed, cs.Failed, rate)
	}
	b.WriteString("\n")

	b.WriteString("## Failures\n\n")
	failures := 0
	for _, r := range report.Results {
		if r.Passed || r.Skipped {
			continue
		}
		failures++
		fmt.Fprintf(&b, "### %s\n\n", r.Case.Name)
		fmt.Fprintf(&b, "- ID: `%s`\n", r.Case.ID)
		fmt.Fprintf(&b, "- Endpoint: %s %s\n", r.Case.Endpoint.Method, r.Case.Endpoint.Path)
		if r.Error != nil {
			fmt.Fprintf(&b, "- Error (%s): %s\n", r.Error.Kind, r.Error.Message)
		}
		fmt.Fprintf(&b, "\nRequest:\n\n```\n%s %s\n%s\n```\n\n", r.Request.Method, r.Request.URL, r.Request.Body)
		if r.Response.Received {
			fmt.Fprintf(&b, "Response (%d):\n\n```\n%s\n```\n\n", r.Response.StatusCode, r.Response.Body)
		} else {
			b.WriteString("Response: none received\n\n")
		}
	}
	if failures == 0 {
		b.WriteString("No failures.\n\n")
	}

	b.WriteString("## Passed\n\n")
	passes := 0
	for _, r := range report.Results {
		if !r.Passed || r.Skipped {
			continue
		}
		passes++
		fmt.Fprintf(&b, "- `%s` %s (%s)\n", r.Case.ID, r.Case.Name, r.Duration)
	}
	if passes == 0 {
		b.WriteString("None.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Endpoint Coverage\n\n")
	b.WriteString("| Endpoint | Cases | Passed | Failed |\n")
	b.WriteString("|----------|-------|--------|--------|\n")
	for _, ep := range report.Endpoints {
		total, passed, failed := 0, 0, 0
		for _, r := range report.Results {
			if r.Case.Endpoint.Method == ep.Method && r.Case.Endpoint.Path == ep.Path {
				total++
				if r.Skipped {
					continue
				}
				if r.Passed {
					passed++
				} else {
					failed++
				}
			}
		}
		fmt.Fprintf(&b, "| %s %s | %d | %d | %d |\n", ep.Method, ep.Path, total, passed, failed)
	}
	b.WriteString("\n")
	return b.String()
}

// renderDetails produces the per-case execution trace.
func renderDetails(report *TestReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Execution Details\n\nReport %s\n\n", report.ID)

	for _, r := range report.Results {
		fmt.Fprintf(&b, "## %s\n\n", r.Case.ID)
		fmt.Fprintf(&b, "- Name: %s\n", r.Case.Name)
		fmt.Fprintf(&b, "- Category: %s\n", r.Case.Category)
		fmt.Fprintf(&b, "- Verdict: %s\n", verdictLabel(r))
		fmt.Fprintf(&b, "- Duration: %s\n\n", r.Duration)

		fmt.Fprintf(&b, "Request:\n\n```\n%s %s\n", r.Request.Method, r.Request.URL)
		for _, key := range sortedKeys(r.Request.Headers) {
			fmt.Fprintf(&b, "%s: %s\n", key, r.Request.Headers[key])
		}
		if r.Request.Body != "" {
			fmt.Fprintf(&b, "\n%s\n", r.Request.Body)
		}
		b.WriteString("```\n\n")

		if r.Response.Received {
			fmt.Fprintf(&b, "Response:\n\n```\nHTTP %d\n%s\n```\n\n", r.Response.StatusCode, r.Response.Body)
		} else {
			b.WriteString("Response: none received\n\n")
		}

		if len(r.DataAssertions) > 0 {
			b.WriteString("Data assertions:\n\n")
			for _, a := range r.DataAssertions {
				fmt.Fprintf(&b, "- `%s` %s\n", a.Assertion.Statement, assertionLabel(a))
			}
			b.WriteString("\n")
		}

		if len(r.Log) > 0 {
			b.WriteString("Log:\n\n```\n")
			for _, line := range r.Log {
				b.WriteString(line + "\n")
			}
			b.WriteString("```\n\n")
		}
	}
	return b.String()
}

// renderDataAssertions lists every executed statement with its outcome.
func renderDataAssertions(report *TestReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Data Assertions\n\nReport %s\n\n", report.ID)

	any := false
	for _, r := range report.Results {
		if len(r.DataAssertions) == 0 {
			continue
		}
		any = true
		fmt.Fprintf(&b, "## %s\n\n", r.Case.ID)
		for _, a := range r.DataAssertions {
			fmt.Fprintf(&b, "- Statement: `%s`\n", a.Assertion.Statement)
			if a.Assertion.Expect != "" {
				fmt.Fprintf(&b, "  - Mode: %s\n", a.Assertion.Expect)
			}
			if a.Result != nil {
				fmt.Fprintf(&b, "  - Rows: %d (%s)\n", a.Result.RowCount, a.Result.ExecutionTime)
			}
			fmt.Fprintf(&b, "  - Outcome: %s\n", assertionLabel(a))
		}
		b.WriteString("\n")
	}
	if !any {
		b.WriteString("No data assertions were executed.\n")
	}
	return b.String()
}

func verdictLabel(r types.TestResult) string {
	switch {
	case r.Skipped:
		return "SKIPPED"
	case r.Passed:
		return "PASSED"
	default:
		return "FAILED"
	}
}

func assertionLabel(a types.DataAssertionResult) string {
	if !a.Evaluated {
		if a.Message != "" {
			return "executed (" + a.Message + ")"
		}
		return "executed"
	}
	if a.Passed {
		return "passed"
	}
	return "failed: " + a.Message
}

func sortedCategories(m map[types.Category]CategorySummary) []types.Category {
	cats := make([]types.Category, 0, len(m))
	for c := range m {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
