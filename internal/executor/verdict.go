package executor

import (
	"fmt"
	"strings"

	"api-test-engine/internal/types"
)

// evaluate computes the pass/fail verdict for an executed case. Checks
// run in a fixed order and every unmet condition fails the whole case.
// Status-code checks are opt-in per expectation field.
func evaluate(tc types.TestCase, result *types.TestResult) (bool, string) {
	if result.Error != nil {
		return false, fmt.Sprintf("%s error: %s", result.Error.Kind, result.Error.Message)
	}
	if !result.Response.Received {
		return false, "no response received"
	}

	exp := tc.Expect

	if exp.StatusCode != 0 && result.Response.StatusCode != exp.StatusCode {
		return false, fmt.Sprintf("expected status %d, got %d", exp.StatusCode, result.Response.StatusCode)
	}
	if len(exp.StatusCodes) > 0 {
		matched := false
		for _, code := range exp.StatusCodes {
			if result.Response.StatusCode == code {
				matched = true
				break
			}
		}
		if !matched {
			return false, fmt.Sprintf("status %d not in accepted set %v", result.Response.StatusCode, exp.StatusCodes)
		}
	}

	body := strings.ToLower(result.Response.Body)
	for _, substr := range exp.ResponseContains {
		if !strings.Contains(body, strings.ToLower(substr)) {
			return false, fmt.Sprintf("response body missing %q", substr)
		}
	}
	for _, substr := range exp.ResponseNotContains {
		if strings.Contains(body, strings.ToLower(substr)) {
			return false, fmt.Sprintf("response body contains forbidden %q", substr)
		}
	}

	if exp.MaxResponseTime > 0 && result.Duration > exp.MaxResponseTime {
		return false, fmt.Sprintf("response time %s over ceiling %s", result.Duration, exp.MaxResponseTime)
	}

	for _, assertion := range result.DataAssertions {
		if assertion.Evaluated && !assertion.Passed {
			return false, fmt.Sprintf("data assertion failed: %s", assertion.Message)
		}
	}

	return true, ""
}
