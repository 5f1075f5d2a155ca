package reporter

import (
	"fmt"
	"strings"

	"api-test-engine/internal/types"
)

// renderFailures produces the failure-focused artifact: failures grouped
// by error kind with canned root-cause analysis and remediation guidance.
func renderFailures(report *TestReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Failure Analysis\n\nReport %s\n\n", report.ID)

	groups := map[types.ErrorKind][]types.TestResult{}
	var order []types.ErrorKind
	for _, r := range report.Results {
		if r.Passed || r.Skipped {
			continue
		}
		kind := types.ErrorAssertion
		if r.Error != nil {
			kind = r.Error.Kind
		}
		if _, seen := groups[kind]; !seen {
			order = append(order, kind)
		}
		groups[kind] = append(groups[kind], r)
	}

	if len(order) == 0 {
		b.WriteString("No failures to analyze.\n")
		return b.String()
	}

	for _, kind := range order {
		fmt.Fprintf(&b, "## %s failures (%d)\n\n", kind, len(groups[kind]))
		fmt.Fprintf(&b, "Root cause: %s\n\n", rootCause(kind))
		for _, r := range groups[kind] {
			fmt.Fprintf(&b, "### %s\n\n", r.Case.ID)
			fmt.Fprintf(&b, "- Endpoint: %s %s\n", r.Case.Endpoint.Method, r.Case.Endpoint.Path)
			if r.Error != nil {
				fmt.Fprintf(&b, "- Error: %s\n", r.Error.Message)
			}
			if r.Response.Received {
				fmt.Fprintf(&b, "- Status: %d\n", r.Response.StatusCode)
			}
			b.WriteString("- Suggestions:\n")
			for _, s := range suggestions(kind, r.Response.StatusCode) {
				fmt.Fprintf(&b, "  - %s\n", s)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// rootCause returns the canned analysis per error kind.
func rootCause(kind types.ErrorKind) string {
	switch kind {
	case types.ErrorConnection:
		return "the target service could not be reached"
	case types.ErrorTimeout:
		return "the target did not respond within the configured timeout"
	case types.ErrorAssertion:
		return "the response or backing data did not match the expectation"
	case types.ErrorException:
		return "an unexpected error occurred while executing the request"
	default:
		return "the failure could not be classified"
	}
}

// suggestions returns remediation guidance keyed off error kind and
// response status.
func suggestions(kind types.ErrorKind, status int) []string {
	switch kind {
	case types.ErrorConnection:
		return []string{
			"Verify the service is running and reachable at the configured base URL",
			"Check firewall rules and port bindings",
		}
	case types.ErrorTimeout:
		return []string{
			"Profile the endpoint for slow queries or downstream calls",
			"Raise the configured timeout if the operation is legitimately slow",
		}
	}
	switch status {
	case 401:
		return []string{
			"Verify the bearer token is set and not expired",
			"Confirm the authentication scheme matches what the service expects",
		}
	case 403:
		return []string{
			"Check that the test principal has permission for this operation",
			"Review the endpoint's authorization rules",
		}
	case 404:
		return []string{
			"Confirm the route is registered and the path matches the deployed version",
			"Check that the service deployment includes this controller",
		}
	case 500:
		return []string{
			"Inspect the server logs around the request timestamp",
			"Check for null handling on the parameter under test",
		}
	}
	return []string{
		"Compare the expectation against the actual response in the details artifact",
		"Re-run the case in isolation to rule out ordering effects",
	}
}
