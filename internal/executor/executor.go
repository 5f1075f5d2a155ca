package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"api-test-engine/internal/config"
	"api-test-engine/internal/database"
	"api-test-engine/internal/logger"
	"api-test-engine/internal/types"
)

// Executor runs test cases against a live HTTP target. Transport errors
// never escape: every execution attempt yields a TestResult.
type Executor struct {
	cfg    *config.Config
	client *http.Client
	db     database.StatementExecutor
	log    *logger.Logger
}

// New creates an executor. A nil statement executor falls back to the
// no-op stub; a nil logger discards.
func New(cfg *config.Config, db database.StatementExecutor, log *logger.Logger) *Executor {
	if db == nil {
		db = database.NewStub()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Executor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		db:     db,
		log:    log,
	}
}

// Execute runs one test case end to end: setup statements, the HTTP
// request, data assertions, teardown, verdict.
func (e *Executor) Execute(ctx context.Context, tc types.TestCase) types.TestResult {
	result := types.TestResult{
		Case:      tc,
		StartedAt: time.Now(),
	}
	logf := func(format string, args ...interface{}) {
		result.Log = append(result.Log, fmt.Sprintf(format, args...))
	}
	logf("executing %s (%s)", tc.ID, tc.Category)

	// Setup statements are recorded alongside the data assertions, with a
	// nil result placeholder; their outcome does not gate the verdict.
	for _, stmt := range tc.Setup {
		entry := types.DataAssertionResult{
			Assertion: types.DataAssertion{Name: "setup", Statement: stmt},
		}
		if _, err := e.db.Execute(ctx, stmt); err != nil {
			entry.Message = fmt.Sprintf("setup failed: %v", err)
			logf("setup statement failed: %v", err)
		} else {
			logf("setup statement executed")
		}
		result.DataAssertions = append(result.DataAssertions, entry)
	}

	req, reqInfo, err := e.buildRequest(ctx, tc)
	result.Request = reqInfo
	if err != nil {
		result.Error = &types.TestError{Kind: types.ErrorException, Message: err.Error()}
		logf("failed to build request: %v", err)
		return e.finish(ctx, tc, result)
	}
	logf("%s %s", reqInfo.Method, reqInfo.URL)

	// Latency is measured around the round trip itself, independent of
	// setup and assertion time.
	start := time.Now()
	resp, err := e.client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = classifyError(err)
		logf("request failed (%s): %v", result.Error.Kind, err)
		return e.finish(ctx, tc, result)
	}
	defer resp.Body.Close()

	result.Response = readResponse(resp)
	logf("received %d in %s", result.Response.StatusCode, result.Duration)

	for _, assertion := range tc.Expect.DataAssertions {
		result.DataAssertions = append(result.DataAssertions, e.runAssertion(ctx, assertion, logf))
	}

	return e.finish(ctx, tc, result)
}

// finish runs teardown, computes the verdict and stamps the result.
func (e *Executor) finish(ctx context.Context, tc types.TestCase, result types.TestResult) types.TestResult {
	for _, stmt := range tc.Teardown {
		entry := types.DataAssertionResult{
			Assertion: types.DataAssertion{Name: "teardown", Statement: stmt},
		}
		if _, err := e.db.Execute(ctx, stmt); err != nil {
			// Teardown is best-effort and never affects the verdict.
			entry.Message = fmt.Sprintf("teardown failed: %v", err)
			result.Log = append(result.Log, entry.Message)
		}
		result.DataAssertions = append(result.DataAssertions, entry)
	}

	passed, reason := evaluate(tc, &result)
	result.Passed = passed
	if !passed && reason != "" {
		result.Log = append(result.Log, "verdict: failed: "+reason)
	} else if passed {
		result.Log = append(result.Log, "verdict: passed")
	}
	result.FinishedAt = time.Now()
	return result
}

// runAssertion executes one data assertion through the statement seam and
// evaluates it against its expected mode.
func (e *Executor) runAssertion(ctx context.Context, assertion types.DataAssertion, logf func(string, ...interface{})) types.DataAssertionResult {
	entry := types.DataAssertionResult{Assertion: assertion, Evaluated: true}

	qr, err := e.db.Execute(ctx, assertion.Statement)
	if err != nil {
		entry.Passed = false
		entry.Message = fmt.Sprintf("statement failed: %v", err)
		logf("data assertion %q errored: %v", assertion.Statement, err)
		return entry
	}
	entry.Result = qr
	entry.Passed, entry.Message = evaluateAssertion(assertion, qr)
	logf("data assertion %q: passed=%v", assertion.Statement, entry.Passed)
	return entry
}

// evaluateAssertion checks a query result against the assertion mode.
func evaluateAssertion(a types.DataAssertion, qr *types.QueryResult) (bool, string) {
	switch a.Expect {
	case types.AssertExists:
		if qr.RowCount > 0 {
			return true, ""
		}
		return false, "expected rows to exist, found none"
	case types.AssertNotExists:
		if qr.RowCount == 0 {
			return true, ""
		}
		return false, fmt.Sprintf("expected no rows, found %d", qr.RowCount)
	case types.AssertCount:
		if qr.RowCount == a.ExpectedCount {
			return true, ""
		}
		return false, fmt.Sprintf("expected %d rows, found %d", a.ExpectedCount, qr.RowCount)
	case types.AssertValue:
		serialized := serializeRows(qr)
		if serialized == a.ExpectedValue {
			return true, ""
		}
		return false, fmt.Sprintf("expected value %q, got %q", a.ExpectedValue, serialized)
	default:
		return false, fmt.Sprintf("unknown assertion mode %q", a.Expect)
	}
}

func serializeRows(qr *types.QueryResult) string {
	if len(qr.Rows) == 0 {
		return ""
	}
	data, err := json.Marshal(qr.Rows)
	if err != nil {
		return fmt.Sprint(qr.Rows)
	}
	return string(data)
}

// classifyError maps a transport failure onto the error taxonomy by
// keyword match on the message.
func classifyError(err error) *types.TestError {
	msg := strings.ToLower(err.Error())
	kind := types.ErrorException
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		kind = types.ErrorTimeout
	case strings.Contains(msg, "connect"), strings.Contains(msg, "econnrefused"):
		kind = types.ErrorConnection
	case strings.Contains(msg, "assert"):
		kind = types.ErrorAssertion
	}
	return &types.TestError{Kind: kind, Message: err.Error()}
}

// readResponse materializes a received HTTP response.
func readResponse(resp *http.Response) types.ResponseInfo {
	info := types.ResponseInfo{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Headers:     make(map[string]string, len(resp.Header)),
		Received:    true,
	}
	for key := range resp.Header {
		info.Headers[key] = resp.Header.Get(key)
	}
	body, err := io.ReadAll(resp.Body)
	if err == nil {
		info.Body = string(body)
	}
	return info
}
