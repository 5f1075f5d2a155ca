package types

import "time"

// Method is an HTTP verb supported by the engine.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// Methods lists every verb the extractor recognizes.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

// Category is the testing discipline a case belongs to.
type Category string

const (
	CategoryFunctional  Category = "functional"
	CategoryValidation  Category = "validation"
	CategoryBoundary    Category = "boundary"
	CategoryException   Category = "exception"
	CategoryTransaction Category = "transaction"
	CategoryConcurrent  Category = "concurrent"
	CategoryPerformance Category = "performance"
)

// Parameter locations.
const (
	InPath   = "path"
	InQuery  = "query"
	InHeader = "header"
	InBody   = "body"
)

// Constraints holds validation rules attached to a parameter or field.
// Bounds are pointers so "no bound" and "bound of zero" stay distinct.
type Constraints struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Enum      []string `json:"enum,omitempty"`
	NotNull   bool     `json:"not_null,omitempty"`
	NotBlank  bool     `json:"not_blank,omitempty"`
	Email     bool     `json:"email,omitempty"`
	Phone     bool     `json:"phone,omitempty"`
}

// Empty reports whether no constraint is set.
func (c *Constraints) Empty() bool {
	if c == nil {
		return true
	}
	return c.Min == nil && c.Max == nil && c.MinLength == nil && c.MaxLength == nil &&
		c.Pattern == "" && len(c.Enum) == 0 && !c.NotNull && !c.NotBlank && !c.Email && !c.Phone
}

// Parameter represents one user-supplied input of an endpoint.
type Parameter struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	In          string       `json:"in"`
	Required    bool         `json:"required"`
	Constraints *Constraints `json:"constraints,omitempty"`
}

// Field is one field of a request body type. Composite fields carry
// their own nested field list.
type Field struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Required    bool         `json:"required"`
	Constraints *Constraints `json:"constraints,omitempty"`
	Fields      []Field      `json:"fields,omitempty"`
}

// RequestBody describes the JSON payload an endpoint accepts.
type RequestBody struct {
	TypeName    string  `json:"type_name"`
	ContentType string  `json:"content_type"`
	Fields      []Field `json:"fields,omitempty"`
}

// ResponseSpec is one documented response of an endpoint.
type ResponseSpec struct {
	StatusCode  int    `json:"status_code"`
	Description string `json:"description"`
}

// EndpointDescriptor is one discovered API operation.
type EndpointDescriptor struct {
	Method      Method         `json:"method"`
	Path        string         `json:"path"`
	Controller  string         `json:"controller"`
	Operation   string         `json:"operation"`
	Description string         `json:"description,omitempty"`
	Parameters  []Parameter    `json:"parameters,omitempty"`
	RequestBody *RequestBody   `json:"request_body,omitempty"`
	Responses   []ResponseSpec `json:"responses,omitempty"`
}

// TestInput holds the concrete values a test case sends.
type TestInput struct {
	PathParams  map[string]interface{} `json:"path_params,omitempty"`
	QueryParams map[string]interface{} `json:"query_params,omitempty"`
	Headers     map[string]string      `json:"headers,omitempty"`
	Body        map[string]interface{} `json:"body,omitempty"`
	Files       map[string]string      `json:"files,omitempty"`
}

// Clone returns a copy whose maps are independent of the receiver's, so
// mutating one case's input never bleeds into another's.
func (in TestInput) Clone() TestInput {
	out := TestInput{}
	if in.PathParams != nil {
		out.PathParams = make(map[string]interface{}, len(in.PathParams))
		for k, v := range in.PathParams {
			out.PathParams[k] = v
		}
	}
	if in.QueryParams != nil {
		out.QueryParams = make(map[string]interface{}, len(in.QueryParams))
		for k, v := range in.QueryParams {
			out.QueryParams[k] = v
		}
	}
	if in.Headers != nil {
		out.Headers = make(map[string]string, len(in.Headers))
		for k, v := range in.Headers {
			out.Headers[k] = v
		}
	}
	if in.Body != nil {
		out.Body = make(map[string]interface{}, len(in.Body))
		for k, v := range in.Body {
			out.Body[k] = v
		}
	}
	if in.Files != nil {
		out.Files = make(map[string]string, len(in.Files))
		for k, v := range in.Files {
			out.Files[k] = v
		}
	}
	return out
}

// Data assertion modes.
const (
	AssertExists    = "exists"
	AssertNotExists = "notExists"
	AssertCount     = "count"
	AssertValue     = "value"
)

// DataAssertion is a post-condition checked against the backing store.
type DataAssertion struct {
	Name          string `json:"name,omitempty"`
	Statement     string `json:"statement"`
	Expect        string `json:"expect"`
	ExpectedCount int    `json:"expected_count,omitempty"`
	ExpectedValue string `json:"expected_value,omitempty"`
}

// TestExpectation describes what a passing execution looks like. Status
// checks are opt-in: a zero StatusCode with an empty StatusCodes set means
// the status code is not checked at all.
type TestExpectation struct {
	StatusCode          int             `json:"status_code,omitempty"`
	StatusCodes         []int           `json:"status_codes,omitempty"`
	ResponseContains    []string        `json:"response_contains,omitempty"`
	ResponseNotContains []string        `json:"response_not_contains,omitempty"`
	MaxResponseTime     time.Duration   `json:"max_response_time,omitempty"`
	DataAssertions      []DataAssertion `json:"data_assertions,omitempty"`
}

// TestCase is one synthesized test. Immutable once created; the executor
// consumes it without modification.
type TestCase struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Endpoint    EndpointDescriptor `json:"endpoint"`
	Category    Category           `json:"category"`
	Input       TestInput          `json:"input"`
	Expect      TestExpectation    `json:"expect"`
	Setup       []string           `json:"setup,omitempty"`
	Teardown    []string           `json:"teardown,omitempty"`
}

// RequestInfo is the request the executor actually sent.
type RequestInfo struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// ResponseInfo is the response the executor actually received. The zero
// value (Received false) is the sentinel for a transport failure.
type ResponseInfo struct {
	StatusCode  int               `json:"status_code"`
	ContentType string            `json:"content_type,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        string            `json:"body,omitempty"`
	Received    bool              `json:"received"`
}

// QueryResult is the outcome of one statement execution against the
// backing store.
type QueryResult struct {
	RowCount      int                      `json:"row_count"`
	Rows          []map[string]interface{} `json:"rows,omitempty"`
	ExecutionTime time.Duration            `json:"execution_time"`
}

// DataAssertionResult records one executed statement and its evaluation.
// Setup and teardown statements are recorded with a nil Result placeholder
// and no verdict.
type DataAssertionResult struct {
	Assertion DataAssertion `json:"assertion"`
	Result    *QueryResult  `json:"result,omitempty"`
	Evaluated bool          `json:"evaluated"`
	Passed    bool          `json:"passed"`
	Message   string        `json:"message,omitempty"`
}

// ErrorKind classifies an execution failure.
type ErrorKind string

const (
	ErrorConnection ErrorKind = "connection"
	ErrorTimeout    ErrorKind = "timeout"
	ErrorAssertion  ErrorKind = "assertion"
	ErrorException  ErrorKind = "exception"
	ErrorUnknown    ErrorKind = "unknown"
)

// TestError captures a terminal execution failure.
type TestError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Trace   string    `json:"trace,omitempty"`
}

// TestResult is the outcome of executing one test case. Never mutated
// after the executor returns it.
type TestResult struct {
	Case           TestCase              `json:"case"`
	StartedAt      time.Time             `json:"started_at"`
	FinishedAt     time.Time             `json:"finished_at"`
	Duration       time.Duration         `json:"duration"`
	Request        RequestInfo           `json:"request"`
	Response       ResponseInfo          `json:"response"`
	DataAssertions []DataAssertionResult `json:"data_assertions,omitempty"`
	Error          *TestError            `json:"error,omitempty"`
	Passed         bool                  `json:"passed"`
	Skipped        bool                  `json:"skipped,omitempty"`
	Log            []string              `json:"log,omitempty"`
}
