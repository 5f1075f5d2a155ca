package synthesizer

import (
	"strings"
	"testing"

	"api-test-engine/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedGen makes synthesis deterministic so inputs can be compared
// across cases.
type fixedGen struct{}

func (fixedGen) Value(paramType string, c *types.Constraints) interface{} {
	switch paramType {
	case "string":
		if c != nil && c.Email {
			return "test@example.com"
		}
		return "valid"
	case "int", "long":
		return int64(7)
	case "double":
		return 1.5
	case "boolean":
		return true
	default:
		return "test_value"
	}
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func itemEndpoint() types.EndpointDescriptor {
	return types.EndpointDescriptor{
		Method:     types.MethodGet,
		Path:       "/api/items/{id}",
		Controller: "ItemController",
		Operation:  "getItem",
		Parameters: []types.Parameter{
			{Name: "id", Type: "int", In: types.InPath, Required: true,
				Constraints: &types.Constraints{Min: f64(5), Max: f64(10)}},
			{Name: "name", Type: "string", In: types.InQuery, Required: true,
				Constraints: &types.Constraints{NotBlank: true, MaxLength: intp(20)}},
			{Name: "note", Type: "string", In: types.InQuery},
		},
	}
}

func caseByID(t *testing.T, cases []types.TestCase, id string) types.TestCase {
	t.Helper()
	for _, tc := range cases {
		if tc.ID == id {
			return tc
		}
	}
	t.Fatalf("case %q not found", id)
	return types.TestCase{}
}

func hasCase(cases []types.TestCase, id string) bool {
	for _, tc := range cases {
		if tc.ID == id {
			return true
		}
	}
	return false
}

func TestFunctionalCase(t *testing.T) {
	cases := WithGenerator(fixedGen{}).Synthesize(itemEndpoint())
	require.NotEmpty(t, cases)

	fc := cases[0]
	assert.Equal(t, "getItem_functional", fc.ID)
	assert.Equal(t, types.CategoryFunctional, fc.Category)
	assert.Equal(t, 200, fc.Expect.StatusCode)
	assert.Equal(t, DefaultResponseTimeCeiling, fc.Expect.MaxResponseTime)
	assert.Equal(t, int64(7), fc.Input.PathParams["id"])
	assert.Equal(t, "valid", fc.Input.QueryParams["name"])
}

func TestFunctionalValueRespectsBounds(t *testing.T) {
	// The default generator must place the value inside [min,max].
	for i := 0; i < 50; i++ {
		cases := New().Synthesize(itemEndpoint())
		v, ok := cases[0].Input.PathParams["id"].(int64)
		require.True(t, ok, "path value should be an integer, got %T", cases[0].Input.PathParams["id"])
		assert.GreaterOrEqual(t, v, int64(5))
		assert.LessOrEqual(t, v, int64(10))
	}
}

func TestValidationMissingParameter(t *testing.T) {
	cases := WithGenerator(fixedGen{}).Synthesize(itemEndpoint())

	tc := caseByID(t, cases, "getItem_validation_missing_name")
	assert.Equal(t, types.CategoryValidation, tc.Category)
	assert.Equal(t, []int{400, 422}, tc.Expect.StatusCodes)
	assert.Contains(t, tc.Expect.ResponseContains, "name")
	_, present := tc.Input.QueryParams["name"]
	assert.False(t, present, "parameter under test must be omitted")
	// Only the one parameter is mutated.
	assert.Equal(t, int64(7), tc.Input.PathParams["id"])
	assert.Equal(t, "valid", tc.Input.QueryParams["note"])

	// Path parameters cannot be omitted without changing the route, and
	// optional parameters have no missing case.
	assert.False(t, hasCase(cases, "getItem_validation_missing_id"))
	assert.False(t, hasCase(cases, "getItem_validation_missing_note"))
}

func TestValidationWrongType(t *testing.T) {
	cases := WithGenerator(fixedGen{}).Synthesize(itemEndpoint())

	tc := caseByID(t, cases, "getItem_validation_type_id")
	assert.Equal(t, "not_a_number", tc.Input.PathParams["id"])
	assert.Equal(t, []int{400, 422}, tc.Expect.StatusCodes)
	assert.Zero(t, tc.Expect.StatusCode)

	// Any literal is a valid string, so string parameters get no
	// wrong-type case.
	assert.False(t, hasCase(cases, "getItem_validation_type_name"))
	assert.False(t, hasCase(cases, "getItem_validation_type_note"))
}

func TestValidationEmailAndPattern(t *testing.T) {
	ep := types.EndpointDescriptor{
		Method:    types.MethodGet,
		Path:      "/api/contacts",
		Operation: "findContact",
		Parameters: []types.Parameter{
			{Name: "email", Type: "string", In: types.InQuery, Required: true,
				Constraints: &types.Constraints{Email: true}},
			{Name: "code", Type: "string", In: types.InQuery,
				Constraints: &types.Constraints{Pattern: "^[A-Z]{3}$"}},
		},
	}
	cases := WithGenerator(fixedGen{}).Synthesize(ep)

	email := caseByID(t, cases, "findContact_validation_email_email")
	assert.Equal(t, "invalid-email-format", email.Input.QueryParams["email"])
	assert.Equal(t, []int{400, 422}, email.Expect.StatusCodes)

	pattern := caseByID(t, cases, "findContact_validation_pattern_code")
	assert.Equal(t, "!!pattern-violation!!", pattern.Input.QueryParams["code"])
	assert.Equal(t, []int{400, 422}, pattern.Expect.StatusCodes)
}

func TestBoundaryNumericCases(t *testing.T) {
	cases := WithGenerator(fixedGen{}).Synthesize(itemEndpoint())

	tests := []struct {
		id     string
		value  interface{}
		reject bool
	}{
		{"getItem_boundary_min_id", int64(5), false},
		{"getItem_boundary_below_min_id", int64(4), true},
		{"getItem_boundary_max_id", int64(10), false},
		{"getItem_boundary_above_max_id", int64(11), true},
	}
	for _, tt := range tests {
		tc := caseByID(t, cases, tt.id)
		assert.Equal(t, types.CategoryBoundary, tc.Category)
		assert.Equal(t, tt.value, tc.Input.PathParams["id"], tt.id)
		if tt.reject {
			assert.Equal(t, []int{400, 422}, tc.Expect.StatusCodes, tt.id)
		} else {
			assert.Equal(t, 200, tc.Expect.StatusCode, tt.id)
		}
	}
}

func TestBoundaryStringCases(t *testing.T) {
	cases := WithGenerator(fixedGen{}).Synthesize(itemEndpoint())

	over := caseByID(t, cases, "getItem_boundary_maxlen_name")
	s, ok := over.Input.QueryParams["name"].(string)
	require.True(t, ok)
	assert.Len(t, s, 30, "ten characters beyond maxLength=20")
	assert.Equal(t, []int{400, 422}, over.Expect.StatusCodes)

	// Empty string is rejected only when the parameter is not-blank.
	blank := caseByID(t, cases, "getItem_boundary_empty_name")
	assert.Equal(t, "", blank.Input.QueryParams["name"])
	assert.Equal(t, []int{400, 422}, blank.Expect.StatusCodes)

	plain := caseByID(t, cases, "getItem_boundary_empty_note")
	assert.Equal(t, "", plain.Input.QueryParams["note"])
	assert.Equal(t, 200, plain.Expect.StatusCode)
	assert.Empty(t, plain.Expect.StatusCodes)
}

func TestExceptionCases(t *testing.T) {
	cases := WithGenerator(fixedGen{}).Synthesize(itemEndpoint())

	sqli := caseByID(t, cases, "getItem_exception_sql_injection")
	assert.Equal(t, types.CategoryException, sqli.Category)
	assert.Equal(t, []int{200, 400}, sqli.Expect.StatusCodes)
	assert.Contains(t, sqli.Expect.ResponseNotContains, "sql")
	assert.Contains(t, sqlInjectionPayloads, sqli.Input.QueryParams["name"])

	xss := caseByID(t, cases, "getItem_exception_xss")
	assert.Equal(t, []int{200, 400}, xss.Expect.StatusCodes)
	assert.Contains(t, xss.Expect.ResponseNotContains, "<script>")
	assert.Contains(t, xssPayloads, xss.Input.QueryParams["name"])

	special := caseByID(t, cases, "getItem_exception_special_chars")
	assert.Equal(t, specialCharacters, special.Input.QueryParams["name"])
	assert.Empty(t, special.Expect.ResponseNotContains)

	// The payload lands in the first string parameter; everything else
	// keeps its canonical valid value.
	for _, tc := range []types.TestCase{sqli, xss, special} {
		assert.Equal(t, int64(7), tc.Input.PathParams["id"])
		assert.Equal(t, "valid", tc.Input.QueryParams["note"])
	}
}

func TestExceptionSkippedWithoutStringParameter(t *testing.T) {
	ep := types.EndpointDescriptor{
		Method:    types.MethodGet,
		Path:      "/api/items/{id}",
		Operation: "getItem",
		Parameters: []types.Parameter{
			{Name: "id", Type: "long", In: types.InPath, Required: true},
		},
	}
	for _, tc := range WithGenerator(fixedGen{}).Synthesize(ep) {
		assert.NotEqual(t, types.CategoryException, tc.Category)
	}
}

func TestBodyFieldsAreFlattened(t *testing.T) {
	ep := types.EndpointDescriptor{
		Method:    types.MethodPost,
		Path:      "/api/items",
		Operation: "createItem",
		Parameters: []types.Parameter{
			{Name: "request", Type: "unknown", In: types.InBody, Required: true},
		},
		RequestBody: &types.RequestBody{
			TypeName:    "CreateItemRequest",
			ContentType: "application/json",
			Fields: []types.Field{
				{Name: "name", Type: "string", Required: true,
					Constraints: &types.Constraints{NotBlank: true}},
				{Name: "qty", Type: "int",
					Constraints: &types.Constraints{Min: f64(0), Max: f64(99)}},
			},
		},
	}
	cases := WithGenerator(fixedGen{}).Synthesize(ep)

	fc := cases[0]
	assert.Equal(t, "valid", fc.Input.Body["name"])
	assert.Equal(t, int64(7), fc.Input.Body["qty"])

	missing := caseByID(t, cases, "createItem_validation_missing_name")
	_, present := missing.Input.Body["name"]
	assert.False(t, present)
	assert.Equal(t, int64(7), missing.Input.Body["qty"], "other fields stay valid")

	wrongType := caseByID(t, cases, "createItem_validation_type_qty")
	assert.Equal(t, "not_a_number", wrongType.Input.Body["qty"])

	below := caseByID(t, cases, "createItem_boundary_below_min_qty")
	assert.Equal(t, int64(-1), below.Input.Body["qty"])
}

func TestCaseInputsAreIndependent(t *testing.T) {
	cases := WithGenerator(fixedGen{}).Synthesize(itemEndpoint())
	a := caseByID(t, cases, "getItem_boundary_min_id")
	b := caseByID(t, cases, "getItem_boundary_max_id")

	a.Input.QueryParams["name"] = "mutated"
	assert.Equal(t, "valid", b.Input.QueryParams["name"])
}

func TestSynthesizeAll(t *testing.T) {
	s := WithGenerator(fixedGen{})
	one := len(s.Synthesize(itemEndpoint()))
	all := s.SynthesizeAll([]types.EndpointDescriptor{itemEndpoint(), itemEndpoint()})
	assert.Len(t, all, 2*one)
}

func TestRandomGeneratorValues(t *testing.T) {
	g := NewRandomGenerator()

	email := g.Value("string", &types.Constraints{Email: true})
	assert.Equal(t, "test@example.com", email)

	enum := g.Value("string", &types.Constraints{Enum: []string{"ACTIVE", "DISABLED"}})
	assert.Equal(t, "ACTIVE", enum)

	bounded := g.Value("string", &types.Constraints{MinLength: intp(12), MaxLength: intp(12)})
	assert.Len(t, bounded, 12)

	assert.Equal(t, true, g.Value("boolean", nil))
	assert.Equal(t, []interface{}{}, g.Value("list", nil))
	assert.Equal(t, "test_value", g.Value("unknown", nil))

	d, ok := g.Value("double", nil).(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.LessOrEqual(t, d, 100.0)
}

func TestMismatchValue(t *testing.T) {
	for _, pt := range []string{"int", "long", "double", "boolean", "date", "datetime"} {
		v, ok := mismatchValue(pt)
		assert.True(t, ok, pt)
		_, isString := v.(string)
		assert.True(t, isString, pt)
	}
	_, ok := mismatchValue("string")
	assert.False(t, ok)
	_, ok = mismatchValue("list")
	assert.False(t, ok)
}

func TestSQLPayloadsLookMalicious(t *testing.T) {
	for _, p := range sqlInjectionPayloads {
		assert.True(t, strings.ContainsAny(p, "'\";-"), p)
	}
}
