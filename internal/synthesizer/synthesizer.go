package synthesizer

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"api-test-engine/internal/types"
)

// DefaultResponseTimeCeiling bounds the functional case's response time.
const DefaultResponseTimeCeiling = 3000 * time.Millisecond

// Statuses accepted for a rejected-input case.
func validationStatuses() []int { return []int{400, 422} }

// Synthesizer turns one endpoint descriptor into a battery of test cases
// across the functional, validation, boundary and exception categories.
type Synthesizer struct {
	gen ValueGenerator
	rng *rand.Rand
}

// New creates a synthesizer with the default randomized value generator.
func New() *Synthesizer {
	return WithGenerator(NewRandomGenerator())
}

// WithGenerator creates a synthesizer around an injected value generator.
func WithGenerator(gen ValueGenerator) *Synthesizer {
	return &Synthesizer{
		gen: gen,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Synthesize returns the full case list for one endpoint.
func (s *Synthesizer) Synthesize(ep types.EndpointDescriptor) []types.TestCase {
	cases := []types.TestCase{s.functionalCase(ep)}
	cases = append(cases, s.validationCases(ep)...)
	cases = append(cases, s.boundaryCases(ep)...)
	cases = append(cases, s.exceptionCases(ep)...)
	return cases
}

// SynthesizeAll runs Synthesize over a list of endpoints.
func (s *Synthesizer) SynthesizeAll(endpoints []types.EndpointDescriptor) []types.TestCase {
	var cases []types.TestCase
	for _, ep := range endpoints {
		cases = append(cases, s.Synthesize(ep)...)
	}
	return cases
}

// effectiveParams flattens the endpoint's inputs: the body container
// parameter is replaced by its top-level fields, each treated as a
// body-located parameter.
func effectiveParams(ep types.EndpointDescriptor) []types.Parameter {
	var params []types.Parameter
	for _, p := range ep.Parameters {
		if p.In == types.InBody {
			continue
		}
		params = append(params, p)
	}
	if ep.RequestBody != nil {
		for _, f := range ep.RequestBody.Fields {
			params = append(params, types.Parameter{
				Name:        f.Name,
				Type:        f.Type,
				In:          types.InBody,
				Required:    f.Required,
				Constraints: f.Constraints,
			})
		}
	}
	return params
}

// validInput builds the endpoint's canonical valid input. Every generated
// case starts from this and mutates exactly the one parameter under test,
// so a failure is attributable to that parameter.
func (s *Synthesizer) validInput(ep types.EndpointDescriptor) types.TestInput {
	in := types.TestInput{
		PathParams:  map[string]interface{}{},
		QueryParams: map[string]interface{}{},
		Headers:     map[string]string{},
	}
	for _, p := range ep.Parameters {
		switch p.In {
		case types.InPath:
			in.PathParams[p.Name] = s.gen.Value(p.Type, p.Constraints)
		case types.InQuery:
			in.QueryParams[p.Name] = s.gen.Value(p.Type, p.Constraints)
		case types.InHeader:
			in.Headers[p.Name] = fmt.Sprint(s.gen.Value(p.Type, p.Constraints))
		case types.InBody:
			if ep.RequestBody != nil {
				in.Body = s.bodyValue(ep.RequestBody.Fields)
			} else {
				in.Body = map[string]interface{}{}
			}
		}
	}
	return in
}

func (s *Synthesizer) bodyValue(fields []types.Field) map[string]interface{} {
	body := map[string]interface{}{}
	for _, f := range fields {
		if len(f.Fields) > 0 {
			body[f.Name] = s.bodyValue(f.Fields)
			continue
		}
		body[f.Name] = s.gen.Value(f.Type, f.Constraints)
	}
	return body
}

// without returns a copy of the input with the given parameter removed.
func without(in types.TestInput, p types.Parameter) types.TestInput {
	out := in.Clone()
	switch p.In {
	case types.InPath:
		delete(out.PathParams, p.Name)
	case types.InQuery:
		delete(out.QueryParams, p.Name)
	case types.InHeader:
		delete(out.Headers, p.Name)
	case types.InBody:
		delete(out.Body, p.Name)
	}
	return out
}

// with returns a copy of the input with the given parameter overwritten.
func with(in types.TestInput, p types.Parameter, value interface{}) types.TestInput {
	out := in.Clone()
	switch p.In {
	case types.InPath:
		out.PathParams[p.Name] = value
	case types.InQuery:
		out.QueryParams[p.Name] = value
	case types.InHeader:
		out.Headers[p.Name] = fmt.Sprint(value)
	case types.InBody:
		if out.Body == nil {
			out.Body = map[string]interface{}{}
		}
		out.Body[p.Name] = value
	}
	return out
}

func (s *Synthesizer) newCase(ep types.EndpointDescriptor, category types.Category, disc, name, desc string, input types.TestInput, expect types.TestExpectation) types.TestCase {
	id := fmt.Sprintf("%s_%s", ep.Operation, category)
	if disc != "" {
		id = fmt.Sprintf("%s_%s", id, disc)
	}
	return types.TestCase{
		ID:          id,
		Name:        name,
		Description: desc,
		Endpoint:    ep,
		Category:    category,
		Input:       input,
		Expect:      expect,
	}
}

func (s *Synthesizer) functionalCase(ep types.EndpointDescriptor) types.TestCase {
	return s.newCase(ep, types.CategoryFunctional, "",
		fmt.Sprintf("Functional: %s %s", ep.Method, ep.Path),
		"Valid values for every parameter, expecting success",
		s.validInput(ep),
		types.TestExpectation{
			StatusCode:      200,
			MaxResponseTime: DefaultResponseTimeCeiling,
		})
}

func (s *Synthesizer) validationCases(ep types.EndpointDescriptor) []types.TestCase {
	valid := s.validInput(ep)
	var cases []types.TestCase

	for _, p := range effectiveParams(ep) {
		// A path parameter cannot be "missing" by value, only mistyped:
		// omitting the segment would change the route entirely.
		if p.Required && p.In != types.InPath {
			cases = append(cases, s.newCase(ep, types.CategoryValidation,
				"missing_"+p.Name,
				fmt.Sprintf("Validation: missing %s", p.Name),
				fmt.Sprintf("Required parameter %q omitted", p.Name),
				without(valid, p),
				types.TestExpectation{
					StatusCodes:      validationStatuses(),
					ResponseContains: []string{p.Name},
				}))
		}

		if wrong, ok := mismatchValue(p.Type); ok {
			cases = append(cases, s.newCase(ep, types.CategoryValidation,
				"type_"+p.Name,
				fmt.Sprintf("Validation: wrong type for %s", p.Name),
				fmt.Sprintf("Type-mismatched literal for %s parameter %q", p.Type, p.Name),
				with(valid, p, wrong),
				types.TestExpectation{StatusCodes: validationStatuses()}))
		}

		if p.Constraints != nil && p.Constraints.Email {
			cases = append(cases, s.newCase(ep, types.CategoryValidation,
				"email_"+p.Name,
				fmt.Sprintf("Validation: invalid email for %s", p.Name),
				fmt.Sprintf("Malformed email address for parameter %q", p.Name),
				with(valid, p, "invalid-email-format"),
				types.TestExpectation{StatusCodes: validationStatuses()}))
		}

		if p.Constraints != nil && p.Constraints.Pattern != "" {
			cases = append(cases, s.newCase(ep, types.CategoryValidation,
				"pattern_"+p.Name,
				fmt.Sprintf("Validation: pattern violation for %s", p.Name),
				fmt.Sprintf("Value violating pattern %q for parameter %q", p.Constraints.Pattern, p.Name),
				with(valid, p, "!!pattern-violation!!"),
				types.TestExpectation{StatusCodes: validationStatuses()}))
		}
	}
	return cases
}

func (s *Synthesizer) boundaryCases(ep types.EndpointDescriptor) []types.TestCase {
	valid := s.validInput(ep)
	var cases []types.TestCase

	for _, p := range effectiveParams(ep) {
		numeric := p.Type == "int" || p.Type == "long" || p.Type == "double"
		if numeric && p.Constraints != nil {
			if p.Constraints.Min != nil {
				m := *p.Constraints.Min
				cases = append(cases,
					s.newCase(ep, types.CategoryBoundary, "min_"+p.Name,
						fmt.Sprintf("Boundary: %s at minimum", p.Name),
						fmt.Sprintf("Parameter %q exactly at min=%v", p.Name, m),
						with(valid, p, numericValue(p.Type, m)),
						types.TestExpectation{StatusCode: 200}),
					s.newCase(ep, types.CategoryBoundary, "below_min_"+p.Name,
						fmt.Sprintf("Boundary: %s below minimum", p.Name),
						fmt.Sprintf("Parameter %q one below min=%v", p.Name, m),
						with(valid, p, numericValue(p.Type, m-1)),
						types.TestExpectation{StatusCodes: validationStatuses()}))
			}
			if p.Constraints.Max != nil {
				m := *p.Constraints.Max
				cases = append(cases,
					s.newCase(ep, types.CategoryBoundary, "max_"+p.Name,
						fmt.Sprintf("Boundary: %s at maximum", p.Name),
						fmt.Sprintf("Parameter %q exactly at max=%v", p.Name, m),
						with(valid, p, numericValue(p.Type, m)),
						types.TestExpectation{StatusCode: 200}),
					s.newCase(ep, types.CategoryBoundary, "above_max_"+p.Name,
						fmt.Sprintf("Boundary: %s above maximum", p.Name),
						fmt.Sprintf("Parameter %q one above max=%v", p.Name, m),
						with(valid, p, numericValue(p.Type, m+1)),
						types.TestExpectation{StatusCodes: validationStatuses()}))
			}
		}

		if p.Type == "string" {
			if p.Constraints != nil && p.Constraints.MaxLength != nil {
				over := strings.Repeat("x", *p.Constraints.MaxLength+10)
				cases = append(cases, s.newCase(ep, types.CategoryBoundary,
					"maxlen_"+p.Name,
					fmt.Sprintf("Boundary: %s over max length", p.Name),
					fmt.Sprintf("Parameter %q ten characters beyond maxLength=%d", p.Name, *p.Constraints.MaxLength),
					with(valid, p, over),
					types.TestExpectation{StatusCodes: validationStatuses()}))
			}

			// Empty string is rejected only under a not-blank constraint.
			expect := types.TestExpectation{StatusCode: 200}
			if p.Constraints != nil && p.Constraints.NotBlank {
				expect = types.TestExpectation{StatusCodes: validationStatuses()}
			}
			cases = append(cases, s.newCase(ep, types.CategoryBoundary,
				"empty_"+p.Name,
				fmt.Sprintf("Boundary: %s empty", p.Name),
				fmt.Sprintf("Empty string for parameter %q", p.Name),
				with(valid, p, ""),
				expect))
		}
	}
	return cases
}

func numericValue(paramType string, v float64) interface{} {
	if paramType == "double" {
		return v
	}
	return int64(v)
}

func (s *Synthesizer) exceptionCases(ep types.EndpointDescriptor) []types.TestCase {
	var target *types.Parameter
	for _, p := range effectiveParams(ep) {
		if p.Type == "string" {
			target = &p
			break
		}
	}
	if target == nil {
		return nil
	}

	valid := s.validInput(ep)
	sqli := sqlInjectionPayloads[s.rng.Intn(len(sqlInjectionPayloads))]
	xss := xssPayloads[s.rng.Intn(len(xssPayloads))]

	return []types.TestCase{
		s.newCase(ep, types.CategoryException, "sql_injection",
			fmt.Sprintf("Exception: SQL injection via %s", target.Name),
			fmt.Sprintf("SQL injection payload in parameter %q", target.Name),
			with(valid, *target, sqli),
			types.TestExpectation{
				StatusCodes:         []int{200, 400},
				ResponseNotContains: append([]string{}, sqlLeakageMarkers...),
			}),
		s.newCase(ep, types.CategoryException, "xss",
			fmt.Sprintf("Exception: XSS via %s", target.Name),
			fmt.Sprintf("Cross-site scripting payload in parameter %q", target.Name),
			with(valid, *target, xss),
			types.TestExpectation{
				StatusCodes:         []int{200, 400},
				ResponseNotContains: append([]string{}, xssLeakageMarkers...),
			}),
		s.newCase(ep, types.CategoryException, "special_chars",
			fmt.Sprintf("Exception: special characters via %s", target.Name),
			fmt.Sprintf("Special-character string in parameter %q", target.Name),
			with(valid, *target, specialCharacters),
			types.TestExpectation{StatusCodes: []int{200, 400}}),
	}
}
