package extractor

import (
	"regexp"
	"strings"

	"api-test-engine/internal/types"
)

// Mapping annotations the scanner recognizes. The generic one carries its
// verb in the argument list.
var verbAnnotations = map[string]types.Method{
	"GetMapping":    types.MethodGet,
	"PostMapping":   types.MethodPost,
	"PutMapping":    types.MethodPut,
	"DeleteMapping": types.MethodDelete,
	"PatchMapping":  types.MethodPatch,
}

const genericMapping = "RequestMapping"

var (
	classDeclRe = regexp.MustCompile(`\bclass\s+\w+`)
	verbTokenRe = regexp.MustCompile(`\b(GET|POST|PUT|DELETE|PATCH)\b`)
)

// Extractor scans annotated controller source text for endpoints.
// Extraction is best-effort: methods that do not match a recognized
// annotation pattern are skipped, malformed parameters are dropped.
type Extractor struct{}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the endpoints declared in the given controller source.
func (e *Extractor) Extract(source, controller string) []types.EndpointDescriptor {
	classIdx := len(source)
	if loc := classDeclRe.FindStringIndex(source); loc != nil {
		classIdx = loc[0]
	}

	basePath := e.classBasePath(source[:classIdx])

	var endpoints []types.EndpointDescriptor
	for i := 0; i < len(source); i++ {
		if source[i] != '@' {
			continue
		}
		ann, next := readAnnotation(source, i)
		_, isVerb := verbAnnotations[ann.Name]
		if !isVerb && ann.Name != genericMapping {
			i = next - 1
			continue
		}
		if i < classIdx {
			// Class-level prefix, already consumed as the base path.
			i = next - 1
			continue
		}

		ep, ok := e.extractOperation(source, i, next, ann, basePath, controller)
		if ok {
			endpoints = append(endpoints, ep)
		}
		i = next - 1
	}
	return endpoints
}

// classBasePath finds the class-level route prefix, defaulting to "".
func (e *Extractor) classBasePath(header string) string {
	for i := 0; i < len(header); i++ {
		if header[i] != '@' {
			continue
		}
		ann, next := readAnnotation(header, i)
		if ann.Name == genericMapping {
			if p, ok := annotationPath(ann.Args); ok {
				return p
			}
			return ""
		}
		i = next - 1
	}
	return ""
}

// extractOperation parses one annotated method starting at the mapping
// annotation. It returns ok=false when no method signature follows.
func (e *Extractor) extractOperation(source string, annStart, annEnd int, mapping annotation, basePath, controller string) (types.EndpointDescriptor, bool) {
	verb := inferVerb(mapping)

	fragment, _ := annotationPath(mapping.Args)
	fullPath := joinPath(basePath, fragment)

	// Gather the whole annotation run around the mapping: annotations
	// immediately preceding it plus any between it and the signature.
	// Summary and response metadata can sit on either side.
	pre, runStart := precedingAnnotations(source, annStart)
	run := append(append([]annotation{}, pre...), mapping)
	pos := skipSpace(source, annEnd)
	for pos < len(source) && source[pos] == '@' {
		ann, next := readAnnotation(source, pos)
		run = append(run, ann)
		pos = skipSpace(source, next)
	}

	// The method signature: modifiers and return type up to the first '(',
	// whose last identifier is the operation name.
	open := strings.IndexByte(source[pos:], '(')
	if open < 0 {
		return types.EndpointDescriptor{}, false
	}
	sigText := source[pos : pos+open]
	if strings.ContainsAny(sigText, "{};=") {
		// Not a method declaration immediately after the annotation.
		return types.EndpointDescriptor{}, false
	}
	opName := lastIdentifier(sigText)
	if opName == "" {
		return types.EndpointDescriptor{}, false
	}

	argText, _ := readBalanced(source, pos+open)

	ep := types.EndpointDescriptor{
		Method:      verb,
		Path:        fullPath,
		Controller:  controller,
		Operation:   opName,
		Description: e.description(source, runStart, run),
	}

	for _, frag := range splitTopLevel(argText) {
		param, rawType, ok := parseParameter(frag)
		if !ok {
			continue
		}
		ep.Parameters = append(ep.Parameters, *param)
		if param.In == types.InBody {
			ep.RequestBody = resolveBody(source, rawType)
		}
	}

	ep.Responses = e.responses(run)
	return ep, true
}

// inferVerb resolves the HTTP verb for a mapping annotation. The generic
// annotation may carry a verb token in its arguments; GET is the default.
func inferVerb(ann annotation) types.Method {
	if verb, ok := verbAnnotations[ann.Name]; ok {
		return verb
	}
	if m := verbTokenRe.FindString(ann.Args); m != "" {
		return types.Method(m)
	}
	return types.MethodGet
}

// annotationPath pulls the path fragment out of a mapping annotation's
// arguments: either a `value =`/`path =` pair or a bare string literal.
func annotationPath(args string) (string, bool) {
	if p, ok := namedArg(args, "value"); ok {
		return p, true
	}
	if p, ok := namedArg(args, "path"); ok {
		return p, true
	}
	trimmed := strings.TrimSpace(args)
	if strings.HasPrefix(trimmed, "\"") || strings.HasPrefix(trimmed, "{") {
		if p, ok := stringLiteral(trimmed); ok {
			return p, true
		}
	}
	return "", false
}

// joinPath combines the class-level base path with a method fragment so
// that exactly one slash separates segments and a bare "/" collapses.
func joinPath(base, fragment string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	fragment = strings.TrimSpace(fragment)
	if fragment != "" && !strings.HasPrefix(fragment, "/") {
		fragment = "/" + fragment
	}
	full := base + fragment
	if full == "" {
		return "/"
	}
	if !strings.HasPrefix(full, "/") {
		full = "/" + full
	}
	return full
}

// lastIdentifier returns the trailing identifier of a method signature
// prefix, i.e. the method name right before the parameter list.
func lastIdentifier(s string) string {
	s = strings.TrimSpace(s)
	end := len(s)
	start := end
	for start > 0 && isIdentChar(s[start-1]) {
		start--
	}
	name := s[start:end]
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return ""
	}
	return name
}

// precedingAnnotations returns the contiguous run of annotations that
// immediately precedes position i (separated only by whitespace), along
// with the index where that run starts. The search window is bounded; a
// method header longer than that is not a realistic controller.
func precedingAnnotations(source string, i int) ([]annotation, int) {
	lo := i - 800
	if lo < 0 {
		lo = 0
	}
	for at := lo; at < i; at++ {
		if source[at] != '@' {
			continue
		}
		var run []annotation
		p := at
		for p < i && source[p] == '@' {
			ann, next := readAnnotation(source, p)
			run = append(run, ann)
			p = skipSpace(source, next)
		}
		if p == i {
			return run, at
		}
	}
	return nil, i
}

// description resolves the endpoint description: a structured summary
// annotation wins, then an immediately preceding documentation comment.
func (e *Extractor) description(source string, annStart int, run []annotation) string {
	for _, ann := range run {
		if ann.Name == "Operation" {
			if s, ok := namedArg(ann.Args, "summary"); ok {
				return s
			}
		}
		if ann.Name == "ApiOperation" {
			if s, ok := namedArg(ann.Args, "value"); ok {
				return s
			}
			if s, ok := stringLiteral(ann.Args); ok {
				return s
			}
		}
	}
	return docComment(source, annStart)
}

// docComment extracts the first text line of a /** ... */ block that ends
// right before position i, allowing only whitespace in between.
func docComment(source string, i int) string {
	j := i
	for j > 0 && (source[j-1] == ' ' || source[j-1] == '\t' || source[j-1] == '\n' || source[j-1] == '\r') {
		j--
	}
	if j < 2 || source[j-2] != '*' || source[j-1] != '/' {
		return ""
	}
	start := strings.LastIndex(source[:j-2], "/**")
	if start < 0 {
		return ""
	}
	body := source[start+3 : j-2]
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "* \t")
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		return line
	}
	return ""
}

// responses collects documented responses from the annotation run, falling
// back to the default 200/400/500 triple.
func (e *Extractor) responses(run []annotation) []types.ResponseSpec {
	var specs []types.ResponseSpec
	for _, ann := range run {
		if ann.Name != "ApiResponse" && ann.Name != "ApiResponses" {
			continue
		}
		for _, inner := range collectAPIResponses(ann) {
			specs = append(specs, inner)
		}
	}
	if len(specs) > 0 {
		return specs
	}
	return []types.ResponseSpec{
		{StatusCode: 200, Description: "Success"},
		{StatusCode: 400, Description: "Bad Request"},
		{StatusCode: 500, Description: "Internal Server Error"},
	}
}

var responseCodeRe = regexp.MustCompile(`responseCode\s*=\s*"(\d+)"`)
var responseDescRe = regexp.MustCompile(`description\s*=\s*"([^"]*)"`)

func collectAPIResponses(ann annotation) []types.ResponseSpec {
	var specs []types.ResponseSpec
	codes := responseCodeRe.FindAllStringSubmatch(ann.Args, -1)
	descs := responseDescRe.FindAllStringSubmatch(ann.Args, -1)
	for i, c := range codes {
		code := 0
		for _, ch := range c[1] {
			code = code*10 + int(ch-'0')
		}
		spec := types.ResponseSpec{StatusCode: code}
		if i < len(descs) {
			spec.Description = descs[i][1]
		}
		specs = append(specs, spec)
	}
	return specs
}
