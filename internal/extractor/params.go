package extractor

import (
	"strings"

	"api-test-engine/internal/types"
)

// Framework-provided parameter types that are not user data.
var frameworkTypes = map[string]bool{
	"HttpServletRequest":  true,
	"HttpServletResponse": true,
	"HttpSession":         true,
	"BindingResult":       true,
	"Errors":              true,
	"Model":               true,
	"ModelMap":            true,
	"Principal":           true,
	"Authentication":      true,
	"UriComponentsBuilder": true,
	"RedirectAttributes":  true,
}

// parseParameter classifies one parameter fragment of a method signature.
// It returns the parameter, the raw declared type (for body resolution)
// and ok=false for fragments that are not user data or cannot be parsed.
func parseParameter(fragment string) (*types.Parameter, string, bool) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, "", false
	}

	// Peel leading annotations off the `Type name` tail.
	var annotations []annotation
	rest := fragment
	for strings.HasPrefix(rest, "@") {
		ann, next := readAnnotation(rest, 0)
		annotations = append(annotations, ann)
		rest = strings.TrimSpace(rest[next:])
	}

	rest = strings.TrimSpace(strings.TrimPrefix(rest, "final "))

	declType, varName, ok := splitTypeAndName(rest)
	if !ok {
		return nil, "", false
	}
	if frameworkTypes[baseTypeName(declType)] {
		return nil, "", false
	}

	param := &types.Parameter{
		Name:     varName,
		Type:     mapDeclaredType(declType),
		In:       types.InQuery,
		Required: false,
	}

	for _, ann := range annotations {
		switch ann.Name {
		case "PathVariable":
			param.In = types.InPath
			param.Required = true
			overrideName(param, ann.Args)
		case "RequestParam":
			param.In = types.InQuery
			param.Required = requiredArg(ann.Args)
			overrideName(param, ann.Args)
		case "RequestHeader":
			param.In = types.InHeader
			param.Required = requiredArg(ann.Args)
			overrideName(param, ann.Args)
		case "RequestBody":
			param.In = types.InBody
			param.Required = true
		}
	}

	param.Constraints = parseConstraints(annotations)
	return param, declType, true
}

// splitTypeAndName splits a `Type name` tail. The variable name is the
// trailing identifier; everything before it is the declared type.
func splitTypeAndName(s string) (string, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}
	end := len(s)
	start := end
	for start > 0 && isIdentChar(s[start-1]) {
		start--
	}
	name := s[start:end]
	declType := strings.TrimSpace(s[:start])
	if name == "" || declType == "" || (name[0] >= '0' && name[0] <= '9') {
		return "", "", false
	}
	return declType, name, true
}

// baseTypeName strips generics and array markers from a declared type.
func baseTypeName(declType string) string {
	if i := strings.IndexByte(declType, '<'); i >= 0 {
		declType = declType[:i]
	}
	declType = strings.TrimSuffix(declType, "[]")
	if i := strings.LastIndexByte(declType, '.'); i >= 0 {
		declType = declType[i+1:]
	}
	return strings.TrimSpace(declType)
}

// mapDeclaredType lowers a Java declared type to the engine's semantic
// type vocabulary.
func mapDeclaredType(declType string) string {
	base := baseTypeName(declType)
	switch base {
	case "String", "CharSequence", "char", "Character":
		return "string"
	case "int", "Integer", "short", "Short", "byte", "Byte":
		return "int"
	case "long", "Long", "BigInteger":
		return "long"
	case "double", "Double", "float", "Float", "BigDecimal":
		return "double"
	case "boolean", "Boolean":
		return "boolean"
	case "LocalDate", "Date", "java.sql.Date":
		return "date"
	case "LocalDateTime", "Instant", "Timestamp", "OffsetDateTime", "ZonedDateTime":
		return "datetime"
	case "List", "ArrayList", "Set", "HashSet", "Collection", "Iterable":
		return "list"
	case "Map", "HashMap", "LinkedHashMap", "TreeMap":
		return "map"
	}
	if strings.HasSuffix(declType, "[]") {
		return "list"
	}
	return "unknown"
}

// requiredArg reads an optional `required = true/false` annotation
// argument; the binding default is required.
func requiredArg(args string) bool {
	if v, ok := namedArg(args, "required"); ok {
		return v != "false"
	}
	return true
}

// overrideName applies a `value =` or `name =` binding-name override.
func overrideName(param *types.Parameter, args string) {
	if v, ok := namedArg(args, "value"); ok && v != "" {
		param.Name = v
		return
	}
	if v, ok := namedArg(args, "name"); ok && v != "" {
		param.Name = v
		return
	}
	// A bare literal names the binding too: @RequestParam("page").
	trimmed := strings.TrimSpace(args)
	if strings.HasPrefix(trimmed, "\"") {
		if v, ok := stringLiteral(trimmed); ok && v != "" {
			param.Name = v
		}
	}
}
