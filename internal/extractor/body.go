package extractor

import (
	"regexp"
	"strings"

	"api-test-engine/internal/types"
)

const maxFieldDepth = 3

// resolveBody builds the request body descriptor for a body-bound
// parameter. Field inspection is best-effort: when the declared type is
// not defined in the same source text, the field list stays empty.
func resolveBody(source, declType string) *types.RequestBody {
	typeName := baseTypeName(declType)
	return &types.RequestBody{
		TypeName:    typeName,
		ContentType: "application/json",
		Fields:      resolveFields(source, typeName, 0),
	}
}

// resolveFields scans a locally defined class (or record) body for field
// declarations and their validation annotations.
func resolveFields(source, typeName string, depth int) []types.Field {
	if depth >= maxFieldDepth || typeName == "" {
		return nil
	}
	body, ok := typeBody(source, typeName)
	if !ok {
		return nil
	}

	var fields []types.Field
	for _, decl := range fieldDeclarations(body) {
		var annotations []annotation
		rest := decl
		for strings.HasPrefix(rest, "@") {
			ann, next := readAnnotation(rest, 0)
			annotations = append(annotations, ann)
			rest = strings.TrimSpace(rest[next:])
		}
		for _, mod := range []string{"private ", "protected ", "public ", "static ", "transient ", "final "} {
			rest = strings.TrimSpace(strings.TrimPrefix(rest, mod))
		}
		if strings.ContainsAny(rest, "(=") {
			// Abstract method or initialized constant, not a data field.
			continue
		}
		declType, name, ok := splitTypeAndName(rest)
		if !ok {
			continue
		}

		field := types.Field{
			Name:        name,
			Type:        mapDeclaredType(declType),
			Constraints: parseConstraints(annotations),
		}
		field.Required = field.Constraints != nil && (field.Constraints.NotNull || field.Constraints.NotBlank)
		if field.Type == "unknown" {
			field.Fields = resolveFields(source, baseTypeName(declType), depth+1)
		}
		fields = append(fields, field)
	}
	return fields
}

var typeDeclRe = regexp.MustCompile(`\b(?:class|record)\s+(\w+)`)

// typeBody returns the brace-delimited body of a class declared in the
// same source text.
func typeBody(source, typeName string) (string, bool) {
	for _, loc := range typeDeclRe.FindAllStringSubmatchIndex(source, -1) {
		name := source[loc[2]:loc[3]]
		if name != typeName {
			continue
		}
		open := strings.IndexByte(source[loc[1]:], '{')
		if open < 0 {
			return "", false
		}
		start := loc[1] + open
		depth := 0
		for i := start; i < len(source); i++ {
			switch source[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return source[start+1 : i], true
				}
			}
		}
	}
	return "", false
}

// fieldDeclarations splits a class body into per-field declaration
// strings, annotations included, methods excluded.
func fieldDeclarations(body string) []string {
	var decls []string
	var current strings.Builder
	depth := 0
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch ch {
		case '{':
			depth++
			// Entering a method or initializer body; whatever was
			// buffered belongs to it, not to a field.
			current.Reset()
		case '}':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				decl := strings.TrimSpace(current.String())
				if decl != "" {
					decls = append(decls, decl)
				}
			}
			current.Reset()
		default:
			if depth == 0 {
				current.WriteByte(ch)
			}
		}
	}
	return decls
}
