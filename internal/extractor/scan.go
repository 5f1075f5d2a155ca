package extractor

import (
	"strings"
	"unicode"
)

// annotation is one parsed @Name(args) token from the source text.
type annotation struct {
	Name string
	Args string
}

// readBalanced reads a parenthesized group starting at src[i] == '('. It
// returns the inner content and the index just past the closing paren.
// String literals are honored so parentheses inside quotes do not count.
func readBalanced(src string, i int) (string, int) {
	if i >= len(src) || src[i] != '(' {
		return "", i
	}
	depth := 0
	inString := false
	escaped := false
	start := i + 1
	for ; i < len(src); i++ {
		ch := src[i]
		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return src[start:i], i + 1
			}
		}
	}
	return src[start:], len(src)
}

// skipSpace advances past whitespace.
func skipSpace(src string, i int) int {
	for i < len(src) && unicode.IsSpace(rune(src[i])) {
		i++
	}
	return i
}

// readIdent reads a Java identifier starting at i.
func readIdent(src string, i int) (string, int) {
	start := i
	for i < len(src) && (isIdentChar(src[i])) {
		i++
	}
	return src[start:i], i
}

func isIdentChar(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// readAnnotation parses @Name(args) at src[i] == '@'. Returns the parsed
// annotation and the index just past it.
func readAnnotation(src string, i int) (annotation, int) {
	name, j := readIdent(src, i+1)
	k := skipSpace(src, j)
	if k < len(src) && src[k] == '(' {
		args, next := readBalanced(src, k)
		return annotation{Name: name, Args: args}, next
	}
	return annotation{Name: name}, j
}

// splitTopLevel splits s on commas that sit outside every kind of bracket
// and outside string literals. Generic type arguments therefore stay in
// one piece.
func splitTopLevel(s string) []string {
	var parts []string
	var angle, paren, square, brace int
	inString := false
	escaped := false
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '<':
			angle++
		case '>':
			if angle > 0 {
				angle--
			}
		case '(':
			paren++
		case ')':
			paren--
		case '[':
			square++
		case ']':
			square--
		case '{':
			brace++
		case '}':
			brace--
		case ',':
			if angle == 0 && paren == 0 && square == 0 && brace == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if trimmed := strings.TrimSpace(s[start:]); trimmed != "" || len(parts) > 0 {
		parts = append(parts, s[start:])
	}
	return parts
}

// stringLiteral extracts the first double-quoted literal from s, if any.
func stringLiteral(s string) (string, bool) {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return "", false
	}
	for i := start + 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			return s[start+1 : i], true
		}
	}
	return "", false
}

// namedArg extracts a `key = "literal"` argument from an annotation
// argument list.
func namedArg(args, key string) (string, bool) {
	idx := 0
	for {
		pos := strings.Index(args[idx:], key)
		if pos < 0 {
			return "", false
		}
		pos += idx
		// Reject partial identifier matches such as "pathVariable".
		if pos > 0 && isIdentChar(args[pos-1]) {
			idx = pos + len(key)
			continue
		}
		rest := pos + len(key)
		if rest < len(args) && isIdentChar(args[rest]) {
			idx = rest
			continue
		}
		j := skipSpace(args, rest)
		if j >= len(args) || args[j] != '=' {
			idx = rest
			continue
		}
		j = skipSpace(args, j+1)
		if j < len(args) && args[j] == '"' {
			return stringLiteral(args[j:])
		}
		// Bare value, read up to the next top-level comma.
		end := j
		for end < len(args) && args[end] != ',' && args[end] != ')' {
			end++
		}
		return strings.TrimSpace(args[j:end]), true
	}
}
