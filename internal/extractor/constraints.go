package extractor

import (
	"strconv"
	"strings"

	"api-test-engine/internal/types"
)

// parseConstraints merges the validation annotations of one parameter or
// field into a single Constraints value. Unrecognized annotations are
// ignored; a malformed argument simply leaves that constraint unset.
func parseConstraints(annotations []annotation) *types.Constraints {
	c := &types.Constraints{}
	for _, ann := range annotations {
		switch ann.Name {
		case "NotNull":
			c.NotNull = true
		case "NotBlank", "NotEmpty":
			c.NotBlank = true
		case "Email":
			c.Email = true
		case "Phone":
			c.Phone = true
		case "Size":
			if v, ok := intArg(ann.Args, "min"); ok {
				c.MinLength = &v
			}
			if v, ok := intArg(ann.Args, "max"); ok {
				c.MaxLength = &v
			}
		case "Min", "DecimalMin":
			if v, ok := floatValue(ann.Args); ok {
				c.Min = &v
			}
		case "Max", "DecimalMax":
			if v, ok := floatValue(ann.Args); ok {
				c.Max = &v
			}
		case "Pattern":
			if v, ok := namedArg(ann.Args, "regexp"); ok {
				c.Pattern = v
				if strings.Contains(strings.ToLower(v), "phone") {
					c.Phone = true
				}
			}
		}
	}
	if c.Empty() {
		return nil
	}
	return c
}

// intArg reads a named integer annotation argument.
func intArg(args, key string) (int, bool) {
	raw, ok := namedArg(args, key)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

// floatValue reads the numeric argument of @Min/@Max, which may be a bare
// literal or a `value =` pair, possibly quoted for the decimal variants.
func floatValue(args string) (float64, bool) {
	raw, ok := namedArg(args, "value")
	if !ok {
		raw = strings.TrimSpace(args)
		if lit, found := stringLiteral(raw); found {
			raw = lit
		}
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "L")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
