package synthesizer

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"api-test-engine/internal/types"
)

// ValueGenerator produces a valid value for a declared semantic type under
// the given constraints. The default implementation is randomized; test
// suites can inject a deterministic one.
type ValueGenerator interface {
	Value(paramType string, constraints *types.Constraints) interface{}
}

// RandomGenerator is the default type-driven value source. Randomness is
// deliberately unseeded between runs.
type RandomGenerator struct {
	rng *rand.Rand
}

// NewRandomGenerator creates the default generator.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Value synthesizes a constraint-aware valid value.
func (g *RandomGenerator) Value(paramType string, c *types.Constraints) interface{} {
	switch paramType {
	case "string":
		return g.stringValue(c)
	case "int", "long":
		return g.intValue(c)
	case "double":
		return math.Round(g.rng.Float64()*100*100) / 100
	case "boolean":
		return true
	case "date":
		return time.Now().Format("2006-01-02")
	case "datetime":
		return time.Now().Format(time.RFC3339)
	case "list":
		return []interface{}{}
	case "map":
		return map[string]interface{}{}
	default:
		return "test_value"
	}
}

func (g *RandomGenerator) stringValue(c *types.Constraints) string {
	if c != nil {
		if c.Email {
			return "test@example.com"
		}
		if c.Phone {
			return "13812345678"
		}
		if len(c.Enum) > 0 {
			return c.Enum[0]
		}
		if c.Pattern != "" {
			// Best-effort literal for common pattern shapes.
			switch {
			case strings.Contains(c.Pattern, "\\d"), strings.Contains(c.Pattern, "[0-9]"):
				return "12345"
			case strings.Contains(c.Pattern, "[a-zA-Z]"), strings.Contains(c.Pattern, "[a-z]"):
				return "abcdef"
			}
		}
	}

	length := 8
	if c != nil {
		if c.MaxLength != nil && *c.MaxLength < length {
			length = *c.MaxLength
		}
		if c.MinLength != nil && *c.MinLength > length {
			length = *c.MinLength
		}
	}
	if length < 1 {
		length = 1
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumeric[g.rng.Intn(len(alphanumeric))]
	}
	return string(b)
}

func (g *RandomGenerator) intValue(c *types.Constraints) int64 {
	lo := int64(1)
	hi := int64(100)
	if c != nil {
		if c.Min != nil {
			lo = int64(*c.Min)
		}
		if c.Max != nil {
			hi = int64(*c.Max)
		}
	}
	if hi < lo {
		hi = lo
	}
	return lo + g.rng.Int63n(hi-lo+1)
}

// mismatchValue returns a literal of the wrong type for the given semantic
// type. ok is false when no meaningful mismatch exists (everything is a
// valid string), in which case no wrong-type case is synthesized.
func mismatchValue(paramType string) (interface{}, bool) {
	switch paramType {
	case "int", "long", "double":
		return "not_a_number", true
	case "boolean":
		return "not_a_boolean", true
	case "date", "datetime":
		return "not-a-date", true
	default:
		return nil, false
	}
}
