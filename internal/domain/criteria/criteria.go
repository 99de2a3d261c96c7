// Package criteria matches trait names, specializations, categories and
// relative levels against the qualifiers carried by bonus features.
package criteria

import (
	"strings"
)

// StringCompare selects how a String criterion compares its qualifier
type StringCompare string

const (
	Any              StringCompare = "any"
	Is               StringCompare = "is"
	IsNot            StringCompare = "is_not"
	Contains         StringCompare = "contains"
	DoesNotContain   StringCompare = "does_not_contain"
	StartsWith       StringCompare = "starts_with"
	DoesNotStartWith StringCompare = "does_not_start_with"
	EndsWith         StringCompare = "ends_with"
	DoesNotEndWith   StringCompare = "does_not_end_with"
)

// negated reports whether c is the negative form of a comparison
func (c StringCompare) negated() (StringCompare, bool) {
	switch c {
	case IsNot:
		return Is, true
	case DoesNotContain:
		return Contains, true
	case DoesNotStartWith:
		return StartsWith, true
	case DoesNotEndWith:
		return EndsWith, true
	}
	return c, false
}

// String is a case-insensitive string criterion. The zero value matches anything.
type String struct {
	Compare   StringCompare `json:"compare,omitempty" yaml:"compare,omitempty"`
	Qualifier string        `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
}

// IsString is shorthand for an exact match criterion
func IsString(q string) String {
	return String{Compare: Is, Qualifier: q}
}

// Matches tests a single value. Unknown compare values match nothing.
func (c String) Matches(value string) bool {
	v := strings.ToLower(value)
	q := strings.ToLower(c.Qualifier)
	switch c.Compare {
	case "", Any:
		return true
	case Is:
		return v == q
	case IsNot:
		return v != q
	case Contains:
		return strings.Contains(v, q)
	case DoesNotContain:
		return !strings.Contains(v, q)
	case StartsWith:
		return strings.HasPrefix(v, q)
	case DoesNotStartWith:
		return !strings.HasPrefix(v, q)
	case EndsWith:
		return strings.HasSuffix(v, q)
	case DoesNotEndWith:
		return !strings.HasSuffix(v, q)
	default:
		return false
	}
}

// MatchesList is true if any value matches. Negated compares are true only
// when no value matches the positive form. An empty list is tested as a
// single empty string.
func (c String) MatchesList(values ...string) bool {
	if c.Compare == "" || c.Compare == Any {
		return true
	}
	if len(values) == 0 {
		return c.Matches("")
	}
	if positive, ok := c.Compare.negated(); ok {
		p := String{Compare: positive, Qualifier: c.Qualifier}
		for _, v := range values {
			if p.Matches(v) {
				return false
			}
		}
		return true
	}
	for _, v := range values {
		if c.Matches(v) {
			return true
		}
	}
	return false
}

// KeySuffix narrows a feature-map key. Only exact matches can be indexed by
// qualifier; everything else lands in the wildcard bucket.
func (c String) KeySuffix() string {
	if c.Compare == Is {
		return "/" + strings.ToLower(c.Qualifier)
	}
	return "*"
}

// NumericCompare selects how a Numeric criterion compares its qualifier
type NumericCompare string

const (
	AnyNumber NumericCompare = "any"
	Exactly   NumericCompare = "is"
	AtLeast   NumericCompare = "at_least"
	AtMost    NumericCompare = "at_most"
)

// Numeric is an integer criterion. The zero value matches anything.
type Numeric struct {
	Compare   NumericCompare `json:"compare,omitempty" yaml:"compare,omitempty"`
	Qualifier int            `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
}

// Matches tests n against the qualifier
func (c Numeric) Matches(n int) bool {
	switch c.Compare {
	case "", AnyNumber:
		return true
	case Exactly:
		return n == c.Qualifier
	case AtLeast:
		return n >= c.Qualifier
	case AtMost:
		return n <= c.Qualifier
	default:
		return false
	}
}
