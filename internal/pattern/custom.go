package pattern

import (
	"fmt"
	"regexp"
)

// maxCustomPatternLength bounds user-supplied expressions. Longer patterns
// are rejected outright rather than analyzed.
const maxCustomPatternLength = 500

// dangerousShapes are regex fragments known to cause catastrophic
// backtracking in backtracking engines. Go's RE2 engine is immune, but
// admitted patterns may travel to collaborators on other engines, and the
// library guarantees bounded matching for everything it holds, so these
// shapes are rejected at the gate.
var dangerousShapes = []*regexp.Regexp{
	// A quantified group that itself contains an unbounded quantifier,
	// e.g. (a+)+ or (\w*)* .
	regexp.MustCompile(`\([^()]*[*+][^()]*\)\s*[*+]`),

	// Adjacent unbounded wildcards, e.g. .*.* .
	regexp.MustCompile(`\.[*+].{0,10}\.[*+]`),

	// A counted repetition applied to an already-quantified expression,
	// e.g. a+{10} .
	regexp.MustCompile(`[*+]\{`),

	// Very large repetition counts.
	regexp.MustCompile(`\{\d{4,}(?:,\d*)?\}`),
}

// CompileCustom runs the custom-pattern admission gate: length limit,
// dangerous-shape rejection, and successful compilation, in that order.
// On success the compiled expression is returned for merging into the
// library at the custom tier.
func CompileCustom(expr string) (*regexp.Regexp, error) {
	if len(expr) > maxCustomPatternLength {
		return nil, fmt.Errorf("%w (%d characters)", ErrPatternTooLong, len(expr))
	}

	for _, shape := range dangerousShapes {
		if shape.MatchString(expr) {
			return nil, fmt.Errorf("%w: %q", ErrPatternDangerous, expr)
		}
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}
