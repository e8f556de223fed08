package basicio

import "fmt"

// SyntaxError reports malformed basic-IO input, carrying the 1-based line
// and column at which the problem was detected and a human-readable reason.
// This is the "malformed input" error family from the specification: it
// never mutates caller state and is meant to be safe to show to a user
// verbatim.
type SyntaxError struct {
	Line   int
	Column int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("basic-IO syntax error at line %d, column %d: %s", e.Line, e.Column, e.Reason)
}
