package dsl

import "fmt"

// ParseError reports a lexical or grammatical error at a specific
// line. Parser errors abort the current top-level statement
// atomically — no partial state is committed (§7).
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dsl: parse error at line %d: %s", e.Line, e.Message)
}

func newParseError(line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// SSAViolation is returned when a destination `@name` is assigned more
// than once in the same scope (§4.5 rule 2, §7).
type SSAViolation struct {
	Name string
	Line int
}

func (e *SSAViolation) Error() string {
	return fmt.Sprintf("dsl: SSA violation at line %d: %q already assigned in this scope", e.Line, e.Name)
}

// UnresolvedReference is returned when `$name` is used without a
// preceding `@name` in scope (§4.5 rule 3, §7).
type UnresolvedReference struct {
	Name string
	Line int
}

func (e *UnresolvedReference) Error() string {
	return fmt.Sprintf("dsl: unresolved reference at line %d: %q has no prior @%s binding", e.Line, e.Name, e.Name)
}

// MultipleDestinations is returned when more than one `@` token
// appears on a single statement line (§4.5 rule 1).
type MultipleDestinations struct {
	Line int
}

func (e *MultipleDestinations) Error() string {
	return fmt.Sprintf("dsl: multiple @ destinations on one statement at line %d", e.Line)
}

// CommentPolicyViolation is returned under `require` comment policy
// when a theory-file statement lacks an inline comment of at least
// three words (§4.5).
type CommentPolicyViolation struct {
	Line int
}

func (e *CommentPolicyViolation) Error() string {
	return fmt.Sprintf("dsl: comment policy violation at line %d: statement requires a >=3-word inline comment", e.Line)
}
