// Package dsl implements the Sys2DSL lexer, parser, and AST: the
// single-line triple grammar (`@dest[:persist] operator arg…`), graph
// (macro) blocks, and theory blocks (§4.5).
package dsl

// Node is the common interface for every AST node produced by Parse.
type Node interface {
	node()
}

// Expr is any expression: an identifier, hole, reference, literal,
// list, or compound call.
type Expr interface {
	Node
	expr()
}

// Ident is a bare identifier token (an operator name, concept name,
// or keyword used as a value).
type Ident struct {
	Name string
	Line int
}

func (*Ident) node() {}
func (*Ident) expr() {}

// Hole is a free variable, written `?name` (§4.5).
type Hole struct {
	Name string
	Line int
}

func (*Hole) node() {}
func (*Hole) expr() {}

// Reference is a binding lookup, written `$name`; it requires a prior
// `@name` destination in the same scope (§4.5 rule 3).
type Reference struct {
	Name string
	Line int
}

func (*Reference) node() {}
func (*Reference) expr() {}

// Number is a numeric literal.
type Number struct {
	Value float64
	Raw   string
	Line  int
}

func (*Number) node() {}
func (*Number) expr() {}

// String is a quoted string literal.
type String struct {
	Value string
	Line  int
}

func (*String) node() {}
func (*String) expr() {}

// List is a bracketed, comma-separated expression list: `[e1, e2, …]`.
type List struct {
	Items []Expr
	Line  int
}

func (*List) node() {}
func (*List) expr() {}

// Compound is a parenthesized nested call: `(Operator Expr+)`.
type Compound struct {
	Operator Expr
	Args     []Expr
	Line     int
}

func (*Compound) node() {}
func (*Compound) expr() {}

// Destination describes the optional `@name[:persist]` prefix of a
// statement.
type Destination struct {
	Name    string
	Persist string // non-empty when `:persist` is present
}

// Statement is one parsed DSL line: an optional destination, an
// operator, and zero or more argument expressions (§4.5).
type Statement struct {
	Dest     *Destination
	Operator Expr
	Args     []Expr
	Line     int
	Comment  string
}

func (*Statement) node() {}

// GraphDeclaration is a `graph`/`macro` block defining a new
// composite HDC operation (§4.5, glossary "Graph (macro)").
type GraphDeclaration struct {
	Dest   *Destination
	Name   string
	Params []string
	Body   []*Statement
	Return Expr // nil if the block has no `return`
	Line   int
}

func (*GraphDeclaration) node() {}

// TheoryDeclaration is a named, pushable/poppable scope of facts and
// rules (§3, §4.5).
type TheoryDeclaration struct {
	Name         string
	Dimension    float64 // the `@Ident theory Number (...)` numeric form; 0 if unset
	Deterministic bool
	Body         []*Statement
	Line         int
}

func (*TheoryDeclaration) node() {}

// SolveDecl is one declaration line inside a SolveBlock.
type SolveDecl struct {
	Statement *Statement
}

// SolveBlock is an `@name solve relation ... end` block (§4.5).
type SolveBlock struct {
	Dest     *Destination
	Relation string
	Decls    []*SolveDecl
	Line     int
}

func (*SolveBlock) node() {}

// Program is the top-level parse result: an ordered sequence of
// statements and declarations.
type Program struct {
	Nodes []Node
}
