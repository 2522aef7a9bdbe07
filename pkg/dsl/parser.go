package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// CommentPolicy controls how aggressively the parser enforces inline
// comments on theory-file statements (§4.5).
type CommentPolicy int

const (
	// CommentOff never checks comment density — the default for
	// ad-hoc input.
	CommentOff CommentPolicy = iota
	// CommentWarn records a warning (via Parser.Warnings) for any
	// theory-file statement with fewer than 3 comment words.
	CommentWarn
	// CommentRequire rejects such statements with a
	// CommentPolicyViolation.
	CommentRequire
)

// scope tracks single-assignment destinations and resolved references
// within one lexical block (§4.5 rules 2, 3).
type scope struct {
	assigned map[string]bool
}

func newScope() *scope { return &scope{assigned: make(map[string]bool)} }

func (s *scope) assign(name string, line int) error {
	if s.assigned[name] {
		return &SSAViolation{Name: name, Line: line}
	}
	s.assigned[name] = true
	return nil
}

func (s *scope) resolve(name string, line int) error {
	if !s.assigned[name] {
		return &UnresolvedReference{Name: name, Line: line}
	}
	return nil
}

// Parser turns a token stream into a Program, enforcing the grammar's
// hard rules and (optionally) its comment-density policy.
type Parser struct {
	all      []Token // full stream, comments included
	toks     []Token // same stream with comment tokens stripped
	idxInAll []int   // toks[i] -> index into all
	pos      int
	policy   CommentPolicy

	// Warnings accumulates non-fatal comment-policy warnings when
	// policy == CommentWarn.
	Warnings []string
}

// NewParser builds a Parser over src using the given comment policy.
func NewParser(src string, policy CommentPolicy) (*Parser, error) {
	lex := NewLexer(src)
	all, err := lex.Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{all: all, policy: policy}
	for i, t := range all {
		if t.Kind != TokComment {
			p.toks = append(p.toks, t)
			p.idxInAll = append(p.idxInAll, i)
		}
	}
	return p, nil
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(off int) Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// commentFollowing returns the comment text immediately trailing the
// token consumed just before the current position (same line), if
// any — used both to attach Statement.Comment and to enforce the
// comment policy.
func (p *Parser) commentFollowing() string {
	if p.pos == 0 {
		return ""
	}
	lastAllIdx := p.idxInAll[p.pos-1]
	if lastAllIdx+1 < len(p.all) && p.all[lastAllIdx+1].Kind == TokComment {
		return p.all[lastAllIdx+1].Text
	}
	return ""
}

func (p *Parser) skipNewlines() {
	for p.cur().Kind == TokNewline {
		p.advance()
	}
}

// Parse parses the entire token stream into a Program.
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}
	sc := newScope()
	p.skipNewlines()
	for p.cur().Kind != TokEOF {
		node, err := p.parseTopLevel(sc)
		if err != nil {
			return nil, err
		}
		if node != nil {
			prog.Nodes = append(prog.Nodes, node)
		}
		p.skipNewlines()
	}
	return prog, nil
}

func (p *Parser) parseTopLevel(sc *scope) (Node, error) {
	dest, err := p.tryParseDestination(sc)
	if err != nil {
		return nil, err
	}

	if dest == nil && p.cur().Kind == TokIdent && p.cur().Text == "theory" {
		return p.parseTheoryForm2()
	}
	if p.cur().Kind == TokIdent && (p.cur().Text == "graph" || p.cur().Text == "macro") {
		return p.parseGraph(dest)
	}
	if dest != nil && p.cur().Kind == TokIdent && p.cur().Text == "theory" {
		return p.parseTheoryForm1(dest.Name)
	}
	if dest != nil && p.cur().Kind == TokIdent && p.cur().Text == "solve" {
		return p.parseSolve(dest)
	}
	return p.parseStatement(dest, sc)
}

// tryParseDestination consumes a leading `@Ident[:Ident]` or `@:Ident`
// destination, if present, enforcing rule 1 (at most one `@` per
// line) implicitly by only ever consuming a single leading one.
func (p *Parser) tryParseDestination(sc *scope) (*Destination, error) {
	switch p.cur().Kind {
	case TokAtColon:
		line := p.cur().Line
		p.advance()
		if p.cur().Kind != TokIdent {
			return nil, newParseError(line, "expected identifier after @:")
		}
		name := p.advance().Text
		return &Destination{Persist: name}, nil
	case TokAt:
		line := p.cur().Line
		p.advance()
		if p.cur().Kind != TokIdent {
			return nil, newParseError(line, "expected identifier after @")
		}
		name := p.advance().Text
		dest := &Destination{Name: name}
		if p.cur().Kind == TokColon {
			p.advance()
			if p.cur().Kind != TokIdent {
				return nil, newParseError(line, "expected identifier after @%s:", name)
			}
			dest.Persist = p.advance().Text
		}
		if err := sc.assign(name, line); err != nil {
			return nil, err
		}
		// A second '@' on the same statement is a MultipleDestinations
		// error, never a second Destination — the grammar allows only
		// one per line.
		if p.cur().Kind == TokAt || p.cur().Kind == TokAtColon {
			return nil, &MultipleDestinations{Line: p.cur().Line}
		}
		return dest, nil
	default:
		return nil, nil
	}
}

func (p *Parser) parseStatement(dest *Destination, sc *scope) (*Statement, error) {
	line := p.cur().Line
	if p.cur().Kind == TokEOF || p.cur().Kind == TokNewline {
		return nil, newParseError(line, "expected an operator")
	}
	operator, err := p.parseExpr(sc)
	if err != nil {
		return nil, err
	}
	var args []Expr
	for !p.atStatementEnd() {
		arg, err := p.parseExpr(sc)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	comment := p.commentFollowing()
	stmt := &Statement{Dest: dest, Operator: operator, Args: args, Line: line, Comment: comment}
	if p.cur().Kind == TokAt || p.cur().Kind == TokAtColon {
		return nil, &MultipleDestinations{Line: p.cur().Line}
	}
	if p.cur().Kind == TokNewline {
		p.advance()
	}
	return stmt, nil
}

// atStatementEnd reports whether the parser has reached a statement
// boundary: newline, EOF, or a closing bracket belonging to an
// enclosing list/block (§6: "a statement ends at newline, EOF,
// comment, or closing bracket of an enclosing list/block").
func (p *Parser) atStatementEnd() bool {
	switch p.cur().Kind {
	case TokEOF, TokNewline, TokRBracket, TokRParen:
		return true
	case TokIdent:
		return p.cur().Text == "end"
	default:
		return false
	}
}

func (p *Parser) parseExpr(sc *scope) (Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokIdent:
		p.advance()
		return &Ident{Name: tok.Text, Line: tok.Line}, nil
	case TokQuestion:
		p.advance()
		return &Hole{Name: tok.Text, Line: tok.Line}, nil
	case TokDollar:
		p.advance()
		if err := sc.resolve(tok.Text, tok.Line); err != nil {
			return nil, err
		}
		return &Reference{Name: tok.Text, Line: tok.Line}, nil
	case TokNumber:
		p.advance()
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, newParseError(tok.Line, "invalid number %q: %v", tok.Text, err)
		}
		return &Number{Value: v, Raw: tok.Text, Line: tok.Line}, nil
	case TokString:
		p.advance()
		return &String{Value: tok.Text, Line: tok.Line}, nil
	case TokLBracket:
		return p.parseList(sc)
	case TokLParen:
		return p.parseCompound(sc)
	default:
		return nil, newParseError(tok.Line, "unexpected token %v", tok)
	}
}

func (p *Parser) parseList(sc *scope) (Expr, error) {
	line := p.advance().Line // consume [
	list := &List{Line: line}
	if p.cur().Kind == TokRBracket {
		p.advance()
		return list, nil
	}
	for {
		item, err := p.parseExpr(sc)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if p.cur().Kind != TokRBracket {
		return nil, newParseError(p.cur().Line, "expected ']' to close list")
	}
	p.advance()
	return list, nil
}

func (p *Parser) parseCompound(sc *scope) (Expr, error) {
	line := p.advance().Line // consume (
	operator, err := p.parseExpr(sc)
	if err != nil {
		return nil, err
	}
	compound := &Compound{Operator: operator, Line: line}
	for p.cur().Kind != TokRParen {
		if p.cur().Kind == TokEOF || p.cur().Kind == TokNewline {
			return nil, newParseError(line, "unterminated compound expression")
		}
		arg, err := p.parseExpr(sc)
		if err != nil {
			return nil, err
		}
		compound.Args = append(compound.Args, arg)
	}
	p.advance() // consume )
	if len(compound.Args) == 0 {
		return nil, newParseError(line, "compound expression requires at least one argument")
	}
	return compound, nil
}

func (p *Parser) expectIdentText(text string) error {
	if p.cur().Kind != TokIdent || p.cur().Text != text {
		return newParseError(p.cur().Line, "expected %q, got %v", text, p.cur())
	}
	p.advance()
	return nil
}

func (p *Parser) parseTheoryForm1(name string) (*TheoryDeclaration, error) {
	line := p.cur().Line
	if err := p.expectIdentText("theory"); err != nil {
		return nil, err
	}
	if p.cur().Kind != TokNumber {
		return nil, newParseError(p.cur().Line, "expected dimension number in theory declaration")
	}
	dim, _ := strconv.ParseFloat(p.advance().Text, 64)
	det := false
	if p.cur().Kind == TokIdent && (p.cur().Text == "deterministic" || p.cur().Text == "random") {
		det = p.advance().Text == "deterministic"
	}
	p.skipNewlines()
	body, err := p.parseBlockBody("end")
	if err != nil {
		return nil, err
	}
	if err := p.expectIdentText("end"); err != nil {
		return nil, err
	}
	return &TheoryDeclaration{Name: name, Dimension: dim, Deterministic: det, Body: body, Line: line}, nil
}

func (p *Parser) parseTheoryForm2() (*TheoryDeclaration, error) {
	line := p.cur().Line
	if err := p.expectIdentText("theory"); err != nil {
		return nil, err
	}
	if p.cur().Kind != TokIdent {
		return nil, newParseError(p.cur().Line, "expected theory name")
	}
	name := p.advance().Text
	closer, err := p.consumeBlockOpener()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	body, err := p.parseBlockBody(closer)
	if err != nil {
		return nil, err
	}
	if err := p.consumeBlockCloser(closer); err != nil {
		return nil, err
	}
	return &TheoryDeclaration{Name: name, Body: body, Line: line}, nil
}

// consumeBlockOpener consumes 'begin' or '[' and returns the matching
// closer token text/kind marker used by parseBlockBody. A '{' opener is
// not accepted: the lexer has no brace token and rejects '{' as an
// unexpected character.
func (p *Parser) consumeBlockOpener() (string, error) {
	switch {
	case p.cur().Kind == TokIdent && p.cur().Text == "begin":
		p.advance()
		return "end", nil
	case p.cur().Kind == TokLBracket:
		p.advance()
		return "]", nil
	default:
		return "", newParseError(p.cur().Line, "expected a block opener ('begin' or '[')")
	}
}

func (p *Parser) consumeBlockCloser(closer string) error {
	switch closer {
	case "]":
		if p.cur().Kind != TokRBracket {
			return newParseError(p.cur().Line, "expected ']' to close block")
		}
		p.advance()
		return nil
	default:
		return p.expectIdentText(closer)
	}
}

// parseBlockBody parses Statement* until it encounters a token that
// would close the enclosing block (an ident matching closer, or a
// TokRBracket when closer == "]").
func (p *Parser) parseBlockBody(closer string) ([]*Statement, error) {
	var stmts []*Statement
	sc := newScope()
	p.skipNewlines()
	for {
		if p.cur().Kind == TokEOF {
			return nil, newParseError(p.cur().Line, "unexpected EOF inside block")
		}
		if closer == "]" && p.cur().Kind == TokRBracket {
			return stmts, nil
		}
		if p.cur().Kind == TokIdent && p.cur().Text == closer {
			return stmts, nil
		}
		dest, err := p.tryParseDestination(sc)
		if err != nil {
			return nil, err
		}
		stmt, err := p.parseStatement(dest, sc)
		if err != nil {
			return nil, err
		}
		if err := p.checkCommentPolicy(stmt); err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipNewlines()
	}
}

func (p *Parser) checkCommentPolicy(stmt *Statement) error {
	if p.policy == CommentOff {
		return nil
	}
	words := len(strings.Fields(stmt.Comment))
	if words >= 3 {
		return nil
	}
	if p.policy == CommentRequire {
		return &CommentPolicyViolation{Line: stmt.Line}
	}
	p.Warnings = append(p.Warnings, fmt.Sprintf("line %d: statement has fewer than 3 comment words", stmt.Line))
	return nil
}

func (p *Parser) parseGraph(dest *Destination) (*GraphDeclaration, error) {
	line := p.cur().Line
	p.advance() // 'graph' or 'macro'
	if p.cur().Kind != TokIdent {
		return nil, newParseError(line, "expected graph name")
	}
	name := p.advance().Text
	var params []string
	for p.cur().Kind == TokIdent || p.cur().Kind == TokQuestion {
		params = append(params, p.advance().Text)
	}
	p.skipNewlines()

	decl := &GraphDeclaration{Dest: dest, Name: name, Params: params, Line: line}
	sc := newScope()
	for {
		if p.cur().Kind == TokEOF {
			return nil, newParseError(line, "unexpected EOF inside graph body")
		}
		if p.cur().Kind == TokIdent && p.cur().Text == "end" {
			p.advance()
			return decl, nil
		}
		if p.cur().Kind == TokIdent && p.cur().Text == "return" {
			p.advance()
			ret, err := p.parseReturnExpr(sc)
			if err != nil {
				return nil, err
			}
			decl.Return = ret
			if p.cur().Kind == TokNewline {
				p.advance()
			}
			p.skipNewlines()
			if err := p.expectIdentText("end"); err != nil {
				return nil, err
			}
			return decl, nil
		}
		innerDest, err := p.tryParseDestination(sc)
		if err != nil {
			return nil, err
		}
		stmt, err := p.parseStatement(innerDest, sc)
		if err != nil {
			return nil, err
		}
		decl.Body = append(decl.Body, stmt)
		p.skipNewlines()
	}
}

// parseReturnExpr parses the expression after `return`, which may be
// a single Expr or an operator followed by bare arguments without
// enclosing parens (rule 4: `return And $x $y`).
func (p *Parser) parseReturnExpr(sc *scope) (Expr, error) {
	first, err := p.parseExpr(sc)
	if err != nil {
		return nil, err
	}
	if p.atStatementEnd() {
		return first, nil
	}
	compound := &Compound{Operator: first}
	if id, ok := first.(*Ident); ok {
		compound.Line = id.Line
	}
	for !p.atStatementEnd() {
		arg, err := p.parseExpr(sc)
		if err != nil {
			return nil, err
		}
		compound.Args = append(compound.Args, arg)
	}
	return compound, nil
}

func (p *Parser) parseSolve(dest *Destination) (*SolveBlock, error) {
	line := p.cur().Line
	if err := p.expectIdentText("solve"); err != nil {
		return nil, err
	}
	if p.cur().Kind != TokIdent {
		return nil, newParseError(line, "expected relation name after solve")
	}
	relation := p.advance().Text
	p.skipNewlines()

	block := &SolveBlock{Dest: dest, Relation: relation, Line: line}
	sc := newScope()
	for {
		if p.cur().Kind == TokEOF {
			return nil, newParseError(line, "unexpected EOF inside solve block")
		}
		if p.cur().Kind == TokIdent && p.cur().Text == "end" {
			p.advance()
			return block, nil
		}
		innerDest, err := p.tryParseDestination(sc)
		if err != nil {
			return nil, err
		}
		stmt, err := p.parseStatement(innerDest, sc)
		if err != nil {
			return nil, err
		}
		block.Decls = append(block.Decls, &SolveDecl{Statement: stmt})
		p.skipNewlines()
	}
}
