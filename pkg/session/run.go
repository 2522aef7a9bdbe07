package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sys2dsl/engine/pkg/dsl"
	"github.com/sys2dsl/engine/pkg/engine"
	"github.com/sys2dsl/engine/pkg/kb"
)

// execContext is the runtime binding environment for `@name`/`$name`
// resolution while a program executes — distinct from the parser's
// static scope (§4.5), which only checks SSA/reference *structure*.
// Graph invocations nest a child context so a macro's parameters
// shadow the caller's bindings without leaking back out.
type execContext struct {
	parent   *execContext
	bindings map[string]Binding
}

func newExecContext(parent *execContext) *execContext {
	return &execContext{parent: parent, bindings: make(map[string]Binding)}
}

func (c *execContext) set(name string, b Binding) {
	c.bindings[name] = b
}

func (c *execContext) get(name string) (Binding, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if b, ok := ctx.bindings[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// batchLayer tracks every fact learned during one Run call so that a
// contradiction rejection later in the same call can roll all of them
// back (§7's transactional-rollback guarantee, §8 scenario 4).
type batchLayer struct {
	facts []*kb.Fact
}

// rollbackBatch retracts every fact the active batch has accumulated
// so far and clears it, mirroring theoryStack's pop-time retraction
// but scoped to the current Run call instead of a pushed theory.
func (s *Session) rollbackBatch() {
	s.mu.Lock()
	b := s.batch
	s.mu.Unlock()
	if b == nil || len(b.facts) == 0 {
		return
	}
	for _, f := range b.facts {
		s.Store.Retract(f.Operator, f.Args)
	}
	s.mu.Lock()
	b.facts = nil
	s.mu.Unlock()
	s.cache.invalidate()
}

// ExecutionResult is the §6 "ExecutionResult" returned by Run: every
// binding produced, every fact learned, and every query/proof
// executed along the way, plus any per-statement errors (a parse
// error aborts the whole Run; a runtime error on one statement is
// recorded here and execution continues with the next statement,
// since statements are otherwise independent top-level entries).
type ExecutionResult struct {
	Bindings map[string]Binding
	Learned  []*kb.Fact
	Queries  []engine.QueryResult
	Proofs   []engine.ProofResult
	Errors   []error
}

// Run parses dsl and executes it statement by statement (§6
// "session.run(dsl) -> ExecutionResult"). It switches the session
// into LEARNING mode before executing; the previous mode is not
// restored when the call returns.
func (s *Session) Run(src string) (*ExecutionResult, error) {
	parser, err := dsl.NewParser(src, s.commentPolicy)
	if err != nil {
		return nil, err
	}
	program, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	s.SetMode(ModeLearning)

	s.mu.Lock()
	prevBatch := s.batch
	s.batch = &batchLayer{}
	s.mu.Unlock()

	result := &ExecutionResult{Bindings: make(map[string]Binding)}
	ctx := newExecContext(nil)
	for _, node := range program.Nodes {
		if err := s.execNode(node, ctx, result); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	s.mu.Lock()
	s.batch = prevBatch
	s.mu.Unlock()

	for name, b := range ctx.bindings {
		result.Bindings[name] = b
	}
	return result, nil
}

func (s *Session) execNode(node dsl.Node, ctx *execContext, result *ExecutionResult) error {
	switch n := node.(type) {
	case *dsl.Statement:
		return s.execStatement(n, ctx, result)
	case *dsl.GraphDeclaration:
		s.graphs.register(n)
		return nil
	case *dsl.TheoryDeclaration:
		return s.execTheory(n, ctx, result)
	case *dsl.SolveBlock:
		return s.execSolve(n, ctx, result)
	default:
		return fmt.Errorf("session: unhandled AST node %T", node)
	}
}

func (s *Session) execTheory(decl *dsl.TheoryDeclaration, ctx *execContext, result *ExecutionResult) error {
	s.PushTheory(decl.Name)
	for _, stmt := range decl.Body {
		if err := s.execStatement(stmt, ctx, result); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}
	s.PopTheory()
	return nil
}

func (s *Session) execSolve(block *dsl.SolveBlock, ctx *execContext, result *ExecutionResult) error {
	for _, decl := range block.Decls {
		if err := s.execStatement(decl.Statement, ctx, result); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}
	proof := s.Prove(block.Relation, nil, engine.Options{})
	result.Proofs = append(result.Proofs, proof)
	if block.Dest != nil {
		ctx.set(block.Dest.Name, Binding{Proof: &proof})
	}
	return nil
}

// reservedOperators are top-level verbs that dispatch to session
// methods instead of being learned as facts (§6 API surface exposed
// at the DSL level).
const (
	opRule              = "RULE"
	opAsk               = "ASK"
	opProve             = "PROVE"
	opRetract           = "RETRACT"
	opSetExistence      = "SET_EXISTENCE"
	opMutuallyExclusive = "MUTUALLY_EXCLUSIVE"
)

func (s *Session) execStatement(stmt *dsl.Statement, ctx *execContext, result *ExecutionResult) error {
	operatorName := s.resolveArgToken(stmt.Operator, ctx)

	if decl, ok := s.graphs.lookup(operatorName); ok {
		args := make([]string, len(stmt.Args))
		for i, a := range stmt.Args {
			args[i] = s.resolveArgToken(a, ctx)
		}
		value, err := s.invokeGraph(decl, args, ctx, result)
		if err != nil {
			return err
		}
		if stmt.Dest != nil {
			ctx.set(stmt.Dest.Name, Binding{Value: value})
		}
		return nil
	}

	if operatorName == opRule {
		return s.execRule(stmt, ctx)
	}

	args := make([]string, len(stmt.Args))
	for i, a := range stmt.Args {
		args[i] = s.resolveArgToken(a, ctx)
	}

	switch operatorName {
	case opAsk:
		if len(args) < 1 {
			return fmt.Errorf("session: ASK requires a target operator at line %d", stmt.Line)
		}
		qr := s.Ask(args[0], args[1:], engine.Options{})
		result.Queries = append(result.Queries, qr)
		if stmt.Dest != nil {
			ctx.set(stmt.Dest.Name, Binding{Query: &qr})
		}
		return nil
	case opProve:
		if len(args) < 1 {
			return fmt.Errorf("session: PROVE requires a target operator at line %d", stmt.Line)
		}
		pr := s.Prove(args[0], args[1:], engine.Options{})
		result.Proofs = append(result.Proofs, pr)
		if stmt.Dest != nil {
			ctx.set(stmt.Dest.Name, Binding{Proof: &pr})
		}
		return nil
	case opRetract:
		if len(args) < 1 {
			return fmt.Errorf("session: RETRACT requires a target operator at line %d", stmt.Line)
		}
		ok := s.Retract(args[0], args[1:])
		if stmt.Dest != nil {
			ctx.set(stmt.Dest.Name, Binding{Value: strconv.FormatBool(ok)})
		}
		return nil
	case opSetExistence:
		if len(args) < 2 {
			return fmt.Errorf("session: SET_EXISTENCE requires an existence level and target operator at line %d", stmt.Line)
		}
		level, ok := existenceFromName(args[0])
		if !ok {
			return fmt.Errorf("session: unknown existence level %q at line %d", args[0], stmt.Line)
		}
		f, err := s.SetExistence(args[1], args[2:], level, provenanceFor(stmt))
		if err != nil {
			return err
		}
		if stmt.Dest != nil {
			ctx.set(stmt.Dest.Name, Binding{Fact: f})
		}
		return nil
	case opMutuallyExclusive:
		if len(args) < 3 {
			return fmt.Errorf("session: MUTUALLY_EXCLUSIVE requires a relation and two values at line %d", stmt.Line)
		}
		s.Detector.RegisterMutualExclusion(args[0], args[1], args[2])
		return nil
	default:
		existence := existenceUnset
		if stmt.Dest != nil && stmt.Dest.Persist != "" {
			if lvl, ok := existenceFromName(stmt.Dest.Persist); ok {
				existence = lvl
			}
		}
		f, err := s.Learn(LearnRequest{
			Operator:   operatorName,
			Args:       args,
			Existence:  existence,
			Provenance: provenanceFor(stmt),
		})
		if err != nil {
			if _, ok := err.(*ContradictionRejected); ok {
				s.rollbackBatch()
			}
			return err
		}
		result.Learned = append(result.Learned, f)
		if stmt.Dest != nil {
			ctx.set(stmt.Dest.Name, Binding{Fact: f})
		}
		return nil
	}
}

func (s *Session) execRule(stmt *dsl.Statement, ctx *execContext) error {
	if len(stmt.Args) < 2 {
		return fmt.Errorf("session: RULE requires a condition and conclusion expression at line %d", stmt.Line)
	}
	name := fmt.Sprintf("rule_%d", stmt.Line)
	if stmt.Dest != nil {
		name = stmt.Dest.Name
	}
	rule := engine.NewRule(name, stmt.Args[0], stmt.Args[1])
	s.Engine.AddRule(rule)
	s.theories.trackRule(name)
	s.mu.Lock()
	s.stats.RulesLearned++
	s.mu.Unlock()
	s.cache.invalidate()
	if stmt.Dest != nil {
		ctx.set(stmt.Dest.Name, Binding{Value: name})
	}
	return nil
}

// resolveArgToken turns a parsed expression into the plain string
// token the engine and store operate on: an identifier's name, a hole
// written back out as "?name", a reference resolved through the
// execution context (falling back to its own "$name" spelling if
// somehow unbound, which the parser should already have rejected),
// a formatted number, or a string literal's value.
func (s *Session) resolveArgToken(e dsl.Expr, ctx *execContext) string {
	switch v := e.(type) {
	case *dsl.Ident:
		return v.Name
	case *dsl.Hole:
		// A hole used as a graph/macro parameter (§4.5 "Graph") is a
		// substitution site, not a free logic variable: if it is
		// bound in the execution context (because it names one of
		// the enclosing graph's parameters), it resolves to that
		// value. An unbound hole passes through as a genuine free
		// variable for ASK/PROVE/RULE to unify.
		if b, ok := ctx.get(v.Name); ok {
			return bindingToken(b)
		}
		return "?" + v.Name
	case *dsl.Reference:
		if b, ok := ctx.get(v.Name); ok {
			return bindingToken(b)
		}
		return "$" + v.Name
	case *dsl.Number:
		return v.Raw
	case *dsl.String:
		return v.Value
	case *dsl.Compound:
		return s.resolveArgToken(v.Operator, ctx)
	default:
		return ""
	}
}

func bindingToken(b Binding) string {
	switch {
	case b.Fact != nil:
		return b.Fact.Args[0]
	case b.Query != nil:
		return strconv.FormatBool(b.Query.Found)
	case b.Proof != nil:
		return strconv.FormatBool(b.Proof.Valid)
	default:
		return b.Value
	}
}

func existenceFromName(name string) (kb.Existence, bool) {
	switch strings.ToUpper(name) {
	case "IMPOSSIBLE":
		return kb.Impossible, true
	case "UNPROVEN":
		return kb.Unproven, true
	case "POSSIBLE":
		return kb.Possible, true
	case "DEMONSTRATED":
		return kb.Demonstrated, true
	case "CERTAIN":
		return kb.Certain, true
	default:
		return 0, false
	}
}

func provenanceFor(stmt *dsl.Statement) kb.Provenance {
	return kb.Provenance{
		Line:      stmt.Line,
		CreatedAt: time.Now(),
	}
}
