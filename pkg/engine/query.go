package engine

import "github.com/sys2dsl/engine/pkg/kb"

// Ask answers an open-world query for the ground triple (operator, s,
// rest...) without mutating the KB, following the six-step procedure
// of §4.7:
//
//  1. Direct KB match.
//  2. IS_A variant path (deduce_is_a_with_existence).
//  3. Other registry-transitive relations (deduce_transitive).
//  4. Inheritance (deduce_with_inheritance).
//  5. Impossibility (check_impossibility).
//  6. UNKNOWN.
func (e *Engine) Ask(operator string, args []string, opts Options) QueryResult {
	g := newGuard(opts)
	return e.ask(g, operator, args, 0)
}

func (e *Engine) ask(g *guard, operator string, args []string, depth int) QueryResult {
	if reason := g.checkLimits(depth); reason != ReasonNone {
		return QueryResult{Found: false, Status: StatusUnknown, Explanation: string(reason)}
	}

	// Step 1: direct match.
	if f := e.store.GetBestExistenceFact(operator, args); f != nil && !f.Negated && f.Existence != kb.Impossible {
		return QueryResult{Found: true, Existence: f.Existence, Source: SourceDirect, Chain: []*kb.Fact{f}}
	}

	if len(args) < 2 {
		return e.unknownOrImpossible(operator, args)
	}
	s, o := args[0], args[1]

	// Step 2: IS_A variant path.
	if e.dims.IsIsAVariant(operator) {
		if existence, chain, ok := deduceIsAWithExistence(e.store, e.dims, s, o, g, depth); ok {
			return QueryResult{Found: true, Existence: existence, Source: SourceDerived, Chain: chain}
		}
	}

	// Step 3: other transitive relations.
	if e.dims.IsTransitive(operator) {
		if existence, chain, ok := deduceTransitive(e.store, operator, s, o, g, depth); ok {
			return QueryResult{Found: true, Existence: existence, Source: SourceDerived, Chain: chain}
		}
	}

	// Step 4: inheritance.
	if e.dims.IsInheritable(operator) {
		for _, t := range deduceWithInheritance(e.store, e.dims, s) {
			sub := e.ask(g, operator, append([]string{t}, args[1:]...), depth+1)
			if sub.Found {
				sub.Source = SourceInherited
				return sub
			}
		}
	}

	// Step 6 precursor: value-type inheritance reuses the same
	// possession-operator walk as the prover (§4.7 step 6).
	if f, existence, ok := deduceValueTypeInheritance(e.store, e.dims, g, depth, operator, s, o); ok {
		return QueryResult{Found: true, Existence: existence, Source: SourceInherited, Chain: []*kb.Fact{f}}
	}

	return e.unknownOrImpossible(operator, args)
}

func (e *Engine) unknownOrImpossible(operator string, args []string) QueryResult {
	if len(args) >= 2 {
		if conflicts := checkImpossibility(e.store, e.dims, args[0], args[1]); len(conflicts) > 0 {
			return QueryResult{Found: false, Status: StatusImpossible, Conflicts: conflicts}
		}
	}
	return QueryResult{Found: false, Status: StatusUnknown}
}
