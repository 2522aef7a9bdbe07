package engine

import (
	"fmt"

	"github.com/sys2dsl/engine/pkg/kb"
)

// Prove runs the full backward-chaining proof procedure of §4.7 for a
// single (possibly holed) goal triple: guards, negation check, direct
// match, transitive, inheritance, value-type inheritance, rule
// chaining, and (opt-in) the holographic fast path.
func (e *Engine) Prove(operator string, args []string, opts Options) ProofResult {
	g := newGuard(opts)
	result, confidence, bindings, reason := e.prove(g, operator, args, Bindings{}, 0)
	pr := ProofResult{
		Valid:      result != nil,
		Confidence: confidence,
		Steps:      g.reasoning,
		Depth:      0,
		Reason:     reason,
	}
	if result != nil {
		pr.Method = result.method
		_ = bindings
	}
	return pr
}

// proveOutcome carries the method label used to satisfy a goal, kept
// separate from ProofResult so internal recursion can distinguish
// "succeeded via direct match" from "succeeded via rule chaining"
// without widening the public result shape.
type proveOutcome struct {
	method string
}

func (e *Engine) prove(g *guard, operator string, args []string, b Bindings, depth int) (*proveOutcome, float64, Bindings, FailureReason) {
	if reason := g.checkLimits(depth); reason != ReasonNone {
		return nil, 0, b, reason
	}

	resolved := b.ResolveArgs(args)

	// Step 2: negation check — an explicit NOT_<operator> fact (or
	// metadata Negated flag) blocks the goal outright.
	if leafArgsGround(args, b) {
		if neg := e.store.GetBestExistenceFact(operator, resolved); neg != nil && neg.Negated {
			g.recordStep(Step{Operation: "negation_check", Bindings: b})
			return nil, 0, b, ReasonConditionNeg
		}
	}

	// Step 3: direct KB match.
	if leafArgsGround(args, b) {
		if f := e.store.GetBestExistenceFact(operator, resolved); f != nil && !f.Negated && f.Existence != kb.Impossible {
			g.recordStep(Step{Operation: "direct_match", Fact: &f.ID, Bindings: b})
			return &proveOutcome{method: "direct"}, ConfidenceDirectMatch, b, ReasonNone
		}
	} else {
		matches := findAllMatches(e.store, operator, args, b)
		if len(matches) > 0 {
			g.recordStep(Step{Operation: "direct_match_unbound", Bindings: matches[0]})
			return &proveOutcome{method: "direct"}, ConfidenceDirectMatch, matches[0], ReasonNone
		}
	}

	if len(resolved) >= 2 && !IsHole(resolved[0]) && !IsHole(resolved[1]) {
		s, o := resolved[0], resolved[1]

		// Step 4: transitive (including IS_A variants).
		if e.dims.IsIsAVariant(operator) {
			if existence, _, ok := deduceIsAWithExistence(e.store, e.dims, s, o, g, depth); ok {
				g.recordStep(Step{Operation: "transitive_is_a", Bindings: b})
				return &proveOutcome{method: "transitive"}, confidenceFor(existence), b, ReasonNone
			}
		} else if e.dims.IsTransitive(operator) {
			if existence, chain, ok := deduceTransitive(e.store, operator, s, o, g, depth); ok {
				g.recordStep(Step{Operation: "transitive", Bindings: b})
				_ = chain
				return &proveOutcome{method: "transitive"}, confidenceFor(existence), b, ReasonNone
			}
		}

		// Step 5: inheritance.
		if e.dims.IsInheritable(operator) {
			for _, t := range deduceWithInheritance(e.store, e.dims, s) {
				if outcome, conf, extended, reason := e.prove(g, operator, append([]string{t}, resolved[1:]...), b, depth+1); outcome != nil {
					g.recordStep(Step{Operation: "inheritance", Bindings: extended})
					return &proveOutcome{method: "inheritance"}, conf, extended, reason
				}
			}
		}

		// Step 6: value-type inheritance.
		if f, existence, ok := deduceValueTypeInheritance(e.store, e.dims, g, depth, operator, s, o); ok {
			g.recordStep(Step{Operation: "value_type_inheritance", Fact: &f.ID, Bindings: b})
			return &proveOutcome{method: "value_type_inheritance"}, confidenceFor(existence), b, ReasonNone
		}
	}

	// Step 7: rule chaining — try every rule whose conclusion unifies
	// with the goal, in insertion order (§4.7.2).
	for _, rule := range e.rules {
		extended, ok := unifyRuleConclusion(rule.ConclusionParts, operator, args, b)
		if !ok {
			continue
		}
		confidence := 1.0
		g.ruleName = rule.Name
		result, ok, reason := e.proveCompound(g, rule.ConditionParts, extended, depth+1, &confidence)
		g.ruleName = ""
		if reason == ReasonTimeout || reason == ReasonDepth || reason == ReasonSteps {
			return nil, 0, b, reason
		}
		if ok {
			g.recordStep(Step{Operation: "rule_chain", Bindings: result, Rule: rule.Name})
			return &proveOutcome{method: fmt.Sprintf("rule:%s", rule.Name)}, confidence, result, ReasonNone
		}
	}

	// Step 8: holographic fast path (opt-in, never mutates KB).
	if g.opts.Holographic {
		if f, similarity, ok := e.holographicMatch(operator, resolved, g.opts.UnbindMinSimilarity); ok {
			g.recordStep(Step{Operation: "holographic", Fact: &f.ID, Bindings: b})
			return &proveOutcome{method: "holographic"}, similarity, b, ReasonNone
		}
	}

	return nil, 0, b, ReasonNoMatch
}

// confidenceFor maps a derived existence level to a proof confidence.
// A DEMONSTRATED-capped derivation is still treated as a strong match;
// levels above UNPROVEN but below DEMONSTRATED (POSSIBLE included)
// decay once by ConfidenceDecay, and UNPROVEN or lower decays twice.
func confidenceFor(e kb.Existence) float64 {
	if e >= kb.Demonstrated {
		return ConfidenceDirectMatch
	}
	if e <= kb.Unproven {
		return ConfidenceDirectMatch * ConfidenceDecay * ConfidenceDecay
	}
	return ConfidenceDirectMatch * ConfidenceDecay
}

// unifyRuleConclusion attempts to unify a rule's conclusion shape
// against the goal (operator, args), extending b on success. Only
// leaf conclusions are supported — compound conclusions are not part
// of this grammar (§3).
func unifyRuleConclusion(concl *CompoundTree, operator string, args []string, b Bindings) (Bindings, bool) {
	if concl == nil || concl.Kind != KindLeaf {
		return b, false
	}
	if concl.Operator != operator || len(concl.Args) != len(args) {
		return b, false
	}
	return unifyArgs(concl.Args, b.ResolveArgs(args), b)
}
