package engine

import (
	"sort"

	"github.com/sys2dsl/engine/pkg/kb"
)

// proveCompound proves a CompoundTree against bindings b, returning
// the first satisfying extension of b (§4.7.1: And returns the first
// full success; Or succeeds on its first satisfiable branch; Not is
// negation-as-failure gated by ClosedWorld). confidence accumulates
// multiplicatively — Or applies CONFIDENCE_DECAY once per resolution.
func (e *Engine) proveCompound(g *guard, t *CompoundTree, b Bindings, depth int, confidence *float64) (Bindings, bool, FailureReason) {
	if reason := g.checkLimits(depth); reason != ReasonNone {
		return nil, false, reason
	}
	switch t.Kind {
	case KindLeaf:
		return e.proveLeaf(t, b)
	case KindAnd:
		return e.proveAnd(g, t, b, depth, confidence)
	case KindOr:
		return e.proveOr(g, t, b, depth, confidence)
	case KindNot:
		return e.proveNot(g, t, b, depth)
	default:
		return nil, false, ReasonNoMatch
	}
}

// proveLeaf handles the "simple" and "with unbound variables" leaf
// flavors of §4.7: a ground leaf requires exact metadata match; a
// leaf with holes enumerates KB matches and returns the first.
func (e *Engine) proveLeaf(t *CompoundTree, b Bindings) (Bindings, bool, FailureReason) {
	if leafArgsGround(t.Args, b) {
		f := matchGround(e.store, t.Operator, t.Args, b)
		if f == nil || f.Negated || f.Existence == kb.Impossible {
			return nil, false, ReasonNoMatch
		}
		return b, true, ReasonNone
	}
	matches := findAllMatches(e.store, t.Operator, t.Args, b)
	if len(matches) == 0 {
		return nil, false, ReasonNoMatch
	}
	return matches[0], true, ReasonNone
}

func (e *Engine) proveAnd(g *guard, t *CompoundTree, b Bindings, depth int, confidence *float64) (Bindings, bool, FailureReason) {
	ordered := make([]*CompoundTree, len(t.Children))
	copy(ordered, t.Children)
	sort.SliceStable(ordered, func(i, j int) bool {
		fi, fj := estimateFanout(ordered[i], e.store, b), estimateFanout(ordered[j], e.store, b)
		if fi != fj {
			return fi < fj
		}
		return groundedArgCount(ordered[i], b) > groundedArgCount(ordered[j], b)
	})

	var walk func(idx int, cur Bindings) (Bindings, bool, FailureReason)
	walk = func(idx int, cur Bindings) (Bindings, bool, FailureReason) {
		if reason := g.checkLimits(depth); reason != ReasonNone {
			return nil, false, reason
		}
		if idx == len(ordered) {
			return cur, true, ReasonNone
		}
		child := ordered[idx]
		if child.Kind != KindLeaf {
			extended, ok, reason := e.proveCompound(g, child, cur, depth+1, confidence)
			if reason != ReasonNone {
				return nil, false, reason
			}
			if !ok {
				return nil, false, ReasonNoMatch
			}
			return walk(idx+1, extended)
		}
		if leafArgsGround(child.Args, cur) {
			f := matchGround(e.store, child.Operator, child.Args, cur)
			if f == nil || f.Negated || f.Existence == kb.Impossible {
				return nil, false, ReasonNoMatch
			}
			return walk(idx+1, cur)
		}
		for _, candidate := range e.cachedMatches(g, child.Operator, child.Args, cur, depth+idx) {
			res, ok, reason := walk(idx+1, candidate)
			if reason == ReasonTimeout || reason == ReasonDepth || reason == ReasonSteps {
				return nil, false, reason
			}
			if ok {
				return res, true, ReasonNone
			}
		}
		return nil, false, ReasonNoMatch
	}

	return walk(0, b)
}

func (e *Engine) proveOr(g *guard, t *CompoundTree, b Bindings, depth int, confidence *float64) (Bindings, bool, FailureReason) {
	for _, child := range t.Children {
		res, ok, reason := e.proveCompound(g, child, b, depth+1, confidence)
		if reason == ReasonTimeout || reason == ReasonDepth || reason == ReasonSteps {
			return nil, false, reason
		}
		if ok {
			*confidence *= ConfidenceDecay
			return res, true, ReasonNone
		}
	}
	return nil, false, ReasonNoMatch
}

func (e *Engine) proveNot(g *guard, t *CompoundTree, b Bindings, depth int) (Bindings, bool, FailureReason) {
	if !g.opts.ClosedWorld {
		return nil, false, ReasonConditionNeg
	}
	if len(t.Children) != 1 {
		return nil, false, ReasonNoMatch
	}
	inner := t.Children[0]
	found, reason := e.witnessExists(g, inner, b, depth)
	if reason != ReasonNone {
		return nil, false, reason
	}
	if found {
		return nil, false, ReasonConditionNeg
	}
	return b, true, ReasonNone
}
