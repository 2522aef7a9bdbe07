package engine

import (
	"math"

	"github.com/sys2dsl/engine/pkg/kb"
)

// leafArgsGround reports whether every arg in args is already a
// concrete label, given bindings (i.e. contains no unbound holes).
func leafArgsGround(args []string, b Bindings) bool {
	for _, a := range args {
		if IsHole(a) {
			if _, ok := b[HoleName(a)]; !ok {
				return false
			}
		}
	}
	return true
}

// matchGround attempts an exact-metadata lookup for a fully ground
// leaf (after resolving bindings). Per §4.7.2/§4.7: ground rule
// conditions require exact match — no fuzzy acceptance by vector
// similarity.
func matchGround(store *kb.Store, operator string, args []string, b Bindings) *kb.Fact {
	resolved := b.ResolveArgs(args)
	return store.GetBestExistenceFact(operator, resolved)
}

// findAllMatches enumerates every KB fact whose operator and arity
// match a leaf pattern containing unbound holes, producing one new
// Bindings per consistent match (§4.7 "With unbound variables";
// the caller backtracks over the returned list).
func findAllMatches(store *kb.Store, operator string, args []string, b Bindings) []Bindings {
	var candidates []*kb.Fact
	if len(args) > 0 && !IsHole(args[0]) {
		candidates = store.FactsByOperatorArg0(operator, args[0])
	} else if len(args) > 0 {
		if bound, ok := b[HoleName(args[0])]; ok {
			candidates = store.FactsByOperatorArg0(operator, bound)
		} else {
			candidates = store.FactsByOperator(operator)
		}
	} else {
		candidates = store.FactsByOperator(operator)
	}

	var out []Bindings
	for _, f := range candidates {
		if f.Negated || f.Existence == kb.Impossible {
			continue
		}
		if len(f.Args) != len(args) {
			continue
		}
		extended, ok := unifyArgs(args, f.Args, b)
		if !ok {
			continue
		}
		out = append(out, extended)
	}
	return out
}

// unifyArgs attempts to unify a pattern (holes and ground tokens)
// against a fully ground fact argument list, returning an extended
// Bindings on success.
func unifyArgs(pattern, concrete []string, b Bindings) (Bindings, bool) {
	extended := b.Clone()
	for i, p := range pattern {
		if IsHole(p) {
			name := HoleName(p)
			if existing, ok := extended[name]; ok {
				if existing != concrete[i] {
					return nil, false
				}
				continue
			}
			extended[name] = concrete[i]
			continue
		}
		if p != concrete[i] {
			return nil, false
		}
	}
	return extended, true
}

// estimateFanout estimates the number of KB candidates a compound
// condition part would need to scan: the KB count filtered by the
// part's operator (and arg0 if ground) for a leaf, or +Inf for a
// compound part (§4.7.1: "estimate = KB count filtered by the part's
// operator (and arg0 if ground), with inf for compound parts").
func estimateFanout(t *CompoundTree, store *kb.Store, b Bindings) float64 {
	if t.Kind != KindLeaf {
		return math.Inf(1)
	}
	if len(t.Args) > 0 {
		arg0 := b.Resolve(t.Args[0])
		if !IsHole(arg0) {
			return float64(len(store.FactsByOperatorArg0(t.Operator, arg0)))
		}
	}
	return float64(len(store.FactsByOperator(t.Operator)))
}

// groundedArgCount counts how many of a leaf's arguments are already
// ground under bindings — used as the And-reorder tie-break ("more
// grounded args" wins, §4.7.1).
func groundedArgCount(t *CompoundTree, b Bindings) int {
	n := 0
	for _, a := range t.Args {
		if !IsHole(a) {
			n++
			continue
		}
		if _, ok := b[HoleName(a)]; ok {
			n++
		}
	}
	return n
}
