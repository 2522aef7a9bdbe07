package engine

import "github.com/sys2dsl/engine/pkg/kb"

// defaultTransitiveDepth bounds the BFS/IS_A walks used by transitive
// and inheritance reasoning, independent of the overall proof depth
// guard (§4.7 steps 2-4: "walks the IS_A graph up to depth D").
const defaultTransitiveDepth = 32

// possessionOperators are the value-type inheritance relations of
// §4.7 step 6.
var possessionOperators = map[string]bool{
	"HAS":      true,
	"OWNS":     true,
	"HOLDS":    true,
	"CONTAINS": true,
}

// deduceIsAWithExistence walks the IS_A graph (including IS_A
// variants) from s looking for o, up to defaultTransitiveDepth hops,
// returning the minimum existence along the chain capped at
// DEMONSTRATED, plus the fact chain used (§4.7 step 2).
func deduceIsAWithExistence(store *kb.Store, dims relationSource, s, o string, g *guard, depth int) (kb.Existence, []*kb.Fact, bool) {
	return bfsExistenceWalk(store, dims.GetIsAVariants(), s, o, g, depth)
}

// deduceTransitive performs the same capped BFS walk for any
// registry-transitive relation r (§4.7 step 3).
func deduceTransitive(store *kb.Store, r, s, o string, g *guard, depth int) (kb.Existence, []*kb.Fact, bool) {
	return bfsExistenceWalk(store, []string{r}, s, o, g, depth)
}

// bfsExistenceWalk does a breadth-first search over any of the given
// relation names from s to o, tracking the minimum existence and the
// chain of facts traversed. Visited nodes are deduped to keep the
// walk finite over cyclic graphs.
func bfsExistenceWalk(store *kb.Store, relations []string, s, o string, g *guard, depth int) (kb.Existence, []*kb.Fact, bool) {
	type frame struct {
		node  string
		chain []*kb.Fact
		min   kb.Existence
	}
	visited := map[string]bool{s: true}
	queue := []frame{{node: s, min: kb.Certain}}

	for hops := 0; len(queue) > 0 && hops < defaultTransitiveDepth; hops++ {
		var next []frame
		for _, fr := range queue {
			if g != nil {
				if reason := g.checkLimits(depth); reason != ReasonNone {
					return 0, nil, false
				}
			}
			for _, rel := range relations {
				for _, f := range store.FactsByOperatorArg0(rel, fr.node) {
					if f.Negated || f.Existence == kb.Impossible || len(f.Args) < 2 {
						continue
					}
					target := f.Args[1]
					newMin := kb.MinExistence(fr.min, f.Existence)
					newChain := append(append([]*kb.Fact(nil), fr.chain...), f)
					if target == o {
						return kb.CapDemonstrated(newMin), newChain, true
					}
					if !visited[target] {
						visited[target] = true
						next = append(next, frame{node: target, chain: newChain, min: newMin})
					}
				}
			}
		}
		queue = next
	}
	return 0, nil, false
}

// relationSource is the subset of DimensionRegistry the transitive
// walkers need, kept narrow so tests can supply a stub.
type relationSource interface {
	GetIsAVariants() []string
	IsTransitive(rel string) bool
	IsInheritable(rel string) bool
}

// deduceWithInheritance implements §4.7 step 4: if relation r is
// inheritable, find s IS_A t (direct) and recurse the caller's lookup
// on (t, r, o). Returns every direct IS_A target t of s (over all IS_A
// variants); the caller tries each in turn.
func deduceWithInheritance(store *kb.Store, dims relationSource, s string) []string {
	var types []string
	for _, variant := range dims.GetIsAVariants() {
		for _, f := range store.FactsByOperatorArg0(variant, s) {
			if f.Negated || f.Existence == kb.Impossible || len(f.Args) < 2 {
				continue
			}
			types = append(types, f.Args[1])
		}
	}
	return types
}

// deduceValueTypeInheritance implements §4.7 step 6: for possession
// operators (HAS/OWNS/HOLDS/CONTAINS), if op(s,z) holds and z IS_A o
// (transitively), the goal succeeds.
func deduceValueTypeInheritance(store *kb.Store, dims relationSource, g *guard, depth int, op, s, o string) (*kb.Fact, kb.Existence, bool) {
	if !possessionOperators[op] {
		return nil, 0, false
	}
	for _, f := range store.FactsByOperatorArg0(op, s) {
		if f.Negated || f.Existence == kb.Impossible || len(f.Args) < 2 {
			continue
		}
		z := f.Args[1]
		if z == o {
			return f, f.Existence, true
		}
		if existence, _, ok := deduceIsAWithExistence(store, dims, z, o, g, depth); ok {
			return f, kb.MinExistence(f.Existence, existence), true
		}
	}
	return nil, 0, false
}

// checkImpossibility implements §4.7 step 5: if s IS_A t and t is
// disjoint with o (or o disjoint with t), the goal is impossible.
func checkImpossibility(store *kb.Store, dims relationSource, s, o string) []Conflict {
	var conflicts []Conflict
	for _, variant := range dims.GetIsAVariants() {
		for _, sIsA := range store.FactsByOperatorArg0(variant, s) {
			if sIsA.Negated || len(sIsA.Args) < 2 {
				continue
			}
			t := sIsA.Args[1]
			for _, dj := range store.FactsByOperatorArg0("DISJOINT_WITH", t) {
				if len(dj.Args) >= 2 && dj.Args[1] == o {
					conflicts = append(conflicts, Conflict{A: sIsA, B: dj})
				}
			}
			for _, dj := range store.FactsByOperatorArg0("DISJOINT_WITH", o) {
				if len(dj.Args) >= 2 && dj.Args[1] == t {
					conflicts = append(conflicts, Conflict{A: sIsA, B: dj})
				}
			}
		}
	}
	return conflicts
}
