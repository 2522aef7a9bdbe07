package engine

import (
	"github.com/sys2dsl/engine/pkg/hdc"
	"github.com/sys2dsl/engine/pkg/kb"
)

// holographicMatch is the opt-in fast path of §4.7 step 8: build the
// goal's vector (bind(operator, position-marked args)) and scan the KB
// for the highest-similarity fact above minSimilarity. Any hit is
// validated symbolically before being accepted — this path never
// creates facts and is read-only under all circumstances (§5).
func (e *Engine) holographicMatch(operator string, args []string, minSimilarity float64) (*kb.Fact, float64, bool) {
	goalVec, err := kb.ComputeFactVector(e.voc, e.arena, operator, args)
	if err != nil {
		return nil, 0, false
	}

	var best *kb.Fact
	var bestSim float64
	for _, f := range e.store.FactsByOperator(operator) {
		if f.Negated || f.Existence == kb.Impossible || f.Vector == nil {
			continue
		}
		sim, err := hdc.Similarity(goalVec, f.Vector)
		if err != nil {
			continue
		}
		if sim > bestSim {
			bestSim = sim
			best = f
		}
	}
	if best == nil || bestSim <= minSimilarity {
		return nil, 0, false
	}

	// Symbolic validation: the candidate must actually unify with the
	// requested (operator, args) pattern — vector similarity alone
	// never licenses acceptance.
	if _, ok := unifyArgs(args, best.Args, Bindings{}); !ok {
		return nil, 0, false
	}
	return best, bestSim, true
}
