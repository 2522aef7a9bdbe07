package engine

import "github.com/sys2dsl/engine/pkg/kb"

// witnessCaps holds the (max_domain, max_assignments) pair selected by
// fanout estimate for bounded existential witness search (§4.7.1).
type witnessCaps struct {
	maxDomain      int
	maxAssignments int
}

// capsForFanout selects witness-search caps from the fanout-banded
// table in §4.7.1:
//
//	estimate >= 10000 => 15/40
//	estimate >=  5000 => 20/60
//	estimate >=  2000 => 30/80
//	estimate >=   500 => 40/120
//	otherwise         => 80/200
func capsForFanout(estimate float64) witnessCaps {
	switch {
	case estimate >= 10000:
		return witnessCaps{15, 40}
	case estimate >= 5000:
		return witnessCaps{20, 60}
	case estimate >= 2000:
		return witnessCaps{30, 80}
	case estimate >= 500:
		return witnessCaps{40, 120}
	default:
		return witnessCaps{80, 200}
	}
}

// entityDomainCache caches the full set of known concept labels,
// invalidated whenever the KB's mutation counter changes (§5:
// "invalidates the derivation cache and the entity-domain cache").
type entityDomainCache struct {
	version uint64
	domain  []string
}

func (c *entityDomainCache) domainFor(store *kb.Store) []string {
	v := store.Version()
	if c.domain != nil && c.version == v {
		return c.domain
	}
	seen := make(map[string]bool)
	var domain []string
	for _, f := range store.AllFacts() {
		for _, a := range f.Args {
			if !seen[a] {
				seen[a] = true
				domain = append(domain, a)
			}
		}
	}
	c.version = v
	c.domain = domain
	return domain
}

// unboundVars collects the distinct free-variable names appearing in
// a leaf/compound tree that are not yet bound in b, in first-seen
// order (deterministic, §4.7.2).
func unboundVars(t *CompoundTree, b Bindings, out []string, seen map[string]bool) []string {
	if t == nil {
		return out
	}
	if t.Kind == KindLeaf {
		for _, a := range t.Args {
			if IsHole(a) {
				name := HoleName(a)
				if _, bound := b[name]; bound {
					continue
				}
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		}
		return out
	}
	for _, c := range t.Children {
		out = unboundVars(c, b, out, seen)
	}
	return out
}

// witnessExists performs the bounded existential witness search of
// §4.7.1: ground the inner tree's unbound variables against a capped
// entity domain and report whether any assignment proves it. Used by
// Not (a witness defeats the negation) and by bounded existential
// queries more generally.
func (e *Engine) witnessExists(g *guard, t *CompoundTree, b Bindings, depth int) (bool, FailureReason) {
	var dummyConf float64 = 1.0
	vars := unboundVars(t, b, nil, make(map[string]bool))
	if len(vars) == 0 {
		_, ok, reason := e.proveCompound(g, t, b, depth+1, &dummyConf)
		if reason == ReasonTimeout || reason == ReasonDepth || reason == ReasonSteps {
			return false, reason
		}
		return ok, ReasonNone
	}

	estimate := estimateFanout(t, e.store, b)
	caps := capsForFanout(estimate)
	maxDomain := caps.maxDomain
	maxAssignments := caps.maxAssignments
	if len(vars) >= 2 {
		maxDomain /= 2
		if maxDomain < 1 {
			maxDomain = 1
		}
		maxAssignments = maxDomain * 2
	}

	domain := e.domainCache.domainFor(e.store)
	if len(domain) > maxDomain {
		domain = domain[:maxDomain]
	}

	tried := 0
	var assign func(idx int, cur Bindings) (bool, FailureReason)
	assign = func(idx int, cur Bindings) (bool, FailureReason) {
		if idx == len(vars) {
			if tried >= maxAssignments {
				return false, ReasonNone
			}
			tried++
			if reason := g.checkLimits(depth); reason != ReasonNone {
				return false, reason
			}
			_, ok, reason := e.proveCompound(g, t, cur, depth+1, &dummyConf)
			if reason == ReasonTimeout || reason == ReasonDepth || reason == ReasonSteps {
				return false, reason
			}
			return ok, ReasonNone
		}
		for _, candidate := range domain {
			if tried >= maxAssignments {
				return false, ReasonNone
			}
			found, reason := assign(idx+1, cur.Extend(vars[idx], candidate))
			if reason != ReasonNone {
				return false, reason
			}
			if found {
				return true, ReasonNone
			}
		}
		return false, ReasonNone
	}

	return assign(0, b)
}
