package engine

import (
	"github.com/sys2dsl/engine/pkg/hdc"
	"github.com/sys2dsl/engine/pkg/kb"
	"github.com/sys2dsl/engine/pkg/registry"
)

// Engine is the reasoning hub: every other component (vocabulary,
// vector algebra, KB indexes, dimension registry, plugins) is a data
// or capability provider it reads through (§2).
type Engine struct {
	store    *kb.Store
	voc      *hdc.Vocabulary
	arena    *kb.ConceptArena
	dims     *registry.DimensionRegistry
	plugins  *registry.PluginRegistry
	rules    []*Rule // insertion order (§4.7.2)
	cache    *matchCache
	domainCache entityDomainCache
}

// New constructs an Engine over the given components. dims and
// plugins may be nil; a nil DimensionRegistry is treated as an empty
// one (degraded mode, §4.3).
func New(store *kb.Store, voc *hdc.Vocabulary, arena *kb.ConceptArena, dims *registry.DimensionRegistry, plugins *registry.PluginRegistry) *Engine {
	if dims == nil {
		dims = registry.Empty()
	}
	if plugins == nil {
		plugins = registry.NewPluginRegistry()
	}
	return &Engine{
		store:   store,
		voc:     voc,
		arena:   arena,
		dims:    dims,
		plugins: plugins,
		cache:   newMatchCache(5000),
	}
}

// AddRule appends a rule to the insertion-ordered rules list, which
// the rule chainer (§4.7 step 7) and And-reordering estimator (§4.7.1)
// both iterate in that fixed order for determinism (§4.7.2).
func (e *Engine) AddRule(r *Rule) {
	e.rules = append(e.rules, r)
}

// Rules returns the rules list in insertion order (borrowed slice).
func (e *Engine) Rules() []*Rule { return e.rules }

// RemoveRule drops the named rule, used when a theory layer holding
// it is popped off the context stack (§3 "Theory/context stack").
// It is a no-op if no rule with that name is present.
func (e *Engine) RemoveRule(name string) {
	kept := e.rules[:0]
	for _, r := range e.rules {
		if r.Name != name {
			kept = append(kept, r)
		}
	}
	e.rules = kept
}

// Store exposes the underlying fact store (read-only use expected
// outside LEARNING mode, per §5).
func (e *Engine) Store() *kb.Store { return e.store }

// DimensionRegistry exposes the relation-metadata catalog.
func (e *Engine) DimensionRegistry() *registry.DimensionRegistry { return e.dims }
