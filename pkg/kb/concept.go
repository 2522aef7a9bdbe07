package kb

import (
	"fmt"
	"sync"

	"github.com/sys2dsl/engine/pkg/hdc"
)

// Concept is an interned record: a unique label, its vocabulary
// vector, lazily-computed positioned variants, and the source that
// created it (§3). Concepts are never deleted during a session —
// they have arena-like lifetime.
type Concept struct {
	Label           string
	Vector          *hdc.DenseVector
	CreationSource  string
	mu              sync.Mutex
	positioned      map[int]*hdc.DenseVector
}

func newConcept(label string, v *hdc.DenseVector, source string) *Concept {
	return &Concept{
		Label:          label,
		Vector:         v,
		CreationSource: source,
		positioned:     make(map[int]*hdc.DenseVector),
	}
}

// Positioned returns bind(Vector, Pos_slot), computing and caching it
// on first use.
func (c *Concept) Positioned(voc *hdc.Vocabulary, slot int) (*hdc.DenseVector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.positioned[slot]; ok {
		return p, nil
	}
	p, err := voc.Positioned(c.Vector, slot)
	if err != nil {
		return nil, err
	}
	c.positioned[slot] = p
	return p, nil
}

// ConceptArena interns concept labels to stable Concept records.
// Concepts are arena-allocated: once created, a label's Concept never
// moves and is never freed for the lifetime of the session (§3, §9).
type ConceptArena struct {
	mu       sync.RWMutex
	voc      *hdc.Vocabulary
	byLabel  map[string]*Concept
	order    []string // insertion order, for deterministic enumeration
}

// NewConceptArena constructs an arena bound to the given vocabulary.
func NewConceptArena(voc *hdc.Vocabulary) *ConceptArena {
	return &ConceptArena{
		voc:     voc,
		byLabel: make(map[string]*Concept),
	}
}

// Intern returns the Concept for label, creating it (with the given
// creation source, e.g. "fact", "theory", "graph") if this is the
// first use of label in the session.
func (a *ConceptArena) Intern(label, source string) (*Concept, error) {
	a.mu.RLock()
	if c, ok := a.byLabel[label]; ok {
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.byLabel[label]; ok {
		return c, nil
	}
	v, err := a.voc.GetOrCreate(label)
	if err != nil {
		return nil, fmt.Errorf("kb: interning concept %q: %w", label, err)
	}
	c := newConcept(label, v, source)
	a.byLabel[label] = c
	a.order = append(a.order, label)
	return c, nil
}

// Lookup returns the Concept for label without creating it.
func (a *ConceptArena) Lookup(label string) (*Concept, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.byLabel[label]
	return c, ok
}

// Labels returns all interned labels in insertion order.
func (a *ConceptArena) Labels() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}
