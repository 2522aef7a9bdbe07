package kb

import (
	"fmt"
	"sync"
	"time"

	"github.com/sys2dsl/engine/pkg/hdc"
)

// FactAddedHook is invoked after a fact is durably inserted. Hook
// dispatch is suppressed for the duration of another hook's execution.
// The store does not buffer writes made by a hook: hooks run while
// AddFact still holds the store's write lock, so a Store call made
// from the hook's own goroutine blocks, and one from another goroutine
// waits until AddFact returns.
type FactAddedHook func(f *Fact)

// Store is the indexed fact database: by-operator, by-(operator,arg0),
// by-subject, and by-existence-level indexes kept atomically
// consistent with the underlying fact list (§3, §4.6, §8).
type Store struct {
	mu sync.RWMutex

	voc   *hdc.Vocabulary
	arena *ConceptArena

	facts   []*Fact // insertion order; ids ascend but stop matching positions once a fact is removed
	nextID  int64
	version uint64 // kbBundleVersion: bumped on every successful mutation

	byOperator     map[string][]*Fact
	byOperatorArg0 map[string][]*Fact // key = operator + "\x00" + arg0
	bySubject      map[string][]*Fact
	byExistence    map[Existence][]*Fact

	onFactAdded []FactAddedHook
	dispatching bool // suppresses re-entrant hook dispatch, per §6
}

// NewStore constructs an empty store bound to voc and arena.
func NewStore(voc *hdc.Vocabulary, arena *ConceptArena) *Store {
	return &Store{
		voc:            voc,
		arena:          arena,
		byOperator:     make(map[string][]*Fact),
		byOperatorArg0: make(map[string][]*Fact),
		bySubject:      make(map[string][]*Fact),
		byExistence:    make(map[Existence][]*Fact),
	}
}

// Version returns the current kbBundleVersion. Callers invalidate
// derived caches whenever this changes (§3, §5).
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// OnFactAdded registers a hook invoked after each successful AddFact.
func (s *Store) OnFactAdded(h FactAddedHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFactAdded = append(s.onFactAdded, h)
}

// AddFactRequest is the input to AddFact.
type AddFactRequest struct {
	Operator   string
	Args       []string
	Existence  Existence
	Negated    bool
	Provenance Provenance
}

// AddFact interns the operator and each arg as a concept, computes
// the fact vector, and inserts the fact atomically into the fact list
// and every index — unless a duplicate triple already exists at an
// existence level >= the new one, in which case the insertion is
// dropped (version unification, §4.6). A strictly higher existence
// replaces the stored record; assertion never lowers an existing
// level (§3 invariant), and IMPOSSIBLE is terminal.
func (s *Store) AddFact(req AddFactRequest) (*Fact, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.bestLocked(req.Operator, req.Args); existing != nil {
		if existing.Existence == Impossible {
			return existing, false, fmt.Errorf("kb: cannot upgrade %s(%v) from IMPOSSIBLE", req.Operator, req.Args)
		}
		if req.Existence <= existing.Existence {
			return existing, false, nil
		}
		s.removeLocked(existing)
	}

	vec, err := ComputeFactVector(s.voc, s.arena, req.Operator, req.Args)
	if err != nil {
		return nil, false, err
	}
	if req.Provenance.CreatedAt.IsZero() {
		req.Provenance.CreatedAt = time.Now()
	}

	s.nextID++
	f := &Fact{
		ID:         s.nextID,
		Operator:   req.Operator,
		Args:       append([]string(nil), req.Args...),
		Vector:     vec,
		Metadata:   FactMetadata{Operator: req.Operator, Args: req.Args},
		Existence:  req.Existence,
		Provenance: req.Provenance,
		Negated:    req.Negated,
	}
	s.insertLocked(f)
	s.version++

	s.dispatchFactAdded(f)
	return f, true, nil
}

func (s *Store) insertLocked(f *Fact) {
	s.facts = append(s.facts, f)
	s.byOperator[f.Operator] = append(s.byOperator[f.Operator], f)
	if len(f.Args) > 0 {
		key := opArg0Key(f.Operator, f.Args[0])
		s.byOperatorArg0[key] = append(s.byOperatorArg0[key], f)
		s.bySubject[f.Args[0]] = append(s.bySubject[f.Args[0]], f)
	}
	s.byExistence[f.Existence] = append(s.byExistence[f.Existence], f)
}

func (s *Store) removeLocked(f *Fact) {
	s.facts = removeFact(s.facts, f)
	s.byOperator[f.Operator] = removeFact(s.byOperator[f.Operator], f)
	if len(f.Args) > 0 {
		key := opArg0Key(f.Operator, f.Args[0])
		s.byOperatorArg0[key] = removeFact(s.byOperatorArg0[key], f)
		s.bySubject[f.Args[0]] = removeFact(s.bySubject[f.Args[0]], f)
	}
	s.byExistence[f.Existence] = removeFact(s.byExistence[f.Existence], f)
}

func removeFact(list []*Fact, target *Fact) []*Fact {
	out := list[:0:0]
	for _, f := range list {
		if f.ID != target.ID {
			out = append(out, f)
		}
	}
	return out
}

func opArg0Key(operator, arg0 string) string {
	return operator + "\x00" + arg0
}

func (s *Store) dispatchFactAdded(f *Fact) {
	if s.dispatching {
		return
	}
	s.dispatching = true
	defer func() { s.dispatching = false }()
	hooks := append([]FactAddedHook(nil), s.onFactAdded...)
	for _, h := range hooks {
		h(f)
	}
}

// GetBestExistenceFact returns the stored fact for (operator, args)
// with the highest existence level, or nil if none exists.
func (s *Store) GetBestExistenceFact(operator string, args []string) *Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bestLocked(operator, args)
}

func (s *Store) bestLocked(operator string, args []string) *Fact {
	meta := FactMetadata{Operator: operator, Args: args}
	for _, f := range s.byOperator[operator] {
		if f.Metadata.Equal(meta) {
			return f
		}
	}
	return nil
}

// FactsByOperator returns a borrowed (read-only) slice of facts whose
// operator equals op, in insertion order.
func (s *Store) FactsByOperator(op string) []*Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byOperator[op]
}

// FactsByOperatorArg0 returns facts matching (operator, arg0).
func (s *Store) FactsByOperatorArg0(operator, arg0 string) []*Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byOperatorArg0[opArg0Key(operator, arg0)]
}

// FactsBySubject returns facts whose first argument is subject.
func (s *Store) FactsBySubject(subject string) []*Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bySubject[subject]
}

// FactsByExistence returns facts stored at exactly level e.
func (s *Store) FactsByExistence(e Existence) []*Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byExistence[e]
}

// AllFacts returns every fact in insertion order (a borrowed slice).
func (s *Store) AllFacts() []*Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facts
}

// Count returns the number of facts currently stored. Used by the
// open-world-purity test (§8): count_facts_before(ask) must equal
// count_facts_after(ask).
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

// Retract removes the current best-existence fact for (operator,
// args), if any, restoring open-world UNKNOWN for that triple.
func (s *Store) Retract(operator string, args []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.bestLocked(operator, args)
	if existing == nil {
		return false
	}
	s.removeLocked(existing)
	s.version++
	return true
}

// SetExistence force-sets the existence level for (operator, args),
// bypassing the monotonicity guard. This is the only path by which a
// triple's level may decrease (RETRACT/FORGET/SET_EXISTENCE, §3).
func (s *Store) SetExistence(operator string, args []string, e Existence, prov Provenance) (*Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.bestLocked(operator, args); existing != nil {
		s.removeLocked(existing)
	}
	vec, err := ComputeFactVector(s.voc, s.arena, operator, args)
	if err != nil {
		return nil, err
	}
	if prov.CreatedAt.IsZero() {
		prov.CreatedAt = time.Now()
	}
	s.nextID++
	f := &Fact{
		ID:         s.nextID,
		Operator:   operator,
		Args:       append([]string(nil), args...),
		Vector:     vec,
		Metadata:   FactMetadata{Operator: operator, Args: args},
		Existence:  e,
		Provenance: prov,
	}
	s.insertLocked(f)
	s.version++
	s.dispatchFactAdded(f)
	return f, nil
}
