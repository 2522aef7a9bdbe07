package contradiction

import (
	"testing"

	"github.com/sys2dsl/engine/pkg/hdc"
	"github.com/sys2dsl/engine/pkg/kb"
)

func newTestStore(t *testing.T) *kb.Store {
	t.Helper()
	voc := hdc.NewVocabulary(2048)
	arena := kb.NewConceptArena(voc)
	return kb.NewStore(voc, arena)
}

func mustAdd(t *testing.T, store *kb.Store, operator string, args []string) {
	t.Helper()
	if _, _, err := store.AddFact(kb.AddFactRequest{Operator: operator, Args: args, Existence: kb.Certain}); err != nil {
		t.Fatalf("AddFact(%s, %v): %v", operator, args, err)
	}
}

func TestCheckDisjointnessDetectsViolation(t *testing.T) {
	store := newTestStore(t)
	mustAdd(t, store, "DISJOINT_WITH", []string{"BIRD", "FISH"})
	mustAdd(t, store, "IS_A", []string{"tweety", "BIRD"})
	mustAdd(t, store, "IS_A", []string{"tweety", "FISH"})

	d := New(store)
	violations := d.CheckDisjointness()
	if len(violations) == 0 {
		t.Fatalf("expected a disjointness violation for tweety")
	}
}

func TestCheckFunctionalViolation(t *testing.T) {
	store := newTestStore(t)
	mustAdd(t, store, "BORN_IN", []string{"alice", "paris"})
	mustAdd(t, store, "BORN_IN", []string{"alice", "london"})

	d := New(store)
	violations := d.CheckFunctionalViolations()
	if len(violations) != 1 {
		t.Fatalf("expected one functional violation, got %d", len(violations))
	}
}

func TestCheckFunctionalViolationSuppressedByEquivalence(t *testing.T) {
	store := newTestStore(t)
	mustAdd(t, store, "BORN_IN", []string{"alice", "paris"})
	mustAdd(t, store, "BORN_IN", []string{"alice", "gay-paree"})
	mustAdd(t, store, "EQUIVALENT_TO", []string{"paris", "gay-paree"})

	d := New(store)
	if violations := d.CheckFunctionalViolations(); len(violations) != 0 {
		t.Fatalf("expected no violation once linked via EQUIVALENT_TO, got %d", len(violations))
	}
}

func TestCheckTaxonomicCycle(t *testing.T) {
	store := newTestStore(t)
	mustAdd(t, store, "IS_A", []string{"a", "b"})
	mustAdd(t, store, "IS_A", []string{"b", "c"})
	mustAdd(t, store, "IS_A", []string{"c", "a"})

	d := New(store)
	cycles := d.CheckTaxonomicCycles()
	if len(cycles) == 0 {
		t.Fatalf("expected a taxonomic cycle to be detected")
	}
}

func TestCheckTaxonomicCycleAbsent(t *testing.T) {
	store := newTestStore(t)
	mustAdd(t, store, "IS_A", []string{"a", "b"})
	mustAdd(t, store, "IS_A", []string{"b", "c"})

	d := New(store)
	if cycles := d.CheckTaxonomicCycles(); len(cycles) != 0 {
		t.Fatalf("expected no cycle, got %d", len(cycles))
	}
	ok, err := d.VerifyAcyclic()
	if err != nil || !ok {
		t.Fatalf("expected VerifyAcyclic to report true, got ok=%v err=%v", ok, err)
	}
}

func TestCheckCardinality(t *testing.T) {
	store := newTestStore(t)
	mustAdd(t, store, "HAS_PARENT", []string{"alice", "bob"})
	mustAdd(t, store, "HAS_PARENT", []string{"alice", "carol"})
	mustAdd(t, store, "HAS_PARENT", []string{"alice", "dave"})

	d := New(store)
	d.RegisterCardinality("HAS_PARENT", CardinalityConstraint{Max: 2})
	violations := d.CheckCardinality()
	if len(violations) != 1 {
		t.Fatalf("expected one cardinality violation, got %d", len(violations))
	}
}

func TestWouldContradict(t *testing.T) {
	store := newTestStore(t)
	mustAdd(t, store, "DISJOINT_WITH", []string{"BIRD", "FISH"})
	mustAdd(t, store, "IS_A", []string{"tweety", "BIRD"})
	mustAdd(t, store, "IS_A", []string{"tweety", "FISH"})

	d := New(store)
	found := d.WouldContradict("IS_A", []string{"tweety", "FISH"})
	if len(found) == 0 {
		t.Fatalf("expected WouldContradict to surface the disjointness conflict")
	}
}

func TestNormalizeLabelPluralTolerance(t *testing.T) {
	cases := map[string]string{
		"Birds": "bird",
		"glass": "glass",
		"bass":  "bass",
		"cat":   "cat",
		"cats":  "cat",
	}
	for in, want := range cases {
		if got := normalizeLabel(in); got != want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
