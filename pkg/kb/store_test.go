package kb

import (
	"testing"

	"github.com/sys2dsl/engine/pkg/hdc"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	voc := hdc.NewVocabulary(2048)
	arena := NewConceptArena(voc)
	return NewStore(voc, arena)
}

func TestAddFactDropsLowerOrEqualExistenceDuplicate(t *testing.T) {
	s := newTestStore(t)
	first, inserted, err := s.AddFact(AddFactRequest{Operator: "IS_A", Args: []string{"tweety", "BIRD"}, Existence: Demonstrated})
	if err != nil || !inserted {
		t.Fatalf("AddFact: inserted=%v err=%v", inserted, err)
	}

	same, inserted, err := s.AddFact(AddFactRequest{Operator: "IS_A", Args: []string{"tweety", "BIRD"}, Existence: Possible})
	if err != nil {
		t.Fatalf("AddFact (lower duplicate): %v", err)
	}
	if inserted {
		t.Fatalf("expected a lower-or-equal existence duplicate to be dropped, not inserted")
	}
	if same.ID != first.ID {
		t.Fatalf("expected the original fact back, got a different ID")
	}
	if s.Count() != 1 {
		t.Fatalf("expected store to still hold exactly 1 fact, got %d", s.Count())
	}
}

func TestAddFactUpgradesStrictlyHigherExistence(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.AddFact(AddFactRequest{Operator: "IS_A", Args: []string{"tweety", "BIRD"}, Existence: Possible}); err != nil {
		t.Fatalf("AddFact: %v", err)
	}
	upgraded, inserted, err := s.AddFact(AddFactRequest{Operator: "IS_A", Args: []string{"tweety", "BIRD"}, Existence: Certain})
	if err != nil {
		t.Fatalf("AddFact (upgrade): %v", err)
	}
	if !inserted {
		t.Fatalf("expected a strictly higher existence to replace the stored record")
	}
	if s.Count() != 1 {
		t.Fatalf("expected version unification to keep exactly 1 fact, got %d", s.Count())
	}
	best := s.GetBestExistenceFact("IS_A", []string{"tweety", "BIRD"})
	if best.ID != upgraded.ID || best.Existence != Certain {
		t.Fatalf("expected the upgraded CERTAIN fact to be the best-existence record, got %+v", best)
	}
}

func TestAddFactRefusesToUpgradeFromImpossible(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.AddFact(AddFactRequest{Operator: "IS_A", Args: []string{"tweety", "FISH"}, Existence: Impossible}); err != nil {
		t.Fatalf("AddFact: %v", err)
	}
	if _, _, err := s.AddFact(AddFactRequest{Operator: "IS_A", Args: []string{"tweety", "FISH"}, Existence: Certain}); err == nil {
		t.Fatalf("expected an error upgrading a terminal IMPOSSIBLE fact")
	}
	best := s.GetBestExistenceFact("IS_A", []string{"tweety", "FISH"})
	if best == nil || best.Existence != Impossible {
		t.Fatalf("expected IMPOSSIBLE to remain terminal, got %+v", best)
	}
}

func TestRetractRestoresOpenWorldUnknown(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.AddFact(AddFactRequest{Operator: "LIKES", Args: []string{"alice", "tea"}, Existence: Certain}); err != nil {
		t.Fatalf("AddFact: %v", err)
	}
	if !s.Retract("LIKES", []string{"alice", "tea"}) {
		t.Fatalf("expected Retract to report success for an existing fact")
	}
	if s.GetBestExistenceFact("LIKES", []string{"alice", "tea"}) != nil {
		t.Fatalf("expected the fact to be gone after Retract")
	}
	if s.Retract("LIKES", []string{"alice", "tea"}) {
		t.Fatalf("expected a second Retract of an already-gone fact to report false")
	}
}

func TestSetExistenceCanLowerAnExistingLevel(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.AddFact(AddFactRequest{Operator: "IS_A", Args: []string{"tweety", "BIRD"}, Existence: Certain}); err != nil {
		t.Fatalf("AddFact: %v", err)
	}
	lowered, err := s.SetExistence("IS_A", []string{"tweety", "BIRD"}, Unproven, Provenance{})
	if err != nil {
		t.Fatalf("SetExistence: %v", err)
	}
	if lowered.Existence != Unproven {
		t.Fatalf("expected SetExistence to lower the level to UNPROVEN, got %v", lowered.Existence)
	}
	best := s.GetBestExistenceFact("IS_A", []string{"tweety", "BIRD"})
	if best.Existence != Unproven {
		t.Fatalf("expected the lowered level to be the stored record, got %v", best.Existence)
	}
}

func TestVersionBumpsOnMutationOnly(t *testing.T) {
	s := newTestStore(t)
	v0 := s.Version()
	if _, _, err := s.AddFact(AddFactRequest{Operator: "LIKES", Args: []string{"alice", "tea"}, Existence: Certain}); err != nil {
		t.Fatalf("AddFact: %v", err)
	}
	v1 := s.Version()
	if v1 == v0 {
		t.Fatalf("expected Version to bump after a successful AddFact")
	}

	if _, inserted, err := s.AddFact(AddFactRequest{Operator: "LIKES", Args: []string{"alice", "tea"}, Existence: Possible}); err != nil || inserted {
		t.Fatalf("AddFact (dropped duplicate): inserted=%v err=%v", inserted, err)
	}
	if s.Version() != v1 {
		t.Fatalf("expected a dropped duplicate insertion to leave Version unchanged")
	}
}

func TestOnFactAddedHookFiresAfterInsertion(t *testing.T) {
	s := newTestStore(t)
	var seen []*Fact
	s.OnFactAdded(func(f *Fact) { seen = append(seen, f) })

	if _, _, err := s.AddFact(AddFactRequest{Operator: "LIKES", Args: []string{"alice", "tea"}, Existence: Certain}); err != nil {
		t.Fatalf("AddFact: %v", err)
	}
	if len(seen) != 1 || seen[0].Operator != "LIKES" {
		t.Fatalf("expected the hook to observe exactly the inserted fact, got %+v", seen)
	}

	// A dropped duplicate never reaches dispatchFactAdded.
	if _, _, err := s.AddFact(AddFactRequest{Operator: "LIKES", Args: []string{"alice", "tea"}, Existence: Possible}); err != nil {
		t.Fatalf("AddFact: %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("expected a dropped duplicate to not fire OnFactAdded, got %d calls", len(seen))
	}
}

func TestFactIndexesStayConsistentAfterUpgrade(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.AddFact(AddFactRequest{Operator: "IS_A", Args: []string{"tweety", "BIRD"}, Existence: Possible}); err != nil {
		t.Fatalf("AddFact: %v", err)
	}
	if _, _, err := s.AddFact(AddFactRequest{Operator: "IS_A", Args: []string{"tweety", "BIRD"}, Existence: Certain}); err != nil {
		t.Fatalf("AddFact (upgrade): %v", err)
	}

	if got := len(s.FactsByOperator("IS_A")); got != 1 {
		t.Fatalf("byOperator index: expected 1 fact, got %d", got)
	}
	if got := len(s.FactsByOperatorArg0("IS_A", "tweety")); got != 1 {
		t.Fatalf("byOperatorArg0 index: expected 1 fact, got %d", got)
	}
	if got := len(s.FactsBySubject("tweety")); got != 1 {
		t.Fatalf("bySubject index: expected 1 fact, got %d", got)
	}
	if got := len(s.FactsByExistence(Possible)); got != 0 {
		t.Fatalf("byExistence[Possible]: expected the superseded record to be removed, got %d", got)
	}
	if got := len(s.FactsByExistence(Certain)); got != 1 {
		t.Fatalf("byExistence[Certain]: expected the upgraded record, got %d", got)
	}
}
