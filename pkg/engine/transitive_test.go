package engine

import (
	"testing"

	"github.com/sys2dsl/engine/pkg/kb"
)

func TestAskImpossibleReportsConflictShape(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "DISJOINT_WITH", []string{"DOG", "FISH"}, kb.Certain)
	addFact(t, e, "IS_A", []string{"Rex", "DOG"}, kb.Certain)

	result := e.Ask("IS_A", []string{"Rex", "FISH"}, Options{})
	if result.Found {
		t.Fatalf("expected IS_A(Rex, FISH) to be unprovable, got %+v", result)
	}
	if result.Status != StatusImpossible {
		t.Fatalf("status = %v, want IMPOSSIBLE", result.Status)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d: %+v", len(result.Conflicts), result.Conflicts)
	}
	conflict := result.Conflicts[0]
	if conflict.A.Operator != "IS_A" || conflict.A.Args[0] != "Rex" || conflict.A.Args[1] != "DOG" {
		t.Errorf("conflict.A = %+v, want IS_A(Rex, DOG)", conflict.A)
	}
	if conflict.B.Operator != "DISJOINT_WITH" || conflict.B.Args[0] != "DOG" || conflict.B.Args[1] != "FISH" {
		t.Errorf("conflict.B = %+v, want DISJOINT_WITH(DOG, FISH)", conflict.B)
	}
}

func TestCheckImpossibilityMatchesEitherDisjointDirection(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "IS_A", []string{"Rex", "DOG"}, kb.Certain)
	addFact(t, e, "DISJOINT_WITH", []string{"FISH", "DOG"}, kb.Certain)

	conflicts := checkImpossibility(e.Store(), e.dims, "Rex", "FISH")
	if len(conflicts) != 1 {
		t.Fatalf("expected checkImpossibility to match the reversed DISJOINT_WITH pair, got %d: %+v", len(conflicts), conflicts)
	}
}

func TestCheckImpossibilityNoConflictWithoutDisjointness(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "IS_A", []string{"Rex", "DOG"}, kb.Certain)

	if conflicts := checkImpossibility(e.Store(), e.dims, "Rex", "MAMMAL"); len(conflicts) != 0 {
		t.Fatalf("expected no conflicts absent a DISJOINT_WITH fact, got %+v", conflicts)
	}
}

func TestDeduceValueTypeInheritanceDirectMatch(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "HAS", []string{"alice", "Rex"}, kb.Certain)

	f, existence, ok := deduceValueTypeInheritance(e.Store(), e.dims, nil, 0, "HAS", "alice", "Rex")
	if !ok {
		t.Fatalf("expected a direct possession match to succeed")
	}
	if f.Args[1] != "Rex" || existence != kb.Certain {
		t.Fatalf("expected the direct HAS fact back at CERTAIN, got %+v existence=%v", f, existence)
	}
}

func TestDeduceValueTypeInheritanceThroughIsA(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "HAS", []string{"alice", "Rex"}, kb.Certain)
	addFact(t, e, "IS_A", []string{"Rex", "DOG"}, kb.Demonstrated)

	f, existence, ok := deduceValueTypeInheritance(e.Store(), e.dims, nil, 0, "HAS", "alice", "DOG")
	if !ok {
		t.Fatalf("expected HAS(alice, Rex) + IS_A(Rex, DOG) to satisfy HAS(alice, DOG)")
	}
	if f.Args[1] != "Rex" {
		t.Fatalf("expected the possession fact for Rex back, got %+v", f)
	}
	if existence != kb.Demonstrated {
		t.Fatalf("expected existence capped to the weaker (IS_A) link, got %v", existence)
	}
}

func TestDeduceValueTypeInheritanceRejectsNonPossessionOperator(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "LIKES", []string{"alice", "Rex"}, kb.Certain)

	if _, _, ok := deduceValueTypeInheritance(e.Store(), e.dims, nil, 0, "LIKES", "alice", "Rex"); ok {
		t.Fatalf("expected deduceValueTypeInheritance to refuse a non-possession operator")
	}
}

func TestAskValueTypeInheritanceThroughIsA(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "OWNS", []string{"alice", "Rex"}, kb.Certain)
	addFact(t, e, "IS_A", []string{"Rex", "DOG"}, kb.Certain)

	result := e.Ask("OWNS", []string{"alice", "DOG"}, Options{})
	if !result.Found {
		t.Fatalf("expected OWNS(alice, Rex) + IS_A(Rex, DOG) to satisfy OWNS(alice, DOG), got %+v", result)
	}
	if result.Source != SourceInherited {
		t.Errorf("source = %v, want inherited", result.Source)
	}
}
