package engine

import (
	"testing"

	"github.com/sys2dsl/engine/pkg/hdc"
	"github.com/sys2dsl/engine/pkg/kb"
	"github.com/sys2dsl/engine/pkg/registry"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	voc := hdc.NewVocabulary(2048)
	arena := kb.NewConceptArena(voc)
	store := kb.NewStore(voc, arena)
	dims := registry.Empty()
	return New(store, voc, arena, dims, registry.NewPluginRegistry())
}

func addFact(t *testing.T, e *Engine, operator string, args []string, existence kb.Existence) {
	t.Helper()
	if _, _, err := e.Store().AddFact(kb.AddFactRequest{Operator: operator, Args: args, Existence: existence}); err != nil {
		t.Fatalf("AddFact(%s, %v): %v", operator, args, err)
	}
}

func TestProveDirectMatch(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "LIKES", []string{"alice", "tea"}, kb.Certain)

	result := e.Prove("LIKES", []string{"alice", "tea"}, Options{})
	if !result.Valid {
		t.Fatalf("expected valid proof, got %+v", result)
	}
	if result.Confidence != ConfidenceDirectMatch {
		t.Errorf("confidence = %v, want %v", result.Confidence, ConfidenceDirectMatch)
	}
}

func TestProveNoMatchIsUnknown(t *testing.T) {
	e := newTestEngine(t)
	result := e.Prove("LIKES", []string{"alice", "coffee"}, Options{})
	if result.Valid {
		t.Fatalf("expected unprovable goal, got %+v", result)
	}
	if result.Reason != ReasonNoMatch {
		t.Errorf("reason = %v, want %v", result.Reason, ReasonNoMatch)
	}
}

func TestAskTransitiveIsA(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "IS_A", []string{"socrates", "man"}, kb.Certain)
	addFact(t, e, "IS_A", []string{"man", "mortal"}, kb.Certain)

	result := e.Ask("IS_A", []string{"socrates", "mortal"}, Options{})
	if !result.Found {
		t.Fatalf("expected transitive IS_A to be found, got %+v", result)
	}
	if result.Source != SourceDerived {
		t.Errorf("source = %v, want %v", result.Source, SourceDerived)
	}
}

func TestAskUnknown(t *testing.T) {
	e := newTestEngine(t)
	result := e.Ask("LIKES", []string{"alice", "coffee"}, Options{})
	if result.Found {
		t.Fatalf("expected not found, got %+v", result)
	}
	if result.Status != StatusUnknown {
		t.Errorf("status = %v, want %v", result.Status, StatusUnknown)
	}
}

func TestRuleChaining(t *testing.T) {
	e := newTestEngine(t)
	addFact(t, e, "PARENT_OF", []string{"alice", "bob"}, kb.Certain)

	condition := &CompoundTree{Kind: KindLeaf, Operator: "PARENT_OF", Args: []string{"?x", "?y"}}
	conclusion := &CompoundTree{Kind: KindLeaf, Operator: "ANCESTOR_OF", Args: []string{"?x", "?y"}}
	e.AddRule(&Rule{Name: "ancestor_base", ConditionParts: condition, ConclusionParts: conclusion})

	result := e.Prove("ANCESTOR_OF", []string{"alice", "bob"}, Options{})
	if !result.Valid {
		t.Fatalf("expected rule-chained proof to succeed, got %+v", result)
	}
	if result.Method != "rule:ancestor_base" {
		t.Errorf("method = %q, want rule:ancestor_base", result.Method)
	}
}

func TestNotRequiresClosedWorld(t *testing.T) {
	e := newTestEngine(t)
	g := newGuard(Options{})
	tree := &CompoundTree{Kind: KindNot, Children: []*CompoundTree{
		{Kind: KindLeaf, Operator: "LIKES", Args: []string{"alice", "tea"}},
	}}
	confidence := 1.0
	_, ok, reason := e.proveCompound(g, tree, Bindings{}, 0, &confidence)
	if ok {
		t.Fatalf("expected Not to fail without ClosedWorld")
	}
	if reason != ReasonConditionNeg {
		t.Errorf("reason = %v, want %v", reason, ReasonConditionNeg)
	}
}

func TestNotSucceedsOnAbsence(t *testing.T) {
	e := newTestEngine(t)
	g := newGuard(Options{ClosedWorld: true})
	tree := &CompoundTree{Kind: KindNot, Children: []*CompoundTree{
		{Kind: KindLeaf, Operator: "LIKES", Args: []string{"alice", "tea"}},
	}}
	confidence := 1.0
	_, ok, reason := e.proveCompound(g, tree, Bindings{}, 0, &confidence)
	if !ok || reason != ReasonNone {
		t.Fatalf("expected Not to succeed on absent fact, got ok=%v reason=%v", ok, reason)
	}
}

func TestAndOrdersByFanout(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 50; i++ {
		addFact(t, e, "WIDE", []string{"x" + string(rune('a'+i%26)), "y"}, kb.Certain)
	}
	addFact(t, e, "NARROW", []string{"alice", "bob"}, kb.Certain)

	and := &CompoundTree{Kind: KindAnd, Children: []*CompoundTree{
		{Kind: KindLeaf, Operator: "WIDE", Args: []string{"?x", "y"}},
		{Kind: KindLeaf, Operator: "NARROW", Args: []string{"alice", "bob"}},
	}}
	g := newGuard(Options{})
	confidence := 1.0
	_, ok, reason := e.proveCompound(g, and, Bindings{}, 0, &confidence)
	if !ok || reason != ReasonNone {
		t.Fatalf("expected And to succeed, got ok=%v reason=%v", ok, reason)
	}
}
