package session

import (
	"testing"

	"github.com/sys2dsl/engine/pkg/engine"
	"github.com/sys2dsl/engine/pkg/kb"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return New(Config{Dimension: 2048})
}

func TestRunLearnsBareStatement(t *testing.T) {
	s := newTestSession(t)
	result, err := s.Run("IS_A Dog Mammal\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Learned) != 1 {
		t.Fatalf("expected 1 learned fact, got %d", len(result.Learned))
	}
	if result.Learned[0].Existence != kb.Unproven {
		t.Errorf("existence = %v, want UNPROVEN (no explicit variant)", result.Learned[0].Existence)
	}
}

func TestRunBindsDestinationForLaterReference(t *testing.T) {
	s := newTestSession(t)
	result, err := s.Run("@f1 IS_A Dog Mammal\nhasProperty $f1 Furry\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Learned) != 2 {
		t.Fatalf("expected 2 learned facts, got %d", len(result.Learned))
	}
	if result.Learned[1].Args[0] != "Dog" {
		t.Errorf("expected $f1 to resolve to the IS_A subject, got %q", result.Learned[1].Args[0])
	}
}

func TestRunAskAfterLearn(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Run("LIKES alice tea\n"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	result, err := s.Run("@q1 ASK LIKES alice tea\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, ok := result.Bindings["q1"]
	if !ok || b.Query == nil {
		t.Fatalf("expected q1 to bind a query result, got %+v", result.Bindings)
	}
	if !b.Query.Found {
		t.Fatalf("expected ASK to find the learned fact")
	}
}

func TestRunRuleChaining(t *testing.T) {
	s := newTestSession(t)
	src := "PARENT_OF alice bob\n" +
		"@r1 RULE (PARENT_OF ?x ?y) (ANCESTOR_OF ?x ?y)\n"
	if _, err := s.Run(src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	proof := s.Prove("ANCESTOR_OF", []string{"alice", "bob"}, engine.Options{})
	if !proof.Valid {
		t.Fatalf("expected rule-chained proof to succeed, got %+v", proof)
	}
}

func TestPushPopTheoryRetractsFacts(t *testing.T) {
	s := newTestSession(t)
	s.PushTheory("scratch")
	if _, err := s.Learn(LearnRequest{Operator: "LIKES", Args: []string{"bob", "pie"}, Existence: existenceUnset}); err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if name := s.PopTheory(); name != "scratch" {
		t.Fatalf("expected to pop 'scratch', got %q", name)
	}
	qr := s.Ask("LIKES", []string{"bob", "pie"}, engine.Options{})
	if qr.Found {
		t.Fatalf("expected fact retracted with its theory layer, got %+v", qr)
	}
}

func TestLearnRejectsHardContradiction(t *testing.T) {
	s := newTestSession(t)
	mustLearn(t, s, "DISJOINT_WITH", []string{"BIRD", "FISH"})
	mustLearn(t, s, "IS_A", []string{"tweety", "BIRD"})

	_, err := s.Learn(LearnRequest{Operator: "IS_A", Args: []string{"tweety", "FISH"}, Existence: kb.Certain})
	if err == nil {
		t.Fatal("expected ContradictionRejected error")
	}
	if _, ok := err.(*ContradictionRejected); !ok {
		t.Fatalf("expected *ContradictionRejected, got %T: %v", err, err)
	}
}

func TestRunRollsBackBatchOnContradiction(t *testing.T) {
	s := newTestSession(t)
	s.Detector.RegisterMutualExclusion("hasState", "Open", "Closed")
	mustLearn(t, s, "hasState", []string{"Door", "Open"})

	src := "locatedIn Door Kitchen\n" +
		"hasState Door Closed\n"
	result, err := s.Run(src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly 1 rejection, got %d: %v", len(result.Errors), result.Errors)
	}
	if _, ok := result.Errors[0].(*ContradictionRejected); !ok {
		t.Fatalf("expected *ContradictionRejected, got %T", result.Errors[0])
	}

	if qr := s.Ask("locatedIn", []string{"Door", "Kitchen"}, engine.Options{}); qr.Found {
		t.Fatalf("expected locatedIn to be rolled back with the rest of its batch, got %+v", qr)
	}
	if qr := s.Ask("hasState", []string{"Door", "Open"}, engine.Options{}); !qr.Found {
		t.Fatalf("expected the pre-existing hasState fact to survive the rollback")
	}
}

func TestMutuallyExclusiveDeclarationRejectsSecondValue(t *testing.T) {
	s := newTestSession(t)
	src := "MUTUALLY_EXCLUSIVE hasState Open Closed\n" +
		"hasState Door Open\n"
	if _, err := s.Run(src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, err := s.Learn(LearnRequest{Operator: "hasState", Args: []string{"Door", "Closed"}, Existence: kb.Certain})
	if err == nil {
		t.Fatal("expected ContradictionRejected error")
	}
	if _, ok := err.(*ContradictionRejected); !ok {
		t.Fatalf("expected *ContradictionRejected, got %T: %v", err, err)
	}
}

func TestLearnRefusedOutsideLearningMode(t *testing.T) {
	s := newTestSession(t)
	s.SetMode(ModeQuery)
	_, err := s.Learn(LearnRequest{Operator: "LIKES", Args: []string{"a", "b"}, Existence: kb.Certain})
	if err == nil {
		t.Fatal("expected an error learning outside LEARNING mode")
	}
}

func TestGraphMacroInvocation(t *testing.T) {
	s := newTestSession(t)
	src := "graph Pair ?a ?b\n" +
		"LIKES ?a ?b\n" +
		"return ?a\n" +
		"end\n" +
		"@m1 Pair alice tea\n"
	result, err := s.Run(src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Learned) != 1 || result.Learned[0].Operator != "LIKES" {
		t.Fatalf("expected the macro body to learn LIKES, got %+v", result.Learned)
	}
	b, ok := result.Bindings["m1"]
	if !ok || b.Value != "alice" {
		t.Fatalf("expected m1 bound to the graph's return value, got %+v", b)
	}
}

func mustLearn(t *testing.T, s *Session, operator string, args []string) {
	t.Helper()
	if _, err := s.Learn(LearnRequest{Operator: operator, Args: args, Existence: kb.Certain}); err != nil {
		t.Fatalf("Learn(%s, %v): %v", operator, args, err)
	}
}
