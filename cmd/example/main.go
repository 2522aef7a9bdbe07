// Package main demonstrates the HDC vector algebra and the Session /
// Graph Runtime, mostly through the Go API directly; only the rule
// declaration in ruleChaining goes through the DSL parser.
package main

import (
	"fmt"

	"github.com/sys2dsl/engine/pkg/engine"
	"github.com/sys2dsl/engine/pkg/hdc"
	"github.com/sys2dsl/engine/pkg/kb"
	"github.com/sys2dsl/engine/pkg/session"
)

func main() {
	fmt.Println("=== Sys2DSL Examples ===")
	fmt.Println()

	vectorAlgebra()
	vocabularyAndPositioning()
	factsAndQueries()
	ruleChaining()
	theoryScoping()
}

// vectorAlgebra demonstrates bind, bundle, and similarity on dense
// binary hypervectors.
func vectorAlgebra() {
	fmt.Println("1. Vector Algebra:")

	a := hdc.CreateFromName("dog", 2048)
	b := hdc.CreateFromName("mammal", 2048)

	bound, _ := hdc.Bind(a, b)
	recovered, _ := hdc.Unbind(bound, b)
	sim, _ := hdc.Similarity(a, recovered)
	fmt.Printf("   similarity(dog, unbind(bind(dog, mammal), mammal)) = %.3f\n", sim)

	c := hdc.CreateFromName("cat", 2048)
	bundled, _ := hdc.Bundle([]*hdc.DenseVector{a, b, c})
	sim, _ = hdc.Similarity(bundled, a)
	fmt.Printf("   similarity(bundle(dog, mammal, cat), dog) = %.3f\n", sim)
	fmt.Println()
}

// vocabularyAndPositioning demonstrates interning a concept and
// computing its position-bound vector for a given argument slot.
func vocabularyAndPositioning() {
	fmt.Println("2. Vocabulary and Positioning:")

	voc := hdc.NewVocabulary(2048)
	arena := kb.NewConceptArena(voc)

	dog, _ := arena.Intern("dog", "fact")
	pos1, err := dog.Positioned(voc, 1)
	if err != nil {
		fmt.Printf("   positioning error: %v\n", err)
		return
	}
	fmt.Printf("   dog bound to position 1: %d bits set\n", pos1.Popcount())
	fmt.Println()
}

// factsAndQueries demonstrates learning a fact and asking about it
// through a Session.
func factsAndQueries() {
	fmt.Println("3. Facts and Queries:")

	s := session.New(session.Config{Dimension: 2048})
	if _, err := s.Learn(session.LearnRequest{
		Operator:  "LIKES",
		Args:      []string{"alice", "tea"},
		Existence: kb.Certain,
	}); err != nil {
		fmt.Printf("   learn error: %v\n", err)
		return
	}

	result := s.Ask("LIKES", []string{"alice", "tea"}, engine.Options{})
	fmt.Printf("   ask(LIKES alice tea) => found=%v existence=%s\n", result.Found, result.Existence)

	result = s.Ask("LIKES", []string{"bob", "tea"}, engine.Options{})
	fmt.Printf("   ask(LIKES bob tea) => found=%v existence=%s\n", result.Found, result.Existence)
	fmt.Println()
}

// ruleChaining demonstrates backward-chaining proof search through a
// single rule that derives ANCESTOR_OF from PARENT_OF.
func ruleChaining() {
	fmt.Println("4. Rule Chaining:")

	s := session.New(session.Config{Dimension: 2048})
	mustLearn(s, "PARENT_OF", []string{"alice", "bob"})
	mustLearn(s, "PARENT_OF", []string{"bob", "carol"})

	if _, err := s.Run("@ancestry RULE (PARENT_OF ?x ?y) (ANCESTOR_OF ?x ?y)\n"); err != nil {
		fmt.Printf("   rule declaration error: %v\n", err)
		return
	}

	proof := s.Prove("ANCESTOR_OF", []string{"alice", "bob"}, engine.Options{})
	fmt.Printf("   prove(ANCESTOR_OF alice bob) => valid=%v confidence=%.2f\n", proof.Valid, proof.Confidence)
	fmt.Println()
}

// theoryScoping demonstrates pushing a scratch theory layer, learning
// inside it, and popping it to retract everything it introduced.
func theoryScoping() {
	fmt.Println("5. Theory Scoping:")

	s := session.New(session.Config{Dimension: 2048})
	s.PushTheory("scratch")
	mustLearn(s, "LIKES", []string{"bob", "pie"})

	before := s.Ask("LIKES", []string{"bob", "pie"}, engine.Options{})
	fmt.Printf("   inside theory: found=%v\n", before.Found)

	s.PopTheory()
	after := s.Ask("LIKES", []string{"bob", "pie"}, engine.Options{})
	fmt.Printf("   after pop: found=%v\n", after.Found)
	fmt.Println()
}

func mustLearn(s *session.Session, operator string, args []string) {
	if _, err := s.Learn(session.LearnRequest{Operator: operator, Args: args, Existence: kb.Certain}); err != nil {
		panic(err)
	}
}
