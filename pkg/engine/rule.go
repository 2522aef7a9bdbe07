// Package engine is the Reasoning Engine: the backward-chaining
// prover, KB matcher, transitive chainer, inheritance walker,
// compound-condition prover, rule chainer, bounded existential
// witness search, per-goal memoization cache, and the opt-in
// holographic fast path (§4.7).
package engine

import (
	"strings"

	"github.com/sys2dsl/engine/pkg/dsl"
	"github.com/sys2dsl/engine/pkg/hdc"
)

// CompoundKind distinguishes the three compound-condition shapes plus
// ground leaves (§3, §4.7.1).
type CompoundKind int

const (
	KindLeaf CompoundKind = iota
	KindAnd
	KindOr
	KindNot
)

// CompoundTree is the parsed shape of a rule's condition, distinct
// from its flat AST (dsl.Expr) representation: leaves carry the
// ground-or-holed triple, And/Or/Not carry ordered child trees
// (§3: "conditionParts distinguishes And (ordered), Or, Not, leaf
// nodes").
type CompoundTree struct {
	Kind     CompoundKind
	Operator string   // leaf only
	Args     []string // leaf only; holes are written "?name"
	Children []*CompoundTree
}

// IsHole reports whether s is a free-variable token (§4.5).
func IsHole(s string) bool {
	return strings.HasPrefix(s, "?")
}

// HoleName strips the leading '?' from a hole token.
func HoleName(s string) string {
	return strings.TrimPrefix(s, "?")
}

// BuildCompoundTree lowers a parsed dsl.Expr condition into a
// CompoundTree, recognizing `And`/`Or`/`Not` compound operators and
// treating everything else as a leaf triple.
func BuildCompoundTree(e dsl.Expr) *CompoundTree {
	compound, ok := e.(*dsl.Compound)
	if !ok {
		return exprToLeaf(e)
	}
	opName := exprOperatorName(compound.Operator)
	switch opName {
	case "And":
		return &CompoundTree{Kind: KindAnd, Children: buildChildren(compound.Args)}
	case "Or":
		return &CompoundTree{Kind: KindOr, Children: buildChildren(compound.Args)}
	case "Not":
		return &CompoundTree{Kind: KindNot, Children: buildChildren(compound.Args)}
	default:
		return compoundToLeaf(compound)
	}
}

func buildChildren(args []dsl.Expr) []*CompoundTree {
	children := make([]*CompoundTree, 0, len(args))
	for _, a := range args {
		children = append(children, BuildCompoundTree(a))
	}
	return children
}

func exprOperatorName(e dsl.Expr) string {
	if id, ok := e.(*dsl.Ident); ok {
		return id.Name
	}
	return ""
}

func exprToLeaf(e dsl.Expr) *CompoundTree {
	switch v := e.(type) {
	case *dsl.Ident:
		return &CompoundTree{Kind: KindLeaf, Operator: v.Name}
	case *dsl.Hole:
		return &CompoundTree{Kind: KindLeaf, Operator: "?" + v.Name}
	}
	return &CompoundTree{Kind: KindLeaf}
}

func compoundToLeaf(c *dsl.Compound) *CompoundTree {
	leaf := &CompoundTree{Kind: KindLeaf, Operator: exprOperatorName(c.Operator)}
	for _, a := range c.Args {
		leaf.Args = append(leaf.Args, exprToArgToken(a))
	}
	return leaf
}

func exprToArgToken(e dsl.Expr) string {
	switch v := e.(type) {
	case *dsl.Ident:
		return v.Name
	case *dsl.Hole:
		return "?" + v.Name
	case *dsl.Number:
		return v.Raw
	case *dsl.String:
		return v.Value
	default:
		return ""
	}
}

// HasVariables reports whether t (or any descendant) contains a hole.
func (t *CompoundTree) HasVariables() bool {
	if t == nil {
		return false
	}
	if t.Kind == KindLeaf {
		if IsHole(t.Operator) {
			return true
		}
		for _, a := range t.Args {
			if IsHole(a) {
				return true
			}
		}
		return false
	}
	for _, c := range t.Children {
		if c.HasVariables() {
			return true
		}
	}
	return false
}

// Rule is a named conclusion-from-condition inference: `conditionAST,
// conclusionAST, condition_vector, conclusion_vector, conditionParts,
// hasVariables` (§3).
type Rule struct {
	Name            string
	ConditionAST    dsl.Expr
	ConclusionAST   dsl.Expr
	ConditionVector *hdc.DenseVector
	ConclusionVector *hdc.DenseVector
	ConditionParts  *CompoundTree
	ConclusionParts *CompoundTree
	HasVariables    bool
}

// NewRule builds a Rule from parsed condition/conclusion expressions,
// computing their CompoundTree shapes and variable flag. Vector
// fields are populated separately by the caller once a Vocabulary and
// ConceptArena are available (rule vectors are only needed by the
// holographic fast path, which is opt-in).
func NewRule(name string, condition, conclusion dsl.Expr) *Rule {
	condParts := BuildCompoundTree(condition)
	return &Rule{
		Name:            name,
		ConditionAST:    condition,
		ConclusionAST:   conclusion,
		ConditionParts:  condParts,
		ConclusionParts: BuildCompoundTree(conclusion),
		HasVariables:    condParts.HasVariables(),
	}
}
