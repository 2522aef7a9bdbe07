package session

import (
	"fmt"
	"strings"

	"github.com/sys2dsl/engine/pkg/engine"
)

// Hypothesis is one candidate explanation returned by Abduct: a rule
// whose conclusion operator matches the observation's, paired with the
// conditions that would need to hold for it to fire.
type Hypothesis struct {
	Rule       string
	Conditions []string
}

// AbductResult is the optional `session.abduct` result shape (§6:
// "may return {hypotheses:[...]}").
type AbductResult struct {
	Hypotheses []Hypothesis
}

// Abduct returns nothing when the observation is already found by Ask;
// otherwise it lists every rule whose conclusion operator equals the
// observation's operator, with that rule's conditions as a candidate
// explanation. The conclusion's arguments are not unified with the
// observation's arguments (§6
// "session.abduct(observation, opts) - optional"). It performs no
// proof search of its own beyond the direct/derived checks already
// covered by Ask; abduction here is deliberately shallow — listing
// candidate conditions rather than attempting to prove them.
func (s *Session) Abduct(operator string, args []string, opts engine.Options) AbductResult {
	if qr := s.Ask(operator, args, opts); qr.Found {
		return AbductResult{}
	}

	var out AbductResult
	for _, r := range s.Engine.Rules() {
		if r.ConclusionParts == nil || r.ConclusionParts.Operator != operator {
			continue
		}
		conditions := conditionSummary(r.ConditionParts)
		out.Hypotheses = append(out.Hypotheses, Hypothesis{Rule: r.Name, Conditions: conditions})
	}
	return out
}

// conditionSummary flattens a rule's condition tree into one
// human-readable line per leaf, prefixed by its logical connective —
// enough for a caller to see what would need to be established, not a
// re-derivation of the tree structure.
func conditionSummary(t *engine.CompoundTree) []string {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case engine.KindLeaf:
		return []string{fmt.Sprintf("%s %s", t.Operator, strings.Join(t.Args, " "))}
	case engine.KindNot:
		var out []string
		for _, c := range t.Children {
			for _, s := range conditionSummary(c) {
				out = append(out, "NOT "+s)
			}
		}
		return out
	default:
		var out []string
		for _, c := range t.Children {
			out = append(out, conditionSummary(c)...)
		}
		return out
	}
}
