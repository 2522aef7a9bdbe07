package kb

import (
	"time"

	"github.com/sys2dsl/engine/pkg/hdc"
)

// Provenance records where a fact came from: the source file/line it
// was parsed from (if any), when it was created, and — for derived
// facts — the chain of facts and/or rule that produced it (§3).
type Provenance struct {
	SourceFile string
	Line       int
	CreatedAt  time.Time
	DerivedFrom []int64 // fact ids this fact was derived from
	Rule        string  // rule name, if derived via rule chaining
}

// FactMetadata is the symbolic (operator, args) shape of a fact, used
// for exact-match comparisons that never rely on vector similarity
// (§4.7: "Exact match is required for ground rules").
type FactMetadata struct {
	Operator string
	Args     []string
}

// Equal reports whether two metadata records describe the same
// ground triple.
func (m FactMetadata) Equal(other FactMetadata) bool {
	if m.Operator != other.Operator || len(m.Args) != len(other.Args) {
		return false
	}
	for i := range m.Args {
		if m.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// Fact is a stored triple with its HDC vector, existence level, and
// provenance (§3).
type Fact struct {
	ID         int64
	Operator   string
	Args       []string
	Vector     *hdc.DenseVector
	Metadata   FactMetadata
	Existence  Existence
	Provenance Provenance
	Negated    bool // true for an explicit NOT_<operator> assertion
}

// ComputeFactVector builds vector = bundle(bind(operator,Pos1),
// bind(args[0],Pos2), ..., bind(args[k],Pos_{k+2})); argument slots
// past the last position vector are clamped to Pos20.
func ComputeFactVector(voc *hdc.Vocabulary, arena *ConceptArena, operator string, args []string) (*hdc.DenseVector, error) {
	opConcept, err := arena.Intern(operator, "fact")
	if err != nil {
		return nil, err
	}
	parts := make([]*hdc.DenseVector, 0, len(args)+1)
	opPos, err := opConcept.Positioned(voc, 1)
	if err != nil {
		return nil, err
	}
	parts = append(parts, opPos)
	for i, arg := range args {
		argConcept, err := arena.Intern(arg, "fact")
		if err != nil {
			return nil, err
		}
		slot := i + 2
		if slot > hdc.NumPositions {
			slot = hdc.NumPositions
		}
		argPos, err := argConcept.Positioned(voc, slot)
		if err != nil {
			return nil, err
		}
		parts = append(parts, argPos)
	}
	return hdc.Bundle(parts)
}
