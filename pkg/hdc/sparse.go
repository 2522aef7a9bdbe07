package hdc

import (
	"fmt"
	"sort"
)

// SparseTerm is a single (prime-axis, exponent) component of a sparse
// vector. Axis indexes a conceptual prime basis; Exponent is reduced
// modulo the vector's Order.
type SparseTerm struct {
	Axis     int
	Exponent int
}

// SparseVector represents a symbol as a sorted, size-bounded set of
// (axis, exponent) pairs — a compact alternative to the dense
// geometry for memory-constrained deployments (§3, §4.1).
type SparseVector struct {
	maxSize int
	order   int // exponents are reduced modulo order
	terms   []SparseTerm
}

// NewSparseVector builds a sparse vector from terms, sorting by axis,
// merging duplicate axes by adding exponents mod order, dropping
// zero-exponent terms, and truncating to maxSize entries (by axis
// order, so truncation is deterministic).
func NewSparseVector(maxSize, order int, terms []SparseTerm) (*SparseVector, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("hdc: sparse maxSize must be positive, got %d", maxSize)
	}
	if order <= 0 {
		return nil, fmt.Errorf("hdc: sparse order must be positive, got %d", order)
	}
	merged := map[int]int{}
	for _, t := range terms {
		merged[t.Axis] = mod(merged[t.Axis]+t.Exponent, order)
	}
	out := make([]SparseTerm, 0, len(merged))
	for axis, exp := range merged {
		if exp == 0 {
			continue
		}
		out = append(out, SparseTerm{Axis: axis, Exponent: exp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Axis < out[j].Axis })
	if len(out) > maxSize {
		out = out[:maxSize]
	}
	return &SparseVector{maxSize: maxSize, order: order, terms: out}, nil
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// Strategy implements Vector.
func (v *SparseVector) Strategy() Strategy { return StrategySparse }

// Terms returns the sorted, deduplicated term list (read-only view;
// callers must not mutate the returned slice).
func (v *SparseVector) Terms() []SparseTerm { return v.terms }

// MaxSize returns the configured maximum term count.
func (v *SparseVector) MaxSize() int { return v.maxSize }

// Order returns the exponent modulus.
func (v *SparseVector) Order() int { return v.order }

func (v *SparseVector) String() string {
	return fmt.Sprintf("Sparse(terms=%d/%d)", len(v.terms), v.maxSize)
}

// SparseBind performs componentwise addition of exponents modulo
// order, preserving sortedness and the maxSize bound.
func SparseBind(a, b *SparseVector) (*SparseVector, error) {
	if a.order != b.order || a.maxSize != b.maxSize {
		return nil, fmt.Errorf("hdc: sparse geometry mismatch in SparseBind")
	}
	combined := append(append([]SparseTerm{}, a.terms...), b.terms...)
	return NewSparseVector(a.maxSize, a.order, combined)
}

// SparseUnbind subtracts b's exponents from c's (i.e. binds c with
// the additive inverse of b).
func SparseUnbind(c, b *SparseVector) (*SparseVector, error) {
	if c.order != b.order || c.maxSize != b.maxSize {
		return nil, fmt.Errorf("hdc: sparse geometry mismatch in SparseUnbind")
	}
	inverse := make([]SparseTerm, len(b.terms))
	for i, t := range b.terms {
		inverse[i] = SparseTerm{Axis: t.Axis, Exponent: mod(-t.Exponent, b.order)}
	}
	combined := append(append([]SparseTerm{}, c.terms...), inverse...)
	return NewSparseVector(c.maxSize, c.order, combined)
}

// SparseBundle merges the term sets of vs, summing exponents per axis
// modulo order and renormalizing (truncating) to the first vector's
// maxSize bound.
func SparseBundle(vs []*SparseVector) (*SparseVector, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("hdc: SparseBundle requires at least one vector")
	}
	order := vs[0].order
	maxSize := vs[0].maxSize
	var combined []SparseTerm
	for _, v := range vs {
		if v.order != order || v.maxSize != maxSize {
			return nil, fmt.Errorf("hdc: sparse geometry mismatch in SparseBundle")
		}
		combined = append(combined, v.terms...)
	}
	return NewSparseVector(maxSize, order, combined)
}

// SparseSimilarity computes the normalized dot product over shared
// axes: sum of min(|e_a|,|e_b|) per shared axis, normalized by the
// larger of the two term counts (or 0 if either side is empty).
func SparseSimilarity(a, b *SparseVector) (float64, error) {
	if a.order != b.order {
		return 0, fmt.Errorf("hdc: sparse geometry mismatch in SparseSimilarity")
	}
	if len(a.terms) == 0 || len(b.terms) == 0 {
		return 0, nil
	}
	bAxis := make(map[int]int, len(b.terms))
	for _, t := range b.terms {
		bAxis[t.Axis] = t.Exponent
	}
	overlap := 0
	for _, t := range a.terms {
		if e, ok := bAxis[t.Axis]; ok {
			m := t.Exponent
			if e < m {
				m = e
			}
			overlap += m
		}
	}
	denom := len(a.terms)
	if len(b.terms) > denom {
		denom = len(b.terms)
	}
	return float64(overlap) / float64(denom), nil
}
