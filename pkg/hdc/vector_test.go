package hdc

import "testing"

func TestBindSelfInverse(t *testing.T) {
	a := CreateFromName("Dog", DefaultDimension)
	b := CreateFromName("Mammal", DefaultDimension)

	bound, err := Bind(a, b)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	back, err := Unbind(bound, b)
	if err != nil {
		t.Fatalf("Unbind: %v", err)
	}
	for i := 0; i < a.Dimension(); i++ {
		if back.Bit(i) != a.Bit(i) {
			t.Fatalf("bind/unbind not self-inverse at bit %d", i)
		}
	}
}

func TestBundleIdempotence(t *testing.T) {
	v := CreateFromName("Animal", 4096)
	out, err := Bundle([]*DenseVector{v, v, v})
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	for i := 0; i < v.Dimension(); i++ {
		if out.Bit(i) != v.Bit(i) {
			t.Fatalf("bundle([v,v,v]) != v at bit %d", i)
		}
	}
}

func TestCreateFromNameDeterministic(t *testing.T) {
	a := CreateFromName("Tea", 8192)
	b := CreateFromName("Tea", 8192)
	for i := 0; i < a.Dimension(); i++ {
		if a.Bit(i) != b.Bit(i) {
			t.Fatalf("CreateFromName is not deterministic at bit %d", i)
		}
	}
}

func TestSimilarityRange(t *testing.T) {
	a := CreateFromName("Beverage", 4096)
	b := CreateFromName("Liquid", 4096)
	sim, err := Similarity(a, b)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if sim < -1 || sim > 1 {
		t.Fatalf("similarity out of range: %v", sim)
	}
	selfSim, err := Similarity(a, a)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if selfSim != 1 {
		t.Fatalf("self-similarity expected 1, got %v", selfSim)
	}
}

func TestPositionOrthogonality(t *testing.T) {
	voc := NewVocabulary(DefaultDimension)
	for i := 1; i <= NumPositions; i++ {
		for j := i + 1; j <= NumPositions; j++ {
			pi, err := voc.position(i)
			if err != nil {
				t.Fatalf("position(%d): %v", i, err)
			}
			pj, err := voc.position(j)
			if err != nil {
				t.Fatalf("position(%d): %v", j, err)
			}
			ortho, err := IsOrthogonal(pi, pj, DefaultOrthogonalityThreshold)
			if err != nil {
				t.Fatalf("IsOrthogonal: %v", err)
			}
			if !ortho {
				sim, _ := Similarity(pi, pj)
				t.Fatalf("positions %d and %d not orthogonal: similarity=%v", i, j, sim)
			}
		}
	}
}

func TestSparseBindUnbind(t *testing.T) {
	cfg := SparseConfig{MaxSize: 64, Order: 997}
	voc := NewSparseVocabulary(cfg)
	a, err := voc.GetOrCreateSparse("Dog")
	if err != nil {
		t.Fatalf("GetOrCreateSparse: %v", err)
	}
	b, err := voc.GetOrCreateSparse("Mammal")
	if err != nil {
		t.Fatalf("GetOrCreateSparse: %v", err)
	}
	bound, err := SparseBind(a, b)
	if err != nil {
		t.Fatalf("SparseBind: %v", err)
	}
	back, err := SparseUnbind(bound, b)
	if err != nil {
		t.Fatalf("SparseUnbind: %v", err)
	}
	if len(back.Terms()) != len(a.Terms()) {
		t.Fatalf("sparse bind/unbind round trip changed term count: %d vs %d", len(back.Terms()), len(a.Terms()))
	}
}
