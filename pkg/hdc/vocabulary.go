package hdc

import (
	"fmt"
	"sync"
)

// NumPositions is the number of pairwise (near-)orthogonal position
// markers the vocabulary maintains (argument slots 1..20, §3).
const NumPositions = 20

// Vocabulary maps symbolic names to deterministic vectors under one
// active strategy and geometry, and caches the N position vectors
// used to tag argument order. A Vocabulary is owned by exactly one
// session; clearing its position cache is only permitted at session
// boundaries (§4.2, §9).
type Vocabulary struct {
	mu       sync.RWMutex
	strategy Strategy
	dim      int // dense geometry width; ignored for sparse
	sparse   SparseConfig

	names     map[string]*DenseVector
	sparseMap map[string]*SparseVector
	positions map[int]*DenseVector // position cache, key = slot (1..N)
}

// SparseConfig bundles the sparse geometry parameters a Vocabulary
// needs to create sparse symbol vectors.
type SparseConfig struct {
	MaxSize int
	Order   int
}

// NewVocabulary constructs a vocabulary for the dense strategy with
// geometry width dim.
func NewVocabulary(dim int) *Vocabulary {
	return &Vocabulary{
		strategy:  StrategyDense,
		dim:       dim,
		names:     make(map[string]*DenseVector),
		positions: make(map[int]*DenseVector),
	}
}

// NewSparseVocabulary constructs a vocabulary for the sparse strategy.
func NewSparseVocabulary(cfg SparseConfig) *Vocabulary {
	return &Vocabulary{
		strategy:  StrategySparse,
		sparse:    cfg,
		sparseMap: make(map[string]*SparseVector),
	}
}

// Strategy reports the vocabulary's active geometry.
func (voc *Vocabulary) Strategy() Strategy { return voc.strategy }

// GetOrCreate returns the strategy-local dense vector for name,
// creating it deterministically via CreateFromName if absent.
func (voc *Vocabulary) GetOrCreate(name string) (*DenseVector, error) {
	if voc.strategy != StrategyDense {
		return nil, fmt.Errorf("hdc: GetOrCreate(dense) called on a %s vocabulary", voc.strategy)
	}
	voc.mu.RLock()
	if v, ok := voc.names[name]; ok {
		voc.mu.RUnlock()
		return v, nil
	}
	voc.mu.RUnlock()

	voc.mu.Lock()
	defer voc.mu.Unlock()
	if v, ok := voc.names[name]; ok {
		return v, nil
	}
	v := CreateFromName(name, voc.dim)
	voc.names[name] = v
	return v, nil
}

// GetOrCreateSparse is the sparse-strategy analogue of GetOrCreate.
func (voc *Vocabulary) GetOrCreateSparse(name string) (*SparseVector, error) {
	if voc.strategy != StrategySparse {
		return nil, fmt.Errorf("hdc: GetOrCreateSparse called on a %s vocabulary", voc.strategy)
	}
	voc.mu.RLock()
	if v, ok := voc.sparseMap[name]; ok {
		voc.mu.RUnlock()
		return v, nil
	}
	voc.mu.RUnlock()

	voc.mu.Lock()
	defer voc.mu.Unlock()
	if v, ok := voc.sparseMap[name]; ok {
		return v, nil
	}
	v := sparseFromName(name, voc.sparse)
	voc.sparseMap[name] = v
	return v, nil
}

func sparseFromName(name string, cfg SparseConfig) *SparseVector {
	// Derive deterministic (axis, exponent) terms from a dense seed
	// vector's bit pattern, mirroring the dense geometry's use of
	// CreateFromName as the single source of determinism.
	seed := CreateFromName(name, 4096)
	terms := make([]SparseTerm, 0, cfg.MaxSize)
	axis := 0
	for i := 0; i < seed.Dimension() && len(terms) < cfg.MaxSize; i += 8 {
		b := 0
		for j := 0; j < 8 && i+j < seed.Dimension(); j++ {
			b = (b << 1) | seed.Bit(i+j)
		}
		if b != 0 {
			terms = append(terms, SparseTerm{Axis: axis, Exponent: mod(b, cfg.Order)})
		}
		axis++
	}
	v, _ := NewSparseVector(cfg.MaxSize, cfg.Order, terms)
	return v
}

// Positioned returns bind(v, Pos_k) for the dense geometry. Slot k
// must be in [1, NumPositions].
func (voc *Vocabulary) Positioned(v *DenseVector, slot int) (*DenseVector, error) {
	if voc.strategy != StrategyDense {
		return nil, fmt.Errorf("hdc: Positioned called on a %s vocabulary", voc.strategy)
	}
	pos, err := voc.position(slot)
	if err != nil {
		return nil, err
	}
	return Bind(v, pos)
}

func (voc *Vocabulary) position(slot int) (*DenseVector, error) {
	if slot < 1 || slot > NumPositions {
		return nil, fmt.Errorf("hdc: position slot %d out of range [1,%d]", slot, NumPositions)
	}
	voc.mu.RLock()
	if p, ok := voc.positions[slot]; ok {
		voc.mu.RUnlock()
		return p, nil
	}
	voc.mu.RUnlock()

	voc.mu.Lock()
	defer voc.mu.Unlock()
	if p, ok := voc.positions[slot]; ok {
		return p, nil
	}
	p := CreateFromName(fmt.Sprintf("__position_marker_%d", slot), voc.dim)
	voc.positions[slot] = p
	return p, nil
}

// ClearPositions discards the cached position vectors. Permitted only
// at session boundaries (session close or strategy change) per §4.2.
func (voc *Vocabulary) ClearPositions() {
	voc.mu.Lock()
	defer voc.mu.Unlock()
	voc.positions = make(map[int]*DenseVector)
}
