// Package session is the Session / Graph Runtime (§2, §3, §6): it
// loads theories, executes DSL programs, binds statement results to
// SSA destinations, persists facts, switches between LEARNING and
// QUERY mode, and is the only caller of the Reasoning Engine. A
// Session is not thread-safe; distinct sessions may run concurrently
// (§5).
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sys2dsl/engine/pkg/contradiction"
	"github.com/sys2dsl/engine/pkg/dsl"
	"github.com/sys2dsl/engine/pkg/engine"
	"github.com/sys2dsl/engine/pkg/hdc"
	"github.com/sys2dsl/engine/pkg/kb"
	"github.com/sys2dsl/engine/pkg/registry"
)

// Mode is the session's read/write posture (§3).
type Mode string

const (
	// ModeLearning permits fact and rule mutation.
	ModeLearning Mode = "LEARNING"
	// ModeQuery is read-only: ask/prove calls only.
	ModeQuery Mode = "QUERY"
)

// Stats accumulates session-lifetime counters, surfaced for
// diagnostics (§3 "stats").
type Stats struct {
	FactsLearned   int
	RulesLearned   int
	Queries        int
	Proofs         int
	Contradictions int
	Retractions    int
}

// Binding is the value an `@name` destination resolves to for later
// `$name` lookups (§4.5). Exactly one of its fields is meaningful,
// depending on what kind of statement produced it.
type Binding struct {
	Fact  *kb.Fact
	Query *engine.QueryResult
	Proof *engine.ProofResult
	Value string // fallback: a bare token, e.g. a graph return value
}

// Session is the runtime described in §3: it owns the concept store,
// the vocabulary, the dimension/plugin registries, the reasoning
// engine, the contradiction detector, the theory stack, and the
// derivation cache, and exposes the §6 API surface.
type Session struct {
	mu sync.Mutex

	id string

	Voc      *hdc.Vocabulary
	Arena    *kb.ConceptArena
	Store    *kb.Store
	Dims     *registry.DimensionRegistry
	Plugins  *registry.PluginRegistry
	Engine   *engine.Engine
	Detector *contradiction.Detector

	mode        Mode
	closedWorld bool
	holographic bool

	theories *theoryStack
	batch    *batchLayer
	graphs   *graphRegistry
	hooks    *hookRegistry
	cache    *derivationCache

	commentPolicy dsl.CommentPolicy

	stats Stats
	log   *zap.Logger
}

// Config bundles the optional collaborators a Session is built from.
// Any nil field is defaulted.
type Config struct {
	Dimension     int
	Dims          *registry.DimensionRegistry
	Plugins       *registry.PluginRegistry
	CommentPolicy dsl.CommentPolicy
	CacheTTL      time.Duration
	Logger        *zap.Logger
}

// New builds a Session with a fresh vocabulary, concept arena, fact
// store, engine, and contradiction detector, wired together per §2's
// control-flow diagram.
func New(cfg Config) *Session {
	dim := cfg.Dimension
	if dim <= 0 {
		dim = hdc.DefaultDimension
	}
	voc := hdc.NewVocabulary(dim)
	arena := kb.NewConceptArena(voc)
	store := kb.NewStore(voc, arena)
	dims := cfg.Dims
	if dims == nil {
		dims = registry.Empty()
	}
	plugins := cfg.Plugins
	if plugins == nil {
		plugins = registry.NewPluginRegistry()
	}
	eng := engine.New(store, voc, arena, dims, plugins)
	det := contradiction.New(store)
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	log = log.With(zap.String("session_id", id))

	s := &Session{
		id:            id,
		Voc:           voc,
		Arena:         arena,
		Store:         store,
		Dims:          dims,
		Plugins:       plugins,
		Engine:        eng,
		Detector:      det,
		mode:          ModeLearning,
		theories:      newTheoryStack(),
		graphs:        newGraphRegistry(),
		hooks:         newHookRegistry(log),
		cache:         newDerivationCache(cfg.CacheTTL),
		commentPolicy: cfg.CommentPolicy,
		log:           log,
	}
	store.OnFactAdded(func(f *kb.Fact) {
		s.hooks.dispatch(HookFactAdded, f)
	})
	return s
}

// ID returns the session's unique identifier, assigned at creation and
// stable for its lifetime. Useful for correlating log lines and
// provenance records across a multi-session deployment.
func (s *Session) ID() string {
	return s.id
}

// SetMode switches between LEARNING and QUERY (§6 "session.set_mode").
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// GetMode reports the current mode (§6 "session.get_mode").
func (s *Session) GetMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetClosedWorld toggles the negation-as-failure gate used by every
// subsequent ask/prove call (§4.7.1, §9).
func (s *Session) SetClosedWorld(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closedWorld = v
}

// SetHolographic toggles the opt-in holographic fast path (§4.7 step
// 8) for subsequent ask/prove calls.
func (s *Session) SetHolographic(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holographic = v
}

// Stats returns a snapshot of the session's lifetime counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) optionsLocked(opts engine.Options) engine.Options {
	opts.ClosedWorld = opts.ClosedWorld || s.closedWorld
	opts.Holographic = opts.Holographic || s.holographic
	return opts.WithDefaults()
}

// Ask evaluates a read-only query and never mutates the store (§6
// "session.ask"). It enters QUERY mode for the duration of the call
// and restores the previous mode on return.
func (s *Session) Ask(operator string, args []string, opts engine.Options) engine.QueryResult {
	s.mu.Lock()
	prevMode := s.mode
	s.mode = ModeQuery
	opts = s.optionsLocked(opts)
	s.stats.Queries++
	s.mu.Unlock()

	if cached, ok := s.cache.getAsk(operator, args, s.Store.Version()); ok {
		s.mu.Lock()
		s.mode = prevMode
		s.mu.Unlock()
		return cached
	}
	result := s.Engine.Ask(operator, args, opts)
	s.cache.putAsk(operator, args, s.Store.Version(), result)

	s.mu.Lock()
	s.mode = prevMode
	s.mu.Unlock()
	return result
}

// Prove runs the backward-chaining prover against a goal (§6
// "session.prove"). Like Ask, it is read-only.
func (s *Session) Prove(operator string, args []string, opts engine.Options) engine.ProofResult {
	s.mu.Lock()
	prevMode := s.mode
	s.mode = ModeQuery
	opts = s.optionsLocked(opts)
	s.stats.Proofs++
	s.mu.Unlock()

	if cached, ok := s.cache.getProve(operator, args, s.Store.Version()); ok {
		s.mu.Lock()
		s.mode = prevMode
		s.mu.Unlock()
		return cached
	}
	result := s.Engine.Prove(operator, args, opts)
	s.cache.putProve(operator, args, s.Store.Version(), result)

	s.mu.Lock()
	s.mode = prevMode
	s.mu.Unlock()
	return result
}

// existenceUnset is a sentinel outside the valid [-127,127] existence
// range (int8 permits -128), used to distinguish "no explicit
// existence given" from the legitimate Possible=0 level (§6
// "session.learn ... forces UNPROVEN if no explicit variant").
const existenceUnset = kb.Existence(-128)

// LearnRequest describes one fact assertion (§6 "session.learn").
type LearnRequest struct {
	Operator   string
	Args       []string
	Existence  kb.Existence
	Negated    bool
	Provenance kb.Provenance
}

// Learn asserts a fact (§6 "session.learn": "forces UNPROVEN if no
// explicit variant"). It refuses to mutate outside LEARNING mode and
// refuses insertions that a hard contradiction check rejects,
// reporting ContradictionRejected in that case (§7).
func (s *Session) Learn(req LearnRequest) (*kb.Fact, error) {
	s.mu.Lock()
	if s.mode != ModeLearning {
		s.mu.Unlock()
		return nil, fmt.Errorf("session: cannot learn while in %s mode", s.mode)
	}
	if req.Existence == existenceUnset {
		req.Existence = kb.Unproven
	}
	s.mu.Unlock()

	if conflicts := s.Detector.WouldContradict(req.Operator, req.Args); len(conflicts) > 0 {
		s.mu.Lock()
		s.stats.Contradictions += len(conflicts)
		s.mu.Unlock()
		s.log.Info("learn rejected by contradiction check",
			zap.String("operator", req.Operator), zap.Strings("args", req.Args), zap.Int("conflicts", len(conflicts)))
		for _, c := range conflicts {
			s.hooks.dispatch(HookContradiction, c)
		}
		return nil, &ContradictionRejected{Operator: req.Operator, Args: req.Args, Conflicts: conflicts}
	}

	f, _, err := s.Store.AddFact(kb.AddFactRequest{
		Operator:   req.Operator,
		Args:       req.Args,
		Existence:  req.Existence,
		Negated:    req.Negated,
		Provenance: req.Provenance,
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.stats.FactsLearned++
	s.theories.trackFact(f)
	if s.batch != nil {
		s.batch.facts = append(s.batch.facts, f)
	}
	s.mu.Unlock()
	s.cache.invalidate()
	return f, nil
}

// Retract removes a fact (§7 corresponds to explicit RETRACT/FORGET).
func (s *Session) Retract(operator string, args []string) bool {
	s.mu.Lock()
	if s.mode != ModeLearning {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	ok := s.Store.Retract(operator, args)
	if ok {
		s.mu.Lock()
		s.stats.Retractions++
		s.mu.Unlock()
		s.cache.invalidate()
	}
	return ok
}

// SetExistence explicitly raises or lowers a triple's existence level
// (§3: "only explicit RETRACT/FORGET/SET_EXISTENCE" may lower it).
func (s *Session) SetExistence(operator string, args []string, e kb.Existence, prov kb.Provenance) (*kb.Fact, error) {
	f, err := s.Store.SetExistence(operator, args, e, prov)
	if err == nil {
		s.cache.invalidate()
	}
	return f, err
}

// ContradictionRejected reports that Learn refused an insertion
// because WouldContradict found a hard conflict (§7).
type ContradictionRejected struct {
	Operator  string
	Args      []string
	Conflicts []contradiction.Contradiction
}

func (e *ContradictionRejected) Error() string {
	return fmt.Sprintf("session: learning %s%v rejected: %d contradiction(s)", e.Operator, e.Args, len(e.Conflicts))
}
