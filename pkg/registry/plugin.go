package registry

import "context"

// Truth is the five-valued verdict a computable-relation plugin
// returns (§4.4).
type Truth int

const (
	TruthUnknown Truth = iota
	TruthTrueCertain
	TruthTrueLikely
	TruthFalseLikely
	TruthFalse
)

func (t Truth) String() string {
	switch t {
	case TruthTrueCertain:
		return "TRUE_CERTAIN"
	case TruthTrueLikely:
		return "TRUE_LIKELY"
	case TruthFalseLikely:
		return "FALSE_LIKELY"
	case TruthFalse:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Verdict is the result of evaluating a computable relation.
type Verdict struct {
	Truth      Truth
	Confidence float64 // [0,1]
	Value      interface{}
	Unit       string
	Reason     string
	Error      error
}

// Plugin is the thin capability contract the engine evaluates against
// when a relation is marked `computable` in the Dimension Registry.
// Concrete plugins (math, physics, logic, datetime) are out of scope
// for this module (§1) — only the contract lives here.
type Plugin interface {
	// Name identifies the plugin for registration and diagnostics.
	Name() string
	// Evaluate computes a verdict for relation(subject, object). A
	// plugin that fails must return Verdict{Truth: TruthUnknown,
	// Error: err} rather than propagating the error — the engine must
	// be able to continue reasoning about other relations (§4.4, §7).
	Evaluate(ctx context.Context, relation, subject, object string) Verdict
}

// PluginRegistry maps plugin names to registered Plugin instances.
type PluginRegistry struct {
	plugins map[string]Plugin
}

// NewPluginRegistry returns an empty plugin registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{plugins: make(map[string]Plugin)}
}

// Register adds (or replaces) a plugin under its own Name().
func (pr *PluginRegistry) Register(p Plugin) {
	pr.plugins[p.Name()] = p
}

// Evaluate looks up the plugin named pluginName and evaluates
// relation(subject, object). If the plugin is not registered, or it
// panics/errors, the result degrades to TruthUnknown rather than
// aborting the caller's proof attempt.
func (pr *PluginRegistry) Evaluate(ctx context.Context, pluginName, relation, subject, object string) (result Verdict) {
	defer func() {
		if r := recover(); r != nil {
			result = Verdict{Truth: TruthUnknown, Error: errPluginPanic(pluginName, r)}
		}
	}()
	p, ok := pr.plugins[pluginName]
	if !ok {
		return Verdict{Truth: TruthUnknown, Error: errPluginNotFound(pluginName)}
	}
	return p.Evaluate(ctx, relation, subject, object)
}
