package session

import (
	"fmt"
	"sync"

	"github.com/sys2dsl/engine/pkg/dsl"
)

// graphRegistry holds parsed `graph`/`macro` blocks by name (§4.5
// glossary "Graph (macro)"): a composite operation built from a body
// of statements and an optional trailing `return` expression.
type graphRegistry struct {
	mu     sync.Mutex
	macros map[string]*dsl.GraphDeclaration
}

func newGraphRegistry() *graphRegistry {
	return &graphRegistry{macros: make(map[string]*dsl.GraphDeclaration)}
}

func (g *graphRegistry) register(decl *dsl.GraphDeclaration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.macros[decl.Name] = decl
}

func (g *graphRegistry) lookup(name string) (*dsl.GraphDeclaration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	decl, ok := g.macros[name]
	return decl, ok
}

// invokeGraph runs a registered graph/macro body with its parameters
// bound to the caller's argument tokens, executing each body
// statement against a child execution scope, then resolving the
// trailing `return` expression (if any) as the call's result token.
func (s *Session) invokeGraph(decl *dsl.GraphDeclaration, args []string, parent *execContext, result *ExecutionResult) (string, error) {
	if len(args) != len(decl.Params) {
		return "", fmt.Errorf("session: graph %q expects %d argument(s), got %d", decl.Name, len(decl.Params), len(args))
	}
	local := newExecContext(parent)
	for i, p := range decl.Params {
		local.set(p, Binding{Value: args[i]})
	}
	for _, stmt := range decl.Body {
		if err := s.execStatement(stmt, local, result); err != nil {
			return "", err
		}
	}
	if decl.Return == nil {
		return "", nil
	}
	return s.resolveArgToken(decl.Return, local), nil
}
