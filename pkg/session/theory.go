package session

import "github.com/sys2dsl/engine/pkg/kb"

// theoryLayer is one entry of the LIFO theory/context stack (§3):
// a scope of facts and rules that can be pushed and later popped as a
// unit.
type theoryLayer struct {
	name  string
	facts []*kb.Fact
	rules []string
}

// theoryStack tracks the active nesting of pushed theories. The
// active layer (top of stack) is where newly learned facts and rules
// are recorded so a later pop can retract exactly what that layer
// introduced.
type theoryStack struct {
	layers []*theoryLayer
}

func newTheoryStack() *theoryStack {
	return &theoryStack{}
}

// push opens a new named layer (§6 "session.push_theory").
func (t *theoryStack) push(name string) {
	t.layers = append(t.layers, &theoryLayer{name: name})
}

// pop closes the top layer and returns it, or nil if the stack is
// empty (§6 "session.pop_theory").
func (t *theoryStack) pop() *theoryLayer {
	if len(t.layers) == 0 {
		return nil
	}
	top := t.layers[len(t.layers)-1]
	t.layers = t.layers[:len(t.layers)-1]
	return top
}

func (t *theoryStack) active() *theoryLayer {
	if len(t.layers) == 0 {
		return nil
	}
	return t.layers[len(t.layers)-1]
}

func (t *theoryStack) depth() int { return len(t.layers) }

// trackFact records a newly learned fact against the active layer, if
// any, so it can be retracted when that layer is popped.
func (t *theoryStack) trackFact(f *kb.Fact) {
	if l := t.active(); l != nil {
		l.facts = append(l.facts, f)
	}
}

// trackRule records a newly added rule's name against the active
// layer.
func (t *theoryStack) trackRule(name string) {
	if l := t.active(); l != nil {
		l.rules = append(l.rules, name)
	}
}

// PushTheory opens a new named theory layer; facts and rules learned
// until the matching PopTheory are scoped to it (§3, §6).
func (s *Session) PushTheory(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theories.push(name)
}

// PopTheory closes the most recently pushed theory layer, retracting
// every fact and removing every rule it introduced. It reports the
// popped layer's name, or "" if the stack was empty.
func (s *Session) PopTheory() string {
	s.mu.Lock()
	layer := s.theories.pop()
	s.mu.Unlock()
	if layer == nil {
		return ""
	}
	for _, f := range layer.facts {
		s.Store.Retract(f.Operator, f.Args)
	}
	for _, name := range layer.rules {
		s.Engine.RemoveRule(name)
	}
	s.cache.invalidate()
	return layer.name
}

// TheoryDepth reports how many theory layers are currently pushed.
func (s *Session) TheoryDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theories.depth()
}
