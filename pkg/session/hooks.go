package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event names one of the four meta-relation hook points (§6 "Event
// hooks").
type Event string

const (
	HookFactAdded      Event = "on_fact_added"
	HookConceptCreated Event = "on_concept_created"
	HookReasoningStep  Event = "on_reasoning_step"
	HookContradiction  Event = "on_contradiction"
)

// hookTimeout bounds a single hook invocation (§6: "per-hook timeout
// = 10,000 ms").
const hookTimeout = 10 * time.Second

// HookFunc receives the event payload (a *kb.Fact for on_fact_added, a
// *kb.Concept for on_concept_created, an engine.Step for
// on_reasoning_step, a contradiction.Contradiction for
// on_contradiction). The session dispatches on_fact_added (from the
// store's fact-added hook) and on_contradiction (once per conflict
// when Learn rejects a fact); handlers registered for
// on_concept_created and on_reasoning_step are stored but never called.
type HookFunc func(payload interface{}) error

// HookError wraps a logged-but-swallowed hook failure (§6: "errors
// logged but other hooks continue").
type HookError struct {
	Event Event
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("session: hook for %s failed: %v", e.Event, e.Err)
}

// hookRegistry dispatches event hooks with the isolation contract of
// §6: while one dispatch is in flight, further dispatch is suppressed
// (no recursive hook-triggers-hook chains), writes a hook wants to
// make are buffered and only applied once dispatch completes, and a
// failing or timed-out hook never blocks its siblings.
type hookRegistry struct {
	mu          sync.Mutex
	handlers    map[Event][]HookFunc
	dispatching bool
	pending     []func()
	errLog      []HookError
	log         *zap.Logger
}

func newHookRegistry(log *zap.Logger) *hookRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &hookRegistry{handlers: make(map[Event][]HookFunc), log: log}
}

// On registers a handler for an event.
func (h *hookRegistry) On(ev Event, fn HookFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[ev] = append(h.handlers[ev], fn)
}

// deferWrite buffers a mutation a hook wants to perform; it runs once
// the current dispatch (and any nested attempt) has finished.
func (h *hookRegistry) deferWrite(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, fn)
}

// Errors returns and clears the logged hook failures.
func (h *hookRegistry) Errors() []HookError {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.errLog
	h.errLog = nil
	return out
}

func (h *hookRegistry) dispatch(ev Event, payload interface{}) {
	h.mu.Lock()
	if h.dispatching {
		// recursion suppressed: a fact added as a side effect of
		// another hook's dispatch does not re-enter (§6).
		h.mu.Unlock()
		return
	}
	handlers := append([]HookFunc(nil), h.handlers[ev]...)
	h.dispatching = true
	h.mu.Unlock()

	for _, fn := range handlers {
		runHookWithTimeout(ev, fn, payload, h)
	}

	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.dispatching = false
	h.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

func runHookWithTimeout(ev Event, fn HookFunc, payload interface{}, h *hookRegistry) {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("hook panic: %v", r)
				return
			}
		}()
		done <- fn(payload)
	}()

	select {
	case err := <-done:
		if err != nil {
			h.mu.Lock()
			h.errLog = append(h.errLog, HookError{Event: ev, Err: err})
			h.mu.Unlock()
			h.log.Warn("session hook failed", zap.String("event", string(ev)), zap.Error(err))
		}
	case <-time.After(hookTimeout):
		err := fmt.Errorf("timed out after %s", hookTimeout)
		h.mu.Lock()
		h.errLog = append(h.errLog, HookError{Event: ev, Err: err})
		h.mu.Unlock()
		h.log.Warn("session hook timed out", zap.String("event", string(ev)), zap.Duration("timeout", hookTimeout))
	}
}

// OnHook registers a handler for an event on the session's hook
// dispatcher (§6).
func (s *Session) OnHook(ev Event, fn HookFunc) {
	s.hooks.On(ev, fn)
}

// HookErrors drains the log of swallowed hook failures.
func (s *Session) HookErrors() []HookError {
	return s.hooks.Errors()
}
