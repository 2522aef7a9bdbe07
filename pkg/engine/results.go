package engine

import "github.com/sys2dsl/engine/pkg/kb"

// QuerySource enumerates how an ask() result was established (§6).
type QuerySource string

const (
	SourceDirect   QuerySource = "direct"
	SourceDerived  QuerySource = "derived"
	SourceInherited QuerySource = "inherited"
)

// QueryStatus enumerates the negative outcomes ask() can report.
type QueryStatus string

const (
	StatusImpossible QueryStatus = "IMPOSSIBLE"
	StatusUnknown    QueryStatus = "UNKNOWN"
	StatusParseError QueryStatus = "PARSE_ERROR"
)

// Conflict names the two facts that make a query impossible (§4.7
// step 5).
type Conflict struct {
	A *kb.Fact
	B *kb.Fact
}

// QueryResult is the read-only result of Engine.Ask (§6).
type QueryResult struct {
	Found       bool
	Existence   kb.Existence
	Status      QueryStatus
	Source      QuerySource
	Chain       []*kb.Fact
	Conflicts   []Conflict
	Explanation string
}

// ProofResult is the result of Engine.Prove (§6).
type ProofResult struct {
	Valid      bool
	Confidence float64
	Steps      []Step
	Method     string
	Depth      int
	Reason     FailureReason
}

// Confidence constants used throughout the prover (§9: "the numeric
// floor [for holographic validation] is left to calibration" — these
// are the ones the spec pins down by behavior: an exact KB match is
// maximal confidence, Or branches decay, rule chaining inherits its
// condition's confidence).
const (
	ConfidenceDirectMatch = 1.0
	ConfidenceDecay       = 0.9
)
