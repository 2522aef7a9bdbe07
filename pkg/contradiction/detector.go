// Package contradiction is the Contradiction Detector (§4.8): on-demand
// checks for disjointness, functional-relation violations, taxonomic
// cycles, inherited disjointness, and cardinality constraints, plus a
// speculative would_contradict probe.
package contradiction

import (
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
	"golang.org/x/sync/errgroup"

	"github.com/sys2dsl/engine/pkg/kb"
)

// Kind enumerates the contradiction categories a Detector can report.
type Kind string

const (
	KindDisjointViolation    Kind = "DISJOINT_VIOLATION"
	KindFunctionalViolation  Kind = "FUNCTIONAL_VIOLATION"
	KindTaxonomicCycle       Kind = "TAXONOMIC_CYCLE"
	KindInheritedDisjoint    Kind = "INHERITED_DISJOINT"
	KindCardinalityViolation Kind = "CARDINALITY_VIOLATION"
	KindMutualExclusion      Kind = "MUTUAL_EXCLUSION"
)

// Contradiction names the causing facts and a human-readable
// resolution suggestion for one detected conflict.
type Contradiction struct {
	Kind       Kind
	Facts      []*kb.Fact
	Subject    string
	Detail     string
	Suggestion string
}

// CardinalityConstraint bounds how many distinct objects a
// (type|relation) key may have per subject (§4.8).
type CardinalityConstraint struct {
	Min int
	Max int
}

// defaultFunctionalRelations is the built-in functional-relation set
// (§4.8): a subject may have at most one object for these relations
// unless the objects are linked via EQUIVALENT_TO.
var defaultFunctionalRelations = map[string]bool{
	"BORN_IN":           true,
	"BIOLOGICAL_MOTHER": true,
	"BIOLOGICAL_FATHER": true,
}

// builtinDisjointPairs seeds a small biological/categorical disjoint
// list so the detector has useful coverage even without an
// application-supplied dimension document (§4.8).
var builtinDisjointPairs = [][2]string{
	{"ANIMAL", "PLANT"},
	{"LIVING", "NONLIVING"},
	{"MALE", "FEMALE"},
}

// Detector runs the on-demand checks of §4.8 against a Store. It
// holds no KB state of its own — every Check call re-derives its
// working set from the store's current facts, so a Detector can be
// shared across sessions.
type Detector struct {
	store               *kb.Store
	functionalRelations map[string]bool
	cardinality         map[string]CardinalityConstraint
	extraDisjoint       [][2]string
	mutualExclusions    map[string][][2]string
}

// New constructs a Detector over store with the built-in functional
// relation set and disjoint-pair list.
func New(store *kb.Store) *Detector {
	return &Detector{
		store:               store,
		functionalRelations: cloneRelationSet(defaultFunctionalRelations),
		cardinality:         make(map[string]CardinalityConstraint),
		mutualExclusions:    make(map[string][][2]string),
	}
}

func cloneRelationSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// SetFunctionalRelations replaces the functional-relation set.
func (d *Detector) SetFunctionalRelations(relations []string) {
	d.functionalRelations = make(map[string]bool, len(relations))
	for _, r := range relations {
		d.functionalRelations[r] = true
	}
}

// RegisterCardinality registers a (type|relation) -> {min,max} bound.
func (d *Detector) RegisterCardinality(key string, c CardinalityConstraint) {
	d.cardinality[key] = c
}

// RegisterDisjointPair adds an application-specific disjoint pair on
// top of the built-in list.
func (d *Detector) RegisterDisjointPair(a, b string) {
	d.extraDisjoint = append(d.extraDisjoint, [2]string{a, b})
}

// RegisterMutualExclusion declares that relation's values a and b can
// never both hold for the same subject (the DSL's `MUTUALLY_EXCLUSIVE
// relation a b` declaration, §4.8/§8 scenario 4) — e.g.
// MUTUALLY_EXCLUSIVE(hasState, Open, Closed) forbids a subject from
// having both hasState(_, Open) and hasState(_, Closed).
func (d *Detector) RegisterMutualExclusion(relation, a, b string) {
	d.mutualExclusions[relation] = append(d.mutualExclusions[relation], [2]string{a, b})
}

// normalizeLabel applies the case-insensitive, plural-tolerant
// normalization of §4.8: lowercase, then trim a trailing 's' when the
// label is longer than 3 characters and does not end in "ss".
func normalizeLabel(s string) string {
	s = strings.ToLower(s)
	if len(s) > 3 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") {
		s = s[:len(s)-1]
	}
	return s
}

// disjointPairs returns every disjoint pair known to the detector,
// normalized, from both DISJOINT_WITH facts in the KB and the
// built-in/registered lists.
func (d *Detector) disjointPairs() [][2]string {
	pairs := append([][2]string{}, builtinDisjointPairs...)
	pairs = append(pairs, d.extraDisjoint...)
	for _, f := range d.store.FactsByOperator("DISJOINT_WITH") {
		if f.Negated || len(f.Args) < 2 {
			continue
		}
		pairs = append(pairs, [2]string{f.Args[0], f.Args[1]})
	}
	return pairs
}

func disjointSet(pairs [][2]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	add := func(a, b string) {
		if out[a] == nil {
			out[a] = make(map[string]bool)
		}
		out[a][b] = true
	}
	for _, p := range pairs {
		a, b := normalizeLabel(p[0]), normalizeLabel(p[1])
		add(a, b)
		add(b, a)
	}
	return out
}

// isAOperators lists every IS_A variant the detector folds into one
// taxonomic relation.
var isAOperators = []string{"IS_A", "IS_A_CERTAIN", "IS_A_DEMONSTRATED", "IS_A_POSSIBLE", "IS_A_UNPROVEN"}

func isAOperator(op string) bool {
	for _, o := range isAOperators {
		if o == op {
			return true
		}
	}
	return false
}

// typesOf returns every IS_A target (direct, transitive) for entity,
// including IS_A variants, via a bounded BFS over IS_A facts. When
// candidate is non-nil and names an IS_A edge rooted at a node reached
// during the walk, it is folded in as if already stored — this is
// what lets WouldContradict (§4.8) reason about a fact that hasn't
// been inserted yet.
func (d *Detector) typesOf(entity string, candidate *kb.Fact) []string {
	visited := map[string]bool{entity: true}
	queue := []string{entity}
	var types []string
	for hops := 0; len(queue) > 0 && hops < 32; hops++ {
		var next []string
		for _, node := range queue {
			for _, op := range isAOperators {
				for _, f := range d.store.FactsByOperatorArg0(op, node) {
					if f.Negated || len(f.Args) < 2 {
						continue
					}
					t := f.Args[1]
					types = append(types, t)
					if !visited[t] {
						visited[t] = true
						next = append(next, t)
					}
				}
			}
			if candidate != nil && !candidate.Negated && isAOperator(candidate.Operator) &&
				len(candidate.Args) >= 2 && candidate.Args[0] == node {
				t := candidate.Args[1]
				types = append(types, t)
				if !visited[t] {
					visited[t] = true
					next = append(next, t)
				}
			}
		}
		queue = next
	}
	return types
}

// CheckDisjointness implements §4.8's primary disjointness check:
// for every entity E with E IS_A A and E IS_A B where A and B are
// disjoint, report a DISJOINT_VIOLATION.
func (d *Detector) CheckDisjointness() []Contradiction {
	return d.checkDisjointness(nil)
}

// checkDisjointness is CheckDisjointness with an optional hypothetical
// candidate fact folded into the per-entity type walk (typesOf), so a
// not-yet-inserted IS_A fact can be checked against the store's
// existing facts before it is ever committed (§4.8's would_contradict
// probe).
func (d *Detector) checkDisjointness(candidate *kb.Fact) []Contradiction {
	disjoint := disjointSet(d.disjointPairs())
	var out []Contradiction
	seen := map[string]bool{}
	check := func(entity string) {
		if seen[entity] {
			return
		}
		seen[entity] = true
		types := d.typesOf(entity, candidate)
		for i := 0; i < len(types); i++ {
			for j := i + 1; j < len(types); j++ {
				a, b := normalizeLabel(types[i]), normalizeLabel(types[j])
				if disjoint[a][b] {
					out = append(out, Contradiction{
						Kind:       KindDisjointViolation,
						Subject:    entity,
						Detail:     entity + " IS_A " + types[i] + " and " + types[j] + ", which are disjoint",
						Suggestion: "retract one of the conflicting IS_A facts, or remove the DISJOINT_WITH pair",
					})
				}
			}
		}
	}
	for _, f := range d.store.AllFacts() {
		if len(f.Args) == 0 {
			continue
		}
		check(f.Args[0])
	}
	if candidate != nil && len(candidate.Args) > 0 {
		check(candidate.Args[0])
	}
	return out
}

// CheckFunctionalViolations implements §4.8's functional-relation
// check: for each relation in the functional set, multiple distinct
// objects per subject is an error unless linked via EQUIVALENT_TO.
func (d *Detector) CheckFunctionalViolations() []Contradiction {
	return d.checkFunctionalViolations(nil)
}

// checkFunctionalViolations is CheckFunctionalViolations with an
// optional hypothetical candidate fact folded into the subject's
// value set for its relation, so Learn can reject a second functional
// value before it is ever committed (§4.8).
func (d *Detector) checkFunctionalViolations(candidate *kb.Fact) []Contradiction {
	var out []Contradiction
	relations := make([]string, 0, len(d.functionalRelations))
	for rel := range d.functionalRelations {
		relations = append(relations, rel)
	}
	sort.Strings(relations)
	for _, rel := range relations {
		bySubject := make(map[string][]*kb.Fact)
		for _, f := range d.store.FactsByOperator(rel) {
			if f.Negated || len(f.Args) < 2 {
				continue
			}
			bySubject[f.Args[0]] = append(bySubject[f.Args[0]], f)
		}
		if candidate != nil && !candidate.Negated && candidate.Operator == rel && len(candidate.Args) >= 2 {
			bySubject[candidate.Args[0]] = append(bySubject[candidate.Args[0]], candidate)
		}
		subjects := make([]string, 0, len(bySubject))
		for subject := range bySubject {
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)
		for _, subject := range subjects {
			facts := bySubject[subject]
			for i := 0; i < len(facts); i++ {
				for j := i + 1; j < len(facts); j++ {
					oi, oj := facts[i].Args[1], facts[j].Args[1]
					if oi == oj || d.equivalentTo(oi, oj) {
						continue
					}
					out = append(out, Contradiction{
						Kind:       KindFunctionalViolation,
						Facts:      []*kb.Fact{facts[i], facts[j]},
						Subject:    subject,
						Detail:     subject + " has conflicting " + rel + " values " + oi + " and " + oj,
						Suggestion: "retract one value or assert EQUIVALENT_TO(" + oi + ", " + oj + ")",
					})
				}
			}
		}
	}
	return out
}

func (d *Detector) equivalentTo(a, b string) bool {
	for _, f := range d.store.FactsByOperatorArg0("EQUIVALENT_TO", a) {
		if !f.Negated && len(f.Args) >= 2 && f.Args[1] == b {
			return true
		}
	}
	for _, f := range d.store.FactsByOperatorArg0("EQUIVALENT_TO", b) {
		if !f.Negated && len(f.Args) >= 2 && f.Args[1] == a {
			return true
		}
	}
	return false
}

// CheckMutualExclusion implements the MUTUALLY_EXCLUSIVE declaration
// (§4.8/§8 scenario 4): for each relation with a registered exclusive
// pair, two facts on the same subject carrying those two values is a
// MUTUAL_EXCLUSION contradiction.
func (d *Detector) CheckMutualExclusion() []Contradiction {
	return d.checkMutualExclusion(nil)
}

func (d *Detector) checkMutualExclusion(candidate *kb.Fact) []Contradiction {
	var out []Contradiction
	relations := make([]string, 0, len(d.mutualExclusions))
	for rel := range d.mutualExclusions {
		relations = append(relations, rel)
	}
	sort.Strings(relations)
	for _, rel := range relations {
		pairs := d.mutualExclusions[rel]
		bySubject := make(map[string][]*kb.Fact)
		for _, f := range d.store.FactsByOperator(rel) {
			if f.Negated || len(f.Args) < 2 {
				continue
			}
			bySubject[f.Args[0]] = append(bySubject[f.Args[0]], f)
		}
		if candidate != nil && !candidate.Negated && candidate.Operator == rel && len(candidate.Args) >= 2 {
			bySubject[candidate.Args[0]] = append(bySubject[candidate.Args[0]], candidate)
		}
		subjects := make([]string, 0, len(bySubject))
		for subject := range bySubject {
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)
		for _, subject := range subjects {
			facts := bySubject[subject]
			for i := 0; i < len(facts); i++ {
				for j := i + 1; j < len(facts); j++ {
					vi, vj := facts[i].Args[1], facts[j].Args[1]
					if vi == vj {
						continue
					}
					for _, p := range pairs {
						if (p[0] == vi && p[1] == vj) || (p[0] == vj && p[1] == vi) {
							out = append(out, Contradiction{
								Kind:       KindMutualExclusion,
								Facts:      []*kb.Fact{facts[i], facts[j]},
								Subject:    subject,
								Detail:     subject + " has mutually exclusive " + rel + " values " + vi + " and " + vj,
								Suggestion: "retract one of the conflicting " + rel + " facts",
							})
						}
					}
				}
			}
		}
	}
	return out
}

// CheckTaxonomicCycles builds the IS_A graph (including variants) and
// reports any cycle via a three-color DFS. lvlath's dfs.DFS collapses
// the visiting/visited distinction into a single boolean, which can't
// surface a back edge to an in-progress ancestor, so the coloring walk
// is implemented directly here; the graph itself is still lvlath's
// core.Graph, and dfs.DFS is used by VerifyAcyclic for the common case
// where only an acyclicity boolean (not the cycle path) is needed.
func (d *Detector) CheckTaxonomicCycles() []Contradiction {
	g, edgeFacts := d.buildIsAGraph()
	color := make(map[string]int) // 0=white, 1=gray, 2=black
	var out []Contradiction
	var stack []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = 1
		stack = append(stack, id)
		neighbors, err := g.Neighbors(id)
		if err == nil {
			for _, e := range neighbors {
				switch color[e.To] {
				case 0:
					if visit(e.To) {
						return true
					}
				case 1:
					out = append(out, Contradiction{
						Kind:       KindTaxonomicCycle,
						Facts:      edgeFacts[id+"\x00"+e.To],
						Subject:    id,
						Detail:     "IS_A cycle detected through " + strings.Join(append(append([]string{}, stack...), e.To), " -> "),
						Suggestion: "retract one IS_A edge in the cycle",
					})
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = 2
		return false
	}

	for _, id := range g.Vertices() {
		if color[id] == 0 {
			if visit(id) {
				break
			}
		}
	}
	return out
}

func (d *Detector) buildIsAGraph() (*core.Graph, map[string][]*kb.Fact) {
	g := core.NewGraph(core.WithDirected(true))
	edgeFacts := make(map[string][]*kb.Fact)
	for _, op := range isAOperators {
		for _, f := range d.store.FactsByOperator(op) {
			if f.Negated || len(f.Args) < 2 {
				continue
			}
			from, to := f.Args[0], f.Args[1]
			if !g.HasVertex(from) {
				_ = g.AddVertex(from)
			}
			if !g.HasVertex(to) {
				_ = g.AddVertex(to)
			}
			_, _ = g.AddEdge(from, to, 0)
			key := from + "\x00" + to
			edgeFacts[key] = append(edgeFacts[key], f)
		}
	}
	return g, edgeFacts
}

// VerifyAcyclic is a cheaper existence check reusing lvlath's dfs.DFS
// directly: it reports only whether the IS_A graph is fully
// traversable from every root without hitting the library's own
// neighbor-skip-on-revisit, which is sufficient to confirm the common
// non-cyclic case without building the custom coloring walk above.
func (d *Detector) VerifyAcyclic() (bool, error) {
	g, _ := d.buildIsAGraph()
	for _, id := range g.Vertices() {
		if _, err := dfs.DFS(g, id, dfs.WithFullTraversal()); err != nil {
			return false, err
		}
	}
	return len(d.CheckTaxonomicCycles()) == 0, nil
}

// CheckInheritedDisjointness implements §4.8: if descendants of two
// disjoint ancestors intersect (i.e. some entity IS_A both, via
// inheritance rather than a direct pair), report it. This subsumes
// into CheckDisjointness's transitive typesOf walk, so it is exposed
// as a thin alias for callers that want the distinct category name.
func (d *Detector) CheckInheritedDisjointness() []Contradiction {
	violations := d.CheckDisjointness()
	out := make([]Contradiction, 0, len(violations))
	for _, v := range violations {
		v.Kind = KindInheritedDisjoint
		out = append(out, v)
	}
	return out
}

// CheckCardinality implements §4.8's registered (type|relation) ->
// {min,max} constraint check.
func (d *Detector) CheckCardinality() []Contradiction {
	return d.checkCardinality(nil)
}

// checkCardinality is CheckCardinality with an optional hypothetical
// candidate fact folded into its relation's subject count, so a new
// fact that would push a subject over a registered maximum is caught
// before it is committed (§4.8).
func (d *Detector) checkCardinality(candidate *kb.Fact) []Contradiction {
	var out []Contradiction
	keys := make([]string, 0, len(d.cardinality))
	for key := range d.cardinality {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		constraint := d.cardinality[key]
		counts := make(map[string]int)
		for _, f := range d.store.FactsByOperator(key) {
			if f.Negated || len(f.Args) == 0 {
				continue
			}
			counts[f.Args[0]]++
		}
		if candidate != nil && !candidate.Negated && candidate.Operator == key && len(candidate.Args) > 0 {
			counts[candidate.Args[0]]++
		}
		subjects := make([]string, 0, len(counts))
		for subject := range counts {
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)
		for _, subject := range subjects {
			n := counts[subject]
			if constraint.Max > 0 && n > constraint.Max {
				out = append(out, Contradiction{
					Kind:       KindCardinalityViolation,
					Subject:    subject,
					Detail:     subject + " has " + strconv.Itoa(n) + " " + key + " facts, exceeding max " + strconv.Itoa(constraint.Max),
					Suggestion: "retract excess facts or raise the registered maximum",
				})
			}
			if constraint.Min > 0 && n < constraint.Min {
				out = append(out, Contradiction{
					Kind:       KindCardinalityViolation,
					Subject:    subject,
					Detail:     subject + " has " + strconv.Itoa(n) + " " + key + " facts, below min " + strconv.Itoa(constraint.Min),
					Suggestion: "assert additional facts to satisfy the registered minimum",
				})
			}
		}
	}
	return out
}

// CheckAll runs every check concurrently — each is a read-only scan
// over the store, independent of the others — and concatenates their
// results in a fixed order so the combined output does not depend on
// goroutine completion order (§5's determinism requirement binds the
// overall result, not the internal scheduling).
func (d *Detector) CheckAll() []Contradiction {
	return d.checkAll(nil)
}

// checkAll is CheckAll with an optional hypothetical candidate fact
// folded into every check that can reason about one (disjointness,
// functional violations, mutual exclusion, cardinality); taxonomic
// cycles are checked against the stored IS_A graph only, so a cycle
// that the candidate IS_A edge would close is not reported.
func (d *Detector) checkAll(candidate *kb.Fact) []Contradiction {
	results := make([][]Contradiction, 5)
	var g errgroup.Group
	g.Go(func() error { results[0] = d.checkDisjointness(candidate); return nil })
	g.Go(func() error { results[1] = d.checkFunctionalViolations(candidate); return nil })
	g.Go(func() error { results[2] = d.CheckTaxonomicCycles(); return nil })
	g.Go(func() error { results[3] = d.checkCardinality(candidate); return nil })
	g.Go(func() error { results[4] = d.checkMutualExclusion(candidate); return nil })
	_ = g.Wait()

	var out []Contradiction
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// WouldContradict performs the speculative check of §4.8: candidate is
// folded hypothetically into the disjointness, functional-relation,
// mutual-exclusion, and cardinality checks — without mutating the
// store — so a conflict it would cause is visible even though it has
// never been inserted (this is what lets Learn reject a genuinely new
// conflict instead of only ones the store already contains). The
// result is narrowed to contradictions touching candidate's subject,
// since unrelated pre-existing conflicts elsewhere in the store were
// not caused by this candidate and should not block it.
func (d *Detector) WouldContradict(candidateOperator string, candidateArgs []string) []Contradiction {
	candidate := &kb.Fact{Operator: candidateOperator, Args: candidateArgs}
	all := d.checkAll(candidate)
	var out []Contradiction
	subject := ""
	if len(candidateArgs) > 0 {
		subject = candidateArgs[0]
	}
	for _, c := range all {
		switch c.Kind {
		case KindDisjointViolation, KindInheritedDisjoint:
			if c.Subject == subject {
				out = append(out, c)
			}
		case KindFunctionalViolation:
			if c.Subject == subject && d.functionalRelations[candidateOperator] {
				out = append(out, c)
			}
		default:
			if c.Subject == subject {
				out = append(out, c)
			}
		}
	}
	return out
}
