package engine

import (
	"fmt"
	"sort"
	"sync"
)

// matchCacheCapacity bounds the compound-condition match cache
// (§4.7.1: "bounded to 5,000 entries (clear on overflow)").
const matchCacheCapacity = 5000

// matchCacheKey is the memoization key for a single compound-condition
// match attempt: (rule_id, depth, kb_version, rules_len, cwa_flag,
// max_depth, bindings_fingerprint) per §4.7.1 and §9.
type matchCacheKey struct {
	ruleID      string
	depth       int
	kbVersion   uint64
	rulesLen    int
	cwa         bool
	maxDepth    int
	bindingsFP  string
}

// matchCache is a bounded per-goal memoization table for compound
// condition proofs (§4.7.1 "memoization/tabling"). It is cleared
// wholesale on overflow rather than evicted piecewise, matching the
// spec's stated overflow policy and keeping the implementation free
// of LRU bookkeeping.
type matchCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[matchCacheKey][]Bindings
}

func newMatchCache(capacity int) *matchCache {
	if capacity <= 0 {
		capacity = matchCacheCapacity
	}
	return &matchCache{capacity: capacity, entries: make(map[matchCacheKey][]Bindings)}
}

func (c *matchCache) get(key matchCacheKey) ([]Bindings, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *matchCache) put(key matchCacheKey, results []Bindings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.capacity {
		c.entries = make(map[matchCacheKey][]Bindings)
	}
	c.entries[key] = results
}

// cachedMatches wraps findAllMatches with the §4.7.1 match cache,
// keyed by (rule_id, depth, kb_version, rules_len, cwa_flag, max_depth,
// bindings_fingerprint). Only used from within And's ordered
// backtracking, where the same (part, bindings) combination can
// recur across sibling branches.
func (e *Engine) cachedMatches(g *guard, operator string, args []string, b Bindings, depth int) []Bindings {
	key := matchCacheKey{
		ruleID:     g.ruleName + "\x00" + operator,
		depth:      depth,
		kbVersion:  e.store.Version(),
		rulesLen:   len(e.rules),
		cwa:        g.opts.ClosedWorld,
		maxDepth:   g.opts.MaxDepth,
		bindingsFP: bindingsFingerprint(b),
	}
	if cached, ok := e.cache.get(key); ok {
		return cached
	}
	matches := findAllMatches(e.store, operator, args, b)
	e.cache.put(key, matches)
	return matches
}

// bindingsFingerprint produces a stable, deterministic string key for
// a Bindings map (sorted by variable name so insertion order never
// affects the cache key, §4.7.2).
func bindingsFingerprint(b Bindings) string {
	if len(b) == 0 {
		return ""
	}
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	fp := ""
	for _, n := range names {
		fp += fmt.Sprintf("%s=%s;", n, b[n])
	}
	return fp
}
