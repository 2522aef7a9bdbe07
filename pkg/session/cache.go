package session

import (
	"strings"
	"sync"
	"time"

	"github.com/sys2dsl/engine/pkg/engine"
)

// defaultCacheTTL is used when a Config leaves CacheTTL unset. It
// bounds how long a derivation may be reused even if kbBundleVersion
// has not changed (§3 "derivation cache (TTL)").
const defaultCacheTTL = 30 * time.Second

type cachedAsk struct {
	result  engine.QueryResult
	version uint64
	expires time.Time
}

type cachedProve struct {
	result  engine.ProofResult
	version uint64
	expires time.Time
}

// derivationCache memoizes Ask/Prove outcomes keyed by (operator,
// args), invalidated either by a kbBundleVersion change or by TTL
// expiry, whichever comes first (§3, §5 "kbBundleVersion increments
// ... and invalidates the derivation cache").
type derivationCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	ask   map[string]cachedAsk
	prove map[string]cachedProve
}

func newDerivationCache(ttl time.Duration) *derivationCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &derivationCache{
		ttl:   ttl,
		ask:   make(map[string]cachedAsk),
		prove: make(map[string]cachedProve),
	}
}

func derivationKey(operator string, args []string) string {
	return operator + "\x00" + strings.Join(args, "\x00")
}

func (c *derivationCache) getAsk(operator string, args []string, version uint64) (engine.QueryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := derivationKey(operator, args)
	entry, ok := c.ask[key]
	if !ok || entry.version != version || time.Now().After(entry.expires) {
		if ok {
			delete(c.ask, key)
		}
		return engine.QueryResult{}, false
	}
	return entry.result, true
}

func (c *derivationCache) putAsk(operator string, args []string, version uint64, result engine.QueryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ask[derivationKey(operator, args)] = cachedAsk{result: result, version: version, expires: time.Now().Add(c.ttl)}
}

func (c *derivationCache) getProve(operator string, args []string, version uint64) (engine.ProofResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := derivationKey(operator, args)
	entry, ok := c.prove[key]
	if !ok || entry.version != version || time.Now().After(entry.expires) {
		if ok {
			delete(c.prove, key)
		}
		return engine.ProofResult{}, false
	}
	return entry.result, true
}

func (c *derivationCache) putProve(operator string, args []string, version uint64, result engine.ProofResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prove[derivationKey(operator, args)] = cachedProve{result: result, version: version, expires: time.Now().Add(c.ttl)}
}

// invalidate drops every cached derivation; called on any store
// mutation (learn, retract, set-existence, theory pop) so a stale
// result from before a kbBundleVersion bump is never served (§5).
func (c *derivationCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ask = make(map[string]cachedAsk)
	c.prove = make(map[string]cachedProve)
}
