package engine

// Bindings maps free-variable names (without the leading '?') to the
// concept labels they have been unified with. Bindings are
// persistent/immutable-by-clone: every branch of the prover extends a
// fresh copy rather than mutating a shared map, so backtracking never
// has to undo anything (§9: "persistent/immutable-by-clone maps; a
// fresh map per candidate branch").
type Bindings map[string]string

// Extend returns a new Bindings containing b's entries plus
// name->value, without mutating b.
func (b Bindings) Extend(name, value string) Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[name] = value
	return out
}

// Resolve substitutes a bound variable token (e.g. "?x") with its
// binding, or returns the token unchanged if it is not a variable or
// is not yet bound.
func (b Bindings) Resolve(token string) string {
	if !IsHole(token) {
		return token
	}
	if v, ok := b[HoleName(token)]; ok {
		return v
	}
	return token
}

// ResolveArgs resolves every token in args.
func (b Bindings) ResolveArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = b.Resolve(a)
	}
	return out
}

// Consistent reports whether binding name to value agrees with any
// existing binding for name.
func (b Bindings) Consistent(name, value string) bool {
	existing, ok := b[name]
	return !ok || existing == value
}

// Clone returns an independent copy of b.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
