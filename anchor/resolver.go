package anchor

import (
	"go.uber.org/zap"
)

// Resolver matches reference calls against a frozen registry.
type Resolver struct {
	reg *Registry
	log *zap.Logger

	resolved int
	broken   int
}

func NewResolver(reg *Registry, log *zap.Logger) *Resolver {
	if !reg.Frozen() {
		// this should never happen
		panic("resolving against unfrozen registry")
	}
	return &Resolver{reg: reg, log: log}
}

// Resolve fills in the call's resolution fields. Matching is attempted in
// order: exact final id, exact original id, fuzzy title containment. An
// unmatched call is marked broken and keeps its display text untouched.
func (r *Resolver) Resolve(call *ReferenceCall) {
	t := r.reg.ByID(call.TargetKey)
	if t == nil {
		t = r.reg.ByOriginalID(call.TargetKey)
	}
	if t == nil {
		t = r.reg.Fuzzy(call.TargetKey, call.File)
	}
	if t == nil {
		call.Broken = true
		r.broken++
		r.log.Warn("Unresolved reference",
			zap.String("key", call.TargetKey),
			zap.String("file", call.File),
			zap.Int("position", call.Position))
		return
	}

	call.Target = t
	call.ResolvedHref = Href(call.File, t.File, t.ID)
	r.resolved++
}

// ResolveAll resolves calls in order, preserving the input slice.
func (r *Resolver) ResolveAll(calls []*ReferenceCall) {
	for _, call := range calls {
		r.Resolve(call)
	}
}

func (r *Resolver) Resolved() int {
	return r.resolved
}

func (r *Resolver) Broken() int {
	return r.broken
}

// Href builds a link from one file to an id in another, dropping the file
// part for same-file references.
func Href(fromFile, toFile, id string) string {
	if fromFile == toFile {
		return "#" + id
	}
	return toFile + "#" + id
}
