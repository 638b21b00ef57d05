// Package delegate deduplicates the decoder/encoder delegates a codec needs.
// Two properties share one delegate exactly when their unaliased resolved
// types and qualifier sets are equal; delegate sharing is observable in the
// generated structure, not just an optimization.
package delegate

import (
	"fmt"

	"github.com/codecgen-platform/codecgen/internal/descriptor"
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// Key is the deduplication key for one delegate: the fully unaliased type
// plus the canonical qualifier-set key. Comparable and usable as a map key.
type Key struct {
	TypeKey      string
	QualifierKey string
}

// Handle is one allocated delegate. All properties sharing a Key reference
// the same Handle.
type Handle struct {
	// Name is the generated, collision-free identifier, e.g. "stringCodec"
	// or "nullableIntAtSensitiveCodec".
	Name string

	// Type is the unaliased resolved type the delegate handles.
	Type typemodel.TypeRef

	// Qualifiers is the qualifier set participating in the delegate's
	// identity, in first-seen order.
	Qualifiers []typemodel.Qualifier
}

// Key returns the handle's deduplication key.
func (h *Handle) Key() Key {
	return Key{
		TypeKey:      h.Type.Key(),
		QualifierKey: typemodel.QualifierSetKey(h.Qualifiers),
	}
}

// Resolution maps properties to their shared delegates. Handles are in
// first-use (declaration) order, which makes repeated compilations of the
// same descriptor produce identical output.
type Resolution struct {
	Handles    []*Handle
	byKey      map[Key]*Handle
	byProperty map[string]*Handle
}

// ForProperty returns the delegate assigned to the named property, or nil
// for properties that have none (transient).
func (r *Resolution) ForProperty(name string) *Handle {
	return r.byProperty[name]
}

// Resolve allocates one delegate per distinct (unaliased type, qualifier
// set) pair across the given properties. Properties are visited in
// declaration order and names are allocated deterministically, so two runs
// over the same descriptor yield the same handles in the same order.
func Resolve(resolver *typemodel.Resolver, props []descriptor.TargetProperty) *Resolution {
	res := &Resolution{
		byKey:      make(map[Key]*Handle),
		byProperty: make(map[string]*Handle),
	}
	taken := make(map[string]bool)

	for _, p := range props {
		if p.Transient {
			continue
		}
		unwrapped, aliasQuals := resolver.Unalias(p.Type)
		quals := mergeQualifiers(p.Qualifiers, aliasQuals)
		key := Key{
			TypeKey:      unwrapped.Key(),
			QualifierKey: typemodel.QualifierSetKey(quals),
		}
		if h, ok := res.byKey[key]; ok {
			res.byProperty[p.Name] = h
			continue
		}
		h := &Handle{
			Name:       allocateName(unwrapped, quals, taken),
			Type:       unwrapped,
			Qualifiers: quals,
		}
		res.byKey[key] = h
		res.byProperty[p.Name] = h
		res.Handles = append(res.Handles, h)
	}
	return res
}

// allocateName derives a readable identifier from the type and qualifier
// set, suffixing a counter on the rare collision of distinct keys with the
// same rendering.
func allocateName(t typemodel.TypeRef, quals []typemodel.Qualifier, taken map[string]bool) string {
	base := typemodel.DelegateName(t)
	for _, q := range quals {
		base += "At" + exported(q.SimpleName())
	}
	base += "Codec"

	name := base
	for i := 1; taken[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	taken[name] = true
	return name
}

func exported(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

func mergeQualifiers(a, b []typemodel.Qualifier) []typemodel.Qualifier {
	seen := make(map[string]bool, len(a))
	out := append([]typemodel.Qualifier(nil), a...)
	for _, q := range a {
		seen[q.Key()] = true
	}
	for _, q := range b {
		if !seen[q.Key()] {
			seen[q.Key()] = true
			out = append(out, q)
		}
	}
	return out
}
