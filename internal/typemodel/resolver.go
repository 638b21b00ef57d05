package typemodel

// Alias is a declared type alias: a name that expands to another type
// reference, optionally attaching qualifiers to every use of the alias.
type Alias struct {
	Name       string
	Target     TypeRef
	Qualifiers []Qualifier
}

// Resolver unwraps type aliases. Unwrapping is layered: an alias may expand
// to another alias, and every layer contributes its nullability (ORed) and
// its attached qualifiers (merged, outermost first).
type Resolver struct {
	aliases map[string]Alias
}

// NewResolver creates a resolver over the given alias declarations.
func NewResolver(aliases []Alias) *Resolver {
	m := make(map[string]Alias, len(aliases))
	for _, a := range aliases {
		m[a.Name] = a
	}
	return &Resolver{aliases: m}
}

// IsAlias reports whether name is a declared alias.
func (r *Resolver) IsAlias(name string) bool {
	_, ok := r.aliases[name]
	return ok
}

// Unalias fully unwraps t and returns the resolved reference together with
// the qualifiers collected from every alias layer. Nullability is ORed at
// each level: a non-nullable use of an alias whose target is nullable
// resolves nullable, and vice versa. Type arguments of parameterized
// references are unaliased recursively; qualifiers attached to aliases used
// as type arguments do not escape to the top level.
func (r *Resolver) Unalias(t TypeRef) (TypeRef, []Qualifier) {
	var collected []Qualifier
	seen := make(map[string]bool)
	for t.Kind == KindNamed {
		alias, ok := r.aliases[t.Name]
		if !ok || seen[t.Name] {
			break
		}
		seen[t.Name] = true
		collected = append(collected, alias.Qualifiers...)
		nullable := t.Nullable || alias.Target.Nullable
		t = alias.Target
		t.Nullable = nullable
	}
	if t.Kind == KindParameterized {
		args := make([]TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i], _ = r.Unalias(a)
		}
		t.Args = args
	}
	return t, collected
}
