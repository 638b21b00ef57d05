// Package typemodel contains the semantic representation of type references
// used by the codec compiler: named types, parameterized types, type
// variables, and wildcards, each carrying its own nullability flag.
package typemodel

import (
	"strings"
)

// Kind discriminates the variants of a TypeRef.
type Kind int

const (
	// KindNamed is a plain named type reference, e.g. "String" or "pkg.User".
	KindNamed Kind = iota

	// KindParameterized is a generic type application, e.g. "List<String>".
	KindParameterized

	// KindTypeVar is a reference to a generic type variable, e.g. "T".
	KindTypeVar

	// KindWildcard is a variance-projected type argument with a single bound.
	KindWildcard
)

// BoundKind describes the direction of a wildcard bound.
type BoundKind int

const (
	// UpperBound means the wildcard accepts the bound or any subtype of it.
	UpperBound BoundKind = iota

	// LowerBound means the wildcard accepts the bound or any supertype of it.
	LowerBound
)

// TypeRef is a structural type reference. The zero value is not meaningful;
// use the constructor functions. TypeRefs are treated as immutable values:
// modifiers like AsNullable return copies.
type TypeRef struct {
	Kind Kind

	// Name is the qualified name for Named and Parameterized (the raw type),
	// or the variable name for TypeVar. Empty for Wildcard.
	Name string

	// Args holds the type arguments of a Parameterized reference.
	Args []TypeRef

	// Bounds holds the bounds of a TypeVar, or exactly one entry for a
	// Wildcard.
	Bounds []TypeRef

	// Bound is the direction of a Wildcard's bound. Ignored otherwise.
	Bound BoundKind

	// Nullable is carried by every variant, not just leaves.
	Nullable bool
}

// Named creates a non-nullable named type reference.
func Named(qualifiedName string) TypeRef {
	return TypeRef{Kind: KindNamed, Name: qualifiedName}
}

// Parameterized creates a non-nullable generic type application.
func Parameterized(rawName string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: KindParameterized, Name: rawName, Args: args}
}

// TypeVar creates a non-nullable type variable reference.
func TypeVar(name string, bounds ...TypeRef) TypeRef {
	return TypeRef{Kind: KindTypeVar, Name: name, Bounds: bounds}
}

// Wildcard creates a non-nullable wildcard with a single bound.
func Wildcard(bound TypeRef, kind BoundKind) TypeRef {
	return TypeRef{Kind: KindWildcard, Bounds: []TypeRef{bound}, Bound: kind}
}

// AsNullable returns a copy of t with the nullability flag set.
func (t TypeRef) AsNullable() TypeRef {
	t.Nullable = true
	return t
}

// AsNonNull returns a copy of t with the nullability flag cleared.
func (t TypeRef) AsNonNull() TypeRef {
	t.Nullable = false
	return t
}

// RawName returns the lookup key of the reference with type arguments
// stripped: the qualified name for Named and Parameterized, the variable
// name for TypeVar, and the bound's raw name for Wildcard.
func (t TypeRef) RawName() string {
	if t.Kind == KindWildcard && len(t.Bounds) == 1 {
		return t.Bounds[0].RawName()
	}
	return t.Name
}

// SimpleName returns the last segment of the qualified name.
func (t TypeRef) SimpleName() string {
	raw := t.RawName()
	if i := strings.LastIndex(raw, "."); i >= 0 {
		return raw[i+1:]
	}
	return raw
}

// Equal reports structural equality, including nullability. Two references
// that differ only in alias spelling are not equal here; unalias both with a
// Resolver before comparing when alias identity matters.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Kind != o.Kind || t.Name != o.Name || t.Nullable != o.Nullable {
		return false
	}
	if t.Kind == KindWildcard && t.Bound != o.Bound {
		return false
	}
	if len(t.Args) != len(o.Args) || len(t.Bounds) != len(o.Bounds) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	for i := range t.Bounds {
		if !t.Bounds[i].Equal(o.Bounds[i]) {
			return false
		}
	}
	return true
}

// Key returns a canonical string encoding of the reference, usable as a map
// key. Structurally equal references produce identical keys.
func (t TypeRef) Key() string {
	var sb strings.Builder
	t.writeKey(&sb)
	return sb.String()
}

func (t TypeRef) writeKey(sb *strings.Builder) {
	switch t.Kind {
	case KindNamed:
		sb.WriteString(t.Name)
	case KindParameterized:
		sb.WriteString(t.Name)
		sb.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			a.writeKey(sb)
		}
		sb.WriteByte('>')
	case KindTypeVar:
		sb.WriteByte('$')
		sb.WriteString(t.Name)
		for _, b := range t.Bounds {
			sb.WriteByte(':')
			b.writeKey(sb)
		}
	case KindWildcard:
		if t.Bound == LowerBound {
			sb.WriteString("in ")
		} else {
			sb.WriteString("out ")
		}
		if len(t.Bounds) == 1 {
			t.Bounds[0].writeKey(sb)
		}
	}
	if t.Nullable {
		sb.WriteByte('?')
	}
}

// String renders the reference for diagnostics, e.g. "List<String?>?" or
// "out Number".
func (t TypeRef) String() string {
	var sb strings.Builder
	t.writeString(&sb)
	return sb.String()
}

func (t TypeRef) writeString(sb *strings.Builder) {
	switch t.Kind {
	case KindNamed, KindTypeVar:
		sb.WriteString(t.SimpleName())
	case KindParameterized:
		sb.WriteString(t.SimpleName())
		sb.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			a.writeString(sb)
		}
		sb.WriteByte('>')
	case KindWildcard:
		if t.Bound == LowerBound {
			sb.WriteString("in ")
		} else {
			sb.WriteString("out ")
		}
		if len(t.Bounds) == 1 {
			t.Bounds[0].writeString(sb)
		}
	}
	if t.Nullable {
		sb.WriteByte('?')
	}
}

// Substitute replaces type variables in t with their bindings. Nullability is
// ORed when unwrapping: a nullable variable bound to a non-nullable type
// still yields a nullable result.
func Substitute(t TypeRef, bindings map[string]TypeRef) TypeRef {
	switch t.Kind {
	case KindTypeVar:
		if bound, ok := bindings[t.Name]; ok {
			if t.Nullable {
				bound = bound.AsNullable()
			}
			return bound
		}
		return t
	case KindParameterized:
		args := make([]TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(a, bindings)
		}
		t.Args = args
		return t
	case KindWildcard:
		if len(t.Bounds) == 1 {
			t.Bounds = []TypeRef{Substitute(t.Bounds[0], bindings)}
		}
		return t
	default:
		return t
	}
}

// DelegateName renders a lowerCamel identifier fragment for the reference,
// used to derive readable delegate names: "string", "nullableInt",
// "listOfString", "nullableListOfNullableInt".
func DelegateName(t TypeRef) string {
	var sb strings.Builder
	writeDelegateName(&sb, t, true)
	return sb.String()
}

func writeDelegateName(sb *strings.Builder, t TypeRef, lowerFirst bool) {
	if t.Nullable {
		if lowerFirst {
			sb.WriteString("nullable")
		} else {
			sb.WriteString("Nullable")
		}
		lowerFirst = false
	}
	simple := t.SimpleName()
	if simple == "" {
		simple = "any"
	}
	if lowerFirst {
		sb.WriteString(strings.ToLower(simple[:1]) + simple[1:])
	} else {
		sb.WriteString(strings.ToUpper(simple[:1]) + simple[1:])
	}
	if t.Kind == KindParameterized {
		for _, a := range t.Args {
			sb.WriteString("Of")
			writeDelegateName(sb, a, false)
		}
	}
}
