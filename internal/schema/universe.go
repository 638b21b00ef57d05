package schema

import (
	"github.com/codecgen-platform/codecgen/internal/descriptor"
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// builtinScalars are the wire-level primitives; they are never qualified
// with the file's package name.
var builtinScalars = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"List":    true,
	"Any":     true,
}

// Universe is the lowered form of one parsed schema: raw type metadata for
// the descriptor builder, alias declarations for the type resolver,
// qualifier metadata, and default-value literals per type. It implements
// descriptor.Universe.
type Universe struct {
	meta       Metadata
	types      map[string]*descriptor.RawType
	order      []string
	aliases    []typemodel.Alias
	qualifiers map[string]descriptor.QualifierInfo
	defaults   map[string]map[string]any
}

// Lower converts a parsed schema into its universe.
func Lower(s *Schema) *Universe {
	u := &Universe{
		meta:       s.Meta,
		types:      make(map[string]*descriptor.RawType),
		qualifiers: make(map[string]descriptor.QualifierInfo),
		defaults:   make(map[string]map[string]any),
	}

	for _, alias := range s.Aliases {
		u.aliases = append(u.aliases, typemodel.Alias{
			Name:       u.qualify(alias.Name),
			Target:     u.qualifyRef(alias.Of),
			Qualifiers: alias.Qualifiers,
		})
	}

	for _, q := range s.Qualifiers {
		u.qualifiers[q.Name] = descriptor.QualifierInfo{
			Name:            q.Name,
			RuntimeRetained: true,
			TargetsField:    q.OnField,
		}
	}

	for i := range s.Types {
		raw := u.lowerType(&s.Types[i])
		u.types[raw.Name] = raw
		u.order = append(u.order, raw.Name)
	}

	return u
}

// Meta returns the file metadata.
func (u *Universe) Meta() Metadata {
	return u.meta
}

// Aliases returns the alias declarations for a typemodel.Resolver.
func (u *Universe) Aliases() []typemodel.Alias {
	return u.aliases
}

// TypeNames returns the qualified names of all class declarations in
// declaration order; these are the codec candidates.
func (u *Universe) TypeNames() []string {
	var out []string
	for _, name := range u.order {
		if u.types[name].Kind == descriptor.KindClass {
			out = append(out, name)
		}
	}
	return out
}

// LookupType implements descriptor.Universe.
func (u *Universe) LookupType(name string) (*descriptor.RawType, bool) {
	t, ok := u.types[name]
	return t, ok
}

// QualifierInfo implements descriptor.Universe.
func (u *Universe) QualifierInfo(name string) (descriptor.QualifierInfo, bool) {
	q, ok := u.qualifiers[name]
	return q, ok
}

// Defaults returns the declared default literals for one type, keyed by
// property name. The runtime's DefaultSource is built from this.
func (u *Universe) Defaults(typeName string) map[string]any {
	return u.defaults[typeName]
}

func (u *Universe) qualify(name string) string {
	if builtinScalars[name] || u.meta.Package == "" {
		return name
	}
	return u.meta.Package + "." + name
}

// qualifyRef rewrites user-defined names in a type reference to their
// package-qualified form.
func (u *Universe) qualifyRef(t typemodel.TypeRef) typemodel.TypeRef {
	switch t.Kind {
	case typemodel.KindNamed:
		t.Name = u.qualify(t.Name)
	case typemodel.KindParameterized:
		args := make([]typemodel.TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = u.qualifyRef(a)
		}
		t.Args = args
	}
	return t
}

func (u *Universe) lowerType(def *TypeDef) *descriptor.RawType {
	raw := &descriptor.RawType{
		Name:        u.qualify(def.Name),
		Visibility:  descriptor.Public,
		IsAbstract:  def.Abstract,
		IsSealed:    def.Sealed,
		IsDataClass: true,
	}
	switch def.Kind {
	case TypeKindInterface:
		raw.Kind = descriptor.KindInterface
	case TypeKindEnum:
		raw.Kind = descriptor.KindEnum
	default:
		raw.Kind = descriptor.KindClass
	}
	if def.Internal {
		raw.Visibility = descriptor.Internal
	}
	for _, base := range def.Extends {
		raw.Supertypes = append(raw.Supertypes, u.qualify(base))
	}

	defaults := make(map[string]any)
	ctor := &descriptor.RawConstructor{Visibility: raw.Visibility}
	for _, f := range def.Fields {
		visibility := descriptor.Public
		switch {
		case f.Private:
			visibility = descriptor.Private
		case f.Internal:
			visibility = descriptor.Internal
		}
		fieldType := u.qualifyRef(f.Type)

		raw.Properties = append(raw.Properties, descriptor.RawProperty{
			Name:           f.Name,
			Type:           fieldType,
			Visibility:     visibility,
			Mutable:        f.Settable,
			HasDefault:     f.HasDefault,
			DefaultLiteral: f.Default,
			JSONName:       f.WireName,
			Transient:      f.Transient,
			Qualifiers:     f.Qualifiers,
		})

		// Every non-settable field is a primary-constructor parameter.
		if !f.Settable {
			ctor.Params = append(ctor.Params, descriptor.RawParam{
				Name:           f.Name,
				Type:           fieldType,
				HasDefault:     f.HasDefault,
				DefaultLiteral: f.Default,
				Qualifiers:     f.Qualifiers,
			})
		}

		if f.HasDefault {
			defaults[f.Name] = f.Default
		}
	}
	if len(ctor.Params) > 0 || raw.Kind == descriptor.KindClass {
		raw.Constructor = ctor
	}
	if len(defaults) > 0 {
		u.defaults[raw.Name] = defaults
	}
	return raw
}
