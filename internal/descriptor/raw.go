// Package descriptor builds validated target-type descriptors from raw,
// host-agnostic type metadata. The builder performs every schema-shape check
// and reports violations as diagnostics; downstream compilation stages can
// assume a returned TargetType is well formed.
package descriptor

import (
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// Visibility of a declaration, widest first.
type Visibility int

const (
	Public Visibility = iota
	Internal
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Internal:
		return "internal"
	case Protected:
		return "protected"
	default:
		return "private"
	}
}

// RawKind is the declaration kind of a raw type.
type RawKind int

const (
	KindClass RawKind = iota
	KindInterface
	KindEnum
	KindObject
)

func (k RawKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	default:
		return "object"
	}
}

// RawTypeParam is a generic type variable declared by a raw type.
type RawTypeParam struct {
	Name     string
	Variance typemodel.BoundKind
	Bounds   []typemodel.TypeRef
}

// RawParam is one primary-constructor parameter.
type RawParam struct {
	Name           string
	Type           typemodel.TypeRef
	HasDefault     bool
	DefaultLiteral any
	JSONName       string // explicit wire name, empty if unspecified
	Qualifiers     []typemodel.Qualifier
}

// RawConstructor is the primary constructor of a raw type. Params are in
// declaration order; their index is their position in this slice.
type RawConstructor struct {
	Visibility Visibility
	Params     []RawParam
}

// RawProperty is one declared property of a raw type.
type RawProperty struct {
	Name           string
	Type           typemodel.TypeRef
	Visibility     Visibility
	Mutable        bool
	HasDefault     bool
	DefaultLiteral any
	JSONName       string // explicit wire name, empty if unspecified
	Transient      bool
	Qualifiers     []typemodel.Qualifier
}

// RawType is the host-agnostic metadata for one candidate target type, as
// extracted by the host front-end.
type RawType struct {
	Name        string // qualified
	Kind        RawKind
	Visibility  Visibility
	IsAbstract  bool
	IsSealed    bool
	IsLocal     bool
	IsInner     bool
	IsDataClass bool
	TypeParams  []RawTypeParam
	Constructor *RawConstructor
	Properties  []RawProperty
	Supertypes  []string
}

// QualifierInfo is the host metadata for one qualifier annotation type.
type QualifierInfo struct {
	Name            string
	RuntimeRetained bool
	TargetsField    bool
}

// Universe resolves names the builder encounters while walking a type:
// supertypes and qualifier annotation metadata. The host front-end provides
// the implementation; tests can supply an in-memory one.
type Universe interface {
	// LookupType returns the raw metadata for a named type, or false when
	// the name is not expressible in this type system.
	LookupType(name string) (*RawType, bool)

	// QualifierInfo returns retention/target metadata for a qualifier
	// annotation, or false when the annotation is unknown.
	QualifierInfo(name string) (QualifierInfo, bool)
}
