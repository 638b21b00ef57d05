package descriptor

import (
	"strings"

	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// TargetParameter is one validated primary-constructor parameter. Created
// once when the descriptor is built; immutable thereafter.
type TargetParameter struct {
	Name           string
	Index          int // zero-based position in the primary constructor
	Type           typemodel.TypeRef
	HasDefault     bool
	DefaultLiteral any
	JSONName       string // explicit wire name, empty if unspecified
	Qualifiers     []typemodel.Qualifier
}

// TargetProperty is one validated property participating in codegen.
type TargetProperty struct {
	Name           string
	Type           typemodel.TypeRef
	JSONName       string
	HasDefault     bool
	DefaultLiteral any
	Transient      bool
	ParameterIndex int // -1 when not constructor-backed
	Settable       bool
	Visibility     Visibility
	Qualifiers     []typemodel.Qualifier
}

// ConstructorBacked reports whether the property is bound through the
// primary constructor.
func (p TargetProperty) ConstructorBacked() bool {
	return p.ParameterIndex >= 0
}

// TargetType is the validated descriptor for one target type. It is built
// once per codegen invocation and read-only afterward.
type TargetType struct {
	Name        string // qualified
	Visibility  Visibility
	IsDataClass bool
	TypeParams  []RawTypeParam

	// Params are the primary-constructor parameters in declaration order.
	Params []TargetParameter

	// Properties holds every codegen-relevant property, own declarations
	// first, then inherited, nearest declaration winning name collisions.
	Properties []TargetProperty
}

// SimpleName returns the last segment of the qualified type name.
func (t *TargetType) SimpleName() string {
	if i := strings.LastIndex(t.Name, "."); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

// Property returns the named property, or nil.
func (t *TargetType) Property(name string) *TargetProperty {
	for i := range t.Properties {
		if t.Properties[i].Name == name {
			return &t.Properties[i]
		}
	}
	return nil
}

// WireProperties returns the non-transient properties in declaration order.
func (t *TargetType) WireProperties() []TargetProperty {
	out := make([]TargetProperty, 0, len(t.Properties))
	for _, p := range t.Properties {
		if !p.Transient {
			out = append(out, p)
		}
	}
	return out
}
