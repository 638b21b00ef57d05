package schema

import (
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// Schema is the root of a parsed .codec.gql file
type Schema struct {
	Types      []TypeDef      `json:"types"`
	Aliases    []AliasDef     `json:"aliases"`
	Qualifiers []QualifierDef `json:"qualifiers"`
	Meta       Metadata       `json:"meta"`
}

// Metadata represents global metadata for the IDL file
type Metadata struct {
	Package string `json:"package"`
	Version string `json:"version"`
}

// TypeKind distinguishes the declaration shapes the IDL can express.
type TypeKind int

const (
	TypeKindClass TypeKind = iota
	TypeKindInterface
	TypeKindEnum
)

// TypeDef represents a top-level "type", "interface" or "enum" block
type TypeDef struct {
	Name     string   `json:"name"`
	Doc      string   `json:"doc"`
	Kind     TypeKind `json:"kind"`
	Abstract bool     `json:"abstract"`
	Sealed   bool     `json:"sealed"`
	Internal bool     `json:"internal"`
	Extends  []string `json:"extends,omitempty"`
	Fields   []Field  `json:"fields"`
}

// Field represents a field inside a type block
type Field struct {
	Name string            `json:"name"`
	Type typemodel.TypeRef `json:"type"`
	Doc  string            `json:"doc"`

	// WireName is the explicit @json(name:) override, empty if unset.
	WireName string `json:"wireName,omitempty"`

	// Settable marks a mutable property applied after construction rather
	// than a constructor parameter.
	Settable bool `json:"settable"`

	Transient  bool `json:"transient"`
	Private    bool `json:"private"`
	Internal   bool `json:"internal"`
	HasDefault bool `json:"hasDefault"`

	// Default is the parsed @default(value:) literal: string, int64,
	// float64, bool, or nil.
	Default any `json:"default,omitempty"`

	// Qualifiers holds the non-builtin directives attached to the field.
	Qualifiers []typemodel.Qualifier `json:"qualifiers,omitempty"`
}

// AliasDef represents a "scalar X @alias(of: ...)" declaration
type AliasDef struct {
	Name string            `json:"name"`
	Of   typemodel.TypeRef `json:"of"`

	// Qualifiers attached to the scalar declaration travel with every use
	// of the alias.
	Qualifiers []typemodel.Qualifier `json:"qualifiers,omitempty"`
}

// QualifierDef represents a "directive @x on FIELD_DEFINITION" declaration
type QualifierDef struct {
	Name string `json:"name"`

	// OnField is true when FIELD_DEFINITION is among the declared
	// locations.
	OnField bool `json:"onField"`
}
