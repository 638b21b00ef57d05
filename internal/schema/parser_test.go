package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

func TestParseSchema_BasicTypes(t *testing.T) {
	// Test plan:
	// - Parse object types with scalar, list, and nullable field types
	// - GraphQL "!" maps to non-nullable, bare types to nullable

	input := `
type User {
  id: String!
  age: Int
  scores: [Float!]!
  active: Boolean!
}`

	schema, err := ParseSchema(input)
	require.NoError(t, err)
	require.Len(t, schema.Types, 1)

	user := schema.Types[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, TypeKindClass, user.Kind)
	require.Len(t, user.Fields, 4)

	assert.True(t, user.Fields[0].Type.Equal(typemodel.Named("String")))
	assert.True(t, user.Fields[1].Type.Equal(typemodel.Named("Int").AsNullable()))
	assert.True(t, user.Fields[2].Type.Equal(
		typemodel.Parameterized("List", typemodel.Named("Float"))))
	assert.True(t, user.Fields[3].Type.Equal(typemodel.Named("Boolean")))
}

func TestParseSchema_Metadata(t *testing.T) {
	// Test: @codecgen file metadata is extracted
	input := `@codecgen(package: "model", version: "2")

type X {
  a: String!
}`

	schema, err := ParseSchema(input)
	require.NoError(t, err)
	assert.Equal(t, "model", schema.Meta.Package)
	assert.Equal(t, "2", schema.Meta.Version)
	// The synthetic _Schema type must not leak into the model.
	require.Len(t, schema.Types, 1)
	assert.Equal(t, "X", schema.Types[0].Name)
}

func TestParseSchema_FieldDirectives(t *testing.T) {
	// Test plan:
	// - @default literals keep their type: string, int, float, bool, null
	// - @json, @settable, @transient, @private are recognized
	// - Unknown directives become qualifiers with their arguments

	input := `
directive @sensitive on FIELD_DEFINITION

type Account {
  name: String! @default(value: "anon")
  retries: Int! @default(value: 3)
  ratio: Float! @default(value: 0.5)
  enabled: Boolean! @default(value: true)
  note: String @default(value: null)
  renamed: String! @json(name: "wire_name")
  nickname: String @settable
  scratch: String! @transient @default(value: "")
  secret: String! @private @default(value: "")
  token: String! @sensitive(level: "high")
}`

	schema, err := ParseSchema(input)
	require.NoError(t, err)
	require.Len(t, schema.Types, 1)
	fields := schema.Types[0].Fields
	require.Len(t, fields, 10)

	assert.True(t, fields[0].HasDefault)
	assert.Equal(t, "anon", fields[0].Default)
	assert.Equal(t, int64(3), fields[1].Default)
	assert.InDelta(t, 0.5, fields[2].Default, 1e-6)
	assert.Equal(t, true, fields[3].Default)
	assert.True(t, fields[4].HasDefault)
	assert.Nil(t, fields[4].Default)

	assert.Equal(t, "wire_name", fields[5].WireName)
	assert.True(t, fields[6].Settable)
	assert.True(t, fields[7].Transient)
	assert.True(t, fields[8].Private)

	require.Len(t, fields[9].Qualifiers, 1)
	q := fields[9].Qualifiers[0]
	assert.Equal(t, "sensitive", q.Name)
	require.Len(t, q.Args, 1)
	assert.Equal(t, "level", q.Args[0].Name)
	assert.Equal(t, "high", q.Args[0].Value)

	// Test: the directive definition is recorded as a qualifier type
	require.Len(t, schema.Qualifiers, 1)
	assert.Equal(t, "sensitive", schema.Qualifiers[0].Name)
	assert.True(t, schema.Qualifiers[0].OnField)
}

func TestParseSchema_Aliases(t *testing.T) {
	// Test plan:
	// - scalar with @alias declares a type alias
	// - extra directives on the scalar travel as alias qualifiers
	// - bare scalars declare nothing

	input := `
scalar FirstName @alias(of: "String")
scalar MaybeAge @alias(of: "Int?")
scalar Token @alias(of: "String") @sensitive
scalar Opaque
`

	schema, err := ParseSchema(input)
	require.NoError(t, err)
	require.Len(t, schema.Aliases, 3)

	assert.Equal(t, "FirstName", schema.Aliases[0].Name)
	assert.True(t, schema.Aliases[0].Of.Equal(typemodel.Named("String")))

	assert.True(t, schema.Aliases[1].Of.Equal(typemodel.Named("Int").AsNullable()))

	require.Len(t, schema.Aliases[2].Qualifiers, 1)
	assert.Equal(t, "sensitive", schema.Aliases[2].Qualifiers[0].Name)
}

func TestParseSchema_ExtendsAndMarkers(t *testing.T) {
	// Test: extends, @abstract and @internal type markers, interfaces and
	// enums are all represented
	input := `
type Base {
  id: String!
}

type Child extends Base {
  name: String!
}

type Ghost @abstract {
  x: String!
}

interface Marker {
  tag: String!
}

enum Color {
  RED
  GREEN
}`

	schema, err := ParseSchema(input)
	require.NoError(t, err)
	require.Len(t, schema.Types, 5)

	child := schema.Types[1]
	assert.Equal(t, []string{"Base"}, child.Extends)

	assert.True(t, schema.Types[2].Abstract)
	assert.Equal(t, TypeKindInterface, schema.Types[3].Kind)
	assert.Equal(t, TypeKindEnum, schema.Types[4].Kind)
}

func TestParseSchema_InvalidInput(t *testing.T) {
	// Test: unparseable input surfaces an error
	_, err := ParseSchema(`type {{{`)
	assert.Error(t, err)
}
