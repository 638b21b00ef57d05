package delegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecgen-platform/codecgen/internal/descriptor"
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

func prop(name string, t typemodel.TypeRef, quals ...typemodel.Qualifier) descriptor.TargetProperty {
	return descriptor.TargetProperty{Name: name, JSONName: name, Type: t, ParameterIndex: -1, Qualifiers: quals}
}

func TestResolve_SharesByResolvedType(t *testing.T) {
	// Test plan:
	// - Two alias types expanding to the same resolved type share one
	//   delegate with the plain spelling of that type
	// - The firstName/lastName/plain-string trio compiles to exactly one
	//   string delegate

	resolver := typemodel.NewResolver([]typemodel.Alias{
		{Name: "FirstName", Target: typemodel.Named("String")},
		{Name: "LastName", Target: typemodel.Named("String")},
	})

	res := Resolve(resolver, []descriptor.TargetProperty{
		prop("firstName", typemodel.Named("FirstName")),
		prop("lastName", typemodel.Named("LastName")),
		prop("nickname", typemodel.Named("String")),
	})

	require.Len(t, res.Handles, 1)
	h := res.Handles[0]
	assert.Equal(t, "stringCodec", h.Name)
	assert.Same(t, h, res.ForProperty("firstName"))
	assert.Same(t, h, res.ForProperty("lastName"))
	assert.Same(t, h, res.ForProperty("nickname"))
}

func TestResolve_DistinctKeysGetDistinctHandles(t *testing.T) {
	// Test: different types, different nullability, and different qualifier
	// sets all split delegates
	sensitive := typemodel.Qualifier{Name: "q.Sensitive"}
	resolver := typemodel.NewResolver(nil)

	res := Resolve(resolver, []descriptor.TargetProperty{
		prop("a", typemodel.Named("String")),
		prop("b", typemodel.Named("String").AsNullable()),
		prop("c", typemodel.Named("Int")),
		prop("d", typemodel.Named("String"), sensitive),
		prop("e", typemodel.Named("String"), sensitive),
	})

	require.Len(t, res.Handles, 4)
	assert.Equal(t, "stringCodec", res.Handles[0].Name)
	assert.Equal(t, "nullableStringCodec", res.Handles[1].Name)
	assert.Equal(t, "intCodec", res.Handles[2].Name)
	assert.Equal(t, "stringAtSensitiveCodec", res.Handles[3].Name)

	// Test: same qualifier set shares
	assert.Same(t, res.ForProperty("d"), res.ForProperty("e"))
	assert.NotSame(t, res.ForProperty("a"), res.ForProperty("d"))
}

func TestResolve_AliasAttachedQualifiers(t *testing.T) {
	// Test: qualifiers carried by an alias layer join the property's own set
	resolver := typemodel.NewResolver([]typemodel.Alias{
		{Name: "Secret", Target: typemodel.Named("String"),
			Qualifiers: []typemodel.Qualifier{{Name: "q.Sensitive"}}},
	})

	res := Resolve(resolver, []descriptor.TargetProperty{
		prop("token", typemodel.Named("Secret")),
		prop("note", typemodel.Named("String"), typemodel.Qualifier{Name: "q.Sensitive"}),
		prop("plain", typemodel.Named("String")),
	})

	// token and note have the same (String, {Sensitive}) key; plain differs.
	require.Len(t, res.Handles, 2)
	assert.Same(t, res.ForProperty("token"), res.ForProperty("note"))
	assert.NotSame(t, res.ForProperty("token"), res.ForProperty("plain"))
}

func TestResolve_Deterministic(t *testing.T) {
	// Test: same inputs, same declaration order, identical allocation
	resolver := typemodel.NewResolver(nil)
	props := []descriptor.TargetProperty{
		prop("a", typemodel.Parameterized("List", typemodel.Named("String"))),
		prop("b", typemodel.Named("Int").AsNullable()),
		prop("c", typemodel.Parameterized("List", typemodel.Named("String"))),
	}

	first := Resolve(resolver, props)
	second := Resolve(resolver, props)

	require.Equal(t, len(first.Handles), len(second.Handles))
	for i := range first.Handles {
		assert.Equal(t, first.Handles[i].Name, second.Handles[i].Name)
		assert.True(t, first.Handles[i].Type.Equal(second.Handles[i].Type))
	}
	assert.Equal(t, "listOfStringCodec", first.Handles[0].Name)
	assert.Equal(t, "nullableIntCodec", first.Handles[1].Name)
}

func TestResolve_SkipsTransient(t *testing.T) {
	// Test: transient properties get no delegate
	resolver := typemodel.NewResolver(nil)
	transient := prop("tmp", typemodel.Named("String"))
	transient.Transient = true

	res := Resolve(resolver, []descriptor.TargetProperty{transient})
	assert.Empty(t, res.Handles)
	assert.Nil(t, res.ForProperty("tmp"))
}
