package runtime

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecgen-platform/codecgen/internal/delegate"
	"github.com/codecgen-platform/codecgen/internal/descriptor"
	"github.com/codecgen-platform/codecgen/internal/plan"
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// buildExecutor compiles a descriptor and wires an executor with the given
// defaults.
func buildExecutor(t *testing.T, target *descriptor.TargetType, defaults Defaults) (*Executor, *Registry) {
	t.Helper()
	resolver := typemodel.NewResolver(nil)
	res := delegate.Resolve(resolver, target.Properties)
	p, err := plan.Compile(target, res, resolver)
	require.NoError(t, err)

	reg, err := NewRegistry(64)
	require.NoError(t, err)
	exec := NewExecutor(p, reg, defaults)
	reg.RegisterExecutor(exec)
	return exec, reg
}

func ctorProp(name string, typ typemodel.TypeRef, index int, hasDefault bool) descriptor.TargetProperty {
	return descriptor.TargetProperty{
		Name: name, JSONName: name, Type: typ,
		ParameterIndex: index, HasDefault: hasDefault,
	}
}

func ctorTarget(name string, props ...descriptor.TargetProperty) *descriptor.TargetType {
	t := &descriptor.TargetType{Name: name, Properties: props}
	for _, p := range props {
		if p.ParameterIndex >= 0 {
			t.Params = append(t.Params, descriptor.TargetParameter{
				Name: p.Name, Index: p.ParameterIndex, Type: p.Type, HasDefault: p.HasDefault,
			})
		}
	}
	return t
}

func decode(t *testing.T, e *Executor, input string) (*Instance, error) {
	t.Helper()
	return e.Decode(NewJSONReader(strings.NewReader(input)))
}

func TestExecutor_DefaultApplication(t *testing.T) {
	// Test plan:
	// - Decoding {} applies the declared default for a defaulted parameter
	// - Decoding an explicit value overrides the default

	str := typemodel.Named("String")
	target := ctorTarget("model.Greeting",
		ctorProp("required", str, 0, false),
		ctorProp("optional", str, 1, true),
	)
	exec, _ := buildExecutor(t, target, Defaults{"optional": "x"})

	inst, err := decode(t, exec, `{"required":"r"}`)
	require.NoError(t, err)
	v, _ := inst.Get("optional")
	assert.Equal(t, "x", v)

	inst, err = decode(t, exec, `{"required":"r","optional":"y"}`)
	require.NoError(t, err)
	v, _ = inst.Get("optional")
	assert.Equal(t, "y", v)
}

func TestExecutor_MissingRequired(t *testing.T) {
	// Test: decoding {} against a required, non-defaulted property fails
	// with an error naming the property
	str := typemodel.Named("String")
	target := ctorTarget("model.Strict", ctorProp("required", str, 0, false))
	exec, _ := buildExecutor(t, target, nil)

	_, err := decode(t, exec, `{}`)
	require.Error(t, err)
	assert.True(t, IsDataError(err, RequiredMissing))
	assert.Contains(t, err.Error(), "required")
}

func TestExecutor_UnexpectedNull(t *testing.T) {
	// Test: explicit null for a non-nullable property is a data error
	// naming the property
	str := typemodel.Named("String")
	target := ctorTarget("model.Strict", ctorProp("a", str, 0, false))
	exec, _ := buildExecutor(t, target, nil)

	_, err := decode(t, exec, `{"a":null}`)
	require.Error(t, err)
	assert.True(t, IsDataError(err, UnexpectedNull))
	assert.Contains(t, err.Error(), `"a"`)
}

func TestExecutor_UnknownFieldTolerance(t *testing.T) {
	// Test: unknown names are skipped, including nested structures, and
	// repeated unknown names stay tolerated
	str := typemodel.Named("String")
	target := ctorTarget("model.Lenient", ctorProp("required", str, 0, false))
	exec, _ := buildExecutor(t, target, nil)

	inst, err := decode(t, exec, `{"required":"r","bogus":123,"deep":{"a":[1,{"b":null}]},"bogus":4}`)
	require.NoError(t, err)
	v, _ := inst.Get("required")
	assert.Equal(t, "r", v)
}

func TestExecutor_DuplicateKey(t *testing.T) {
	// Test: the same recognized wire name twice is a data error
	str := typemodel.Named("String")
	target := ctorTarget("model.Dup", ctorProp("a", str, 0, false))
	exec, _ := buildExecutor(t, target, nil)

	_, err := decode(t, exec, `{"a":"x","a":"y"}`)
	require.Error(t, err)
	assert.True(t, IsDataError(err, DuplicateKey))
}

func TestExecutor_NullableWithoutDefaultAbsent(t *testing.T) {
	// Test: a nullable, non-defaulted constructor parameter may be absent
	// and constructs as null
	str := typemodel.Named("String")
	target := ctorTarget("model.Opt", ctorProp("note", str.AsNullable(), 0, false))
	exec, _ := buildExecutor(t, target, nil)

	inst, err := decode(t, exec, `{}`)
	require.NoError(t, err)
	v, ok := inst.Get("note")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestExecutor_AbsentVersusNull(t *testing.T) {
	// Test plan:
	// - For a nullable settable property with a default, an absent key
	//   keeps the default
	// - An explicit null sets the value to null

	str := typemodel.Named("String")
	settable := descriptor.TargetProperty{
		Name: "nickname", JSONName: "nickname",
		Type:           str.AsNullable(),
		ParameterIndex: -1,
		HasDefault:     true,
		Settable:       true,
	}
	target := &descriptor.TargetType{
		Name:       "model.Profile",
		Properties: []descriptor.TargetProperty{settable},
	}
	exec, _ := buildExecutor(t, target, Defaults{"nickname": "buddy"})

	inst, err := decode(t, exec, `{}`)
	require.NoError(t, err)
	v, _ := inst.Get("nickname")
	assert.Equal(t, "buddy", v, "absent key must preserve the default")

	inst, err = decode(t, exec, `{"nickname":null}`)
	require.NoError(t, err)
	v, ok := inst.Get("nickname")
	assert.True(t, ok)
	assert.Nil(t, v, "explicit null must override the default with null")
}

func TestExecutor_SettableCoalesce(t *testing.T) {
	// Test: a settable property without presence tracking applies decoded
	// values only when non-null
	str := typemodel.Named("String")
	settable := descriptor.TargetProperty{
		Name: "label", JSONName: "label",
		Type:           str.AsNullable(),
		ParameterIndex: -1,
		Settable:       true,
	}
	target := &descriptor.TargetType{
		Name:       "model.Tag",
		Properties: []descriptor.TargetProperty{settable},
	}
	exec, _ := buildExecutor(t, target, Defaults{"label": "fresh"})

	// Explicit null coalesces back to the fresh instance's value.
	inst, err := decode(t, exec, `{"label":null}`)
	require.NoError(t, err)
	v, _ := inst.Get("label")
	assert.Equal(t, "fresh", v)

	inst, err = decode(t, exec, `{"label":"set"}`)
	require.NoError(t, err)
	v, _ = inst.Get("label")
	assert.Equal(t, "set", v)
}

func TestExecutor_RoundTrip(t *testing.T) {
	// Test: encode-then-decode reproduces an equal value for a type with
	// only required, non-defaulted, non-nullable properties
	str := typemodel.Named("String")
	intT := typemodel.Named("Int")
	list := typemodel.Parameterized("List", str)
	target := ctorTarget("model.Event",
		ctorProp("name", str, 0, false),
		ctorProp("count", intT, 1, false),
		ctorProp("tags", list, 2, false),
	)
	exec, _ := buildExecutor(t, target, nil)

	original := NewInstance("model.Event")
	original.Set("name", "deploy")
	original.Set("count", int64(3))
	original.Set("tags", []any{"a", "b"})

	w := NewJSONWriter()
	require.NoError(t, exec.Encode(w, original))

	decoded, err := decode(t, exec, string(JSONBytes(w)))
	require.NoError(t, err)
	assert.True(t, original.Equal(decoded), "round trip must preserve the value")
}

func TestExecutor_NestedTypes(t *testing.T) {
	// Test: a property of another target type decodes through that type's
	// registered executor
	str := typemodel.Named("String")
	inner := ctorTarget("model.Address", ctorProp("city", str, 0, false))
	outer := ctorTarget("model.Person",
		ctorProp("name", str, 0, false),
		ctorProp("address", typemodel.Named("model.Address"), 1, false),
	)

	resolver := typemodel.NewResolver(nil)
	reg, err := NewRegistry(64)
	require.NoError(t, err)

	innerPlan, err := plan.Compile(inner, delegate.Resolve(resolver, inner.Properties), resolver)
	require.NoError(t, err)
	reg.RegisterExecutor(NewExecutor(innerPlan, reg, nil))

	outerPlan, err := plan.Compile(outer, delegate.Resolve(resolver, outer.Properties), resolver)
	require.NoError(t, err)
	exec := NewExecutor(outerPlan, reg, nil)

	inst, err := decode(t, exec, `{"name":"ada","address":{"city":"london"}}`)
	require.NoError(t, err)

	addr, _ := inst.Get("address")
	require.IsType(t, &Instance{}, addr)
	city, _ := addr.(*Instance).Get("city")
	assert.Equal(t, "london", city)

	// Test: nested instances encode back through the same executor pair
	w := NewJSONWriter()
	require.NoError(t, exec.Encode(w, inst))
	assert.JSONEq(t, `{"name":"ada","address":{"city":"london"}}`, string(JSONBytes(w)))
}

func TestExecutor_WideDefaultsMask(t *testing.T) {
	// Test plan:
	// - 33 defaulted parameters exercise the second mask word
	// - The explicitly provided parameter 32 (word 1, bit 0) keeps its read
	//   value while the rest fall back to defaults

	str := typemodel.Named("String")
	props := make([]descriptor.TargetProperty, 33)
	defaults := Defaults{}
	for i := range props {
		name := fmt.Sprintf("p%d", i)
		props[i] = ctorProp(name, str, i, true)
		defaults[name] = fmt.Sprintf("d%d", i)
	}
	target := ctorTarget("model.Wide", props...)
	exec, _ := buildExecutor(t, target, defaults)

	require.Equal(t, 2, exec.Plan().MaskWordCount)

	inst, err := decode(t, exec, `{"p32":"explicit"}`)
	require.NoError(t, err)

	v, _ := inst.Get("p32")
	assert.Equal(t, "explicit", v)
	v, _ = inst.Get("p0")
	assert.Equal(t, "d0", v)
	v, _ = inst.Get("p31")
	assert.Equal(t, "d31", v)
}

func TestExecutor_EncodeNullRoot(t *testing.T) {
	// Test: encoding a nil root is always a caller error
	str := typemodel.Named("String")
	target := ctorTarget("model.X", ctorProp("a", str, 0, false))
	exec, _ := buildExecutor(t, target, nil)

	err := exec.Encode(NewJSONWriter(), nil)
	assert.ErrorIs(t, err, ErrNullRoot)
}

func TestExecutor_TransientStaysOffTheWire(t *testing.T) {
	// Test: transient properties are neither decoded nor encoded, but get
	// their declared default at construction
	str := typemodel.Named("String")
	transient := descriptor.TargetProperty{
		Name: "cache", JSONName: "cache", Type: str,
		ParameterIndex: -1, Transient: true, HasDefault: true,
	}
	target := ctorTarget("model.Memo", ctorProp("key", str, 0, false))
	target.Properties = append(target.Properties, transient)

	exec, _ := buildExecutor(t, target, Defaults{"cache": "empty"})

	inst, err := decode(t, exec, `{"key":"k","cache":"ignored"}`)
	require.NoError(t, err)
	v, _ := inst.Get("cache")
	assert.Equal(t, "empty", v, "wire value for a transient name must be skipped")

	w := NewJSONWriter()
	require.NoError(t, exec.Encode(w, inst))
	assert.JSONEq(t, `{"key":"k"}`, string(JSONBytes(w)))
}
