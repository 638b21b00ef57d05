package golang

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

func compilePlan(t *testing.T, target *descriptor.TargetType) *plan.CodecPlan {
	t.Helper()
	resolver := typemodel.NewResolver(nil)
	res := delegate.Resolve(resolver, target.Properties)
	p, err := plan.Compile(target, res, resolver)
	require.NoError(t, err)
	return p
}

func ctorProp(name string, typ typemodel.TypeRef, idx int) descriptor.TargetProperty {
	return descriptor.TargetProperty{Name: name, JSONName: name, Type: typ, ParameterIndex: idx}
}

// userTarget builds a target exercising most plan shapes: required,
// defaulted, list, transient and settable properties.
func userTarget() *descriptor.TargetType {
	str := typemodel.Named("String")
	nstr := str.AsNullable()

	id := ctorProp("id", str, 0)

	nickname := ctorProp("nickname", nstr, 1)
	nickname.HasDefault = true
	nickname.DefaultLiteral = "buddy"

	tags := ctorProp("tags", typemodel.Parameterized("List", str), 2)

	score := ctorProp("score", typemodel.Named("Int"), 3)
	score.HasDefault = true
	score.DefaultLiteral = int64(10)

	cache := ctorProp("cache", str, 4)
	cache.Transient = true
	cache.HasDefault = true
	cache.DefaultLiteral = "warm"

	email := descriptor.TargetProperty{
		Name: "email", JSONName: "email", Type: nstr,
		ParameterIndex: -1, Settable: true,
	}

	target := &descriptor.TargetType{
		Name:       "model.User",
		Properties: []descriptor.TargetProperty{id, nickname, tags, score, cache, email},
	}
	for _, p := range target.Properties[:5] {
		target.Params = append(target.Params, descriptor.TargetParameter{
			Name: p.Name, Index: p.ParameterIndex, Type: p.Type, HasDefault: p.HasDefault,
		})
	}
	return target
}

func TestGenerator_StructShape(t *testing.T) {
	// Test plan:
	// - package name derives from the qualified target name
	// - every property becomes a struct field, transients included
	// - nullable builtins render as pointers, lists as slices

	target := userTarget()
	g := NewGenerator("")

	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "// Code generated by codecgen. DO NOT EDIT.")
	assert.Contains(t, result, "package model")
	assert.Contains(t, result, "type User struct {")
	assert.Contains(t, result, "Id string")
	assert.Contains(t, result, "Nickname *string")
	assert.Contains(t, result, "Tags []string")
	assert.Contains(t, result, "Score int64")
	assert.Contains(t, result, "Cache string")
	assert.Contains(t, result, "Email *string")
}

func TestGenerator_SelectionTable(t *testing.T) {
	// Test: The hoisted options table lists wire names in declaration
	// order with the transient property absent
	target := userTarget()
	g := NewGenerator("model")

	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	assert.Contains(t, string(code),
		`var userCodecNames = runtime.NewOptions("id", "nickname", "tags", "score", "email")`)
}

func TestGenerator_DecodeStateMachine(t *testing.T) {
	// Test plan:
	// - the decode loop dispatches on SelectName and skips unknown names
	// - defaulted constructor parameters clear their mask bit on read
	// - required properties produce a RequiredMissing error
	// - non-nullable properties guard against explicit null

	target := userTarget()
	g := NewGenerator("model")

	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "func (c *UserCodec) Decode(r runtime.Reader) (*User, error) {")
	assert.Contains(t, result, "mask0 := ^uint32(0)")
	assert.Contains(t, result, "idx, err := r.SelectName(userCodecNames)")
	assert.Contains(t, result, "if err := r.SkipValue(); err != nil {")

	// nickname is constructor parameter 1, score is parameter 3
	assert.Contains(t, result, "mask0 &^= 0x2")
	assert.Contains(t, result, "mask0 &^= 0x8")
	assert.Contains(t, result, "if mask0&0x2 != 0 {")
	assert.Contains(t, result, `p1 = runtime.Ptr("buddy")`)
	assert.Contains(t, result, "p3 = int64(10)")

	assert.Contains(t, result,
		`&runtime.DataError{Kind: runtime.RequiredMissing, Property: "id", WireName: "id"}`)
	assert.Contains(t, result,
		`&runtime.DataError{Kind: runtime.UnexpectedNull, Property: "id", WireName: "id"}`)
	assert.Contains(t, result,
		`&runtime.DataError{Kind: runtime.DuplicateKey, Property: "id", WireName: "id"}`)
}

func TestGenerator_ConstructionAndSettables(t *testing.T) {
	// Test plan:
	// - constructor-backed properties appear in the composite literal
	// - the transient property is initialized from its default
	// - the settable property is applied only when seen

	target := userTarget()
	g := NewGenerator("model")

	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "out := &User{")
	assert.Contains(t, result, "Id: p0,")
	assert.Contains(t, result, `Cache: "warm",`)
	assert.Contains(t, result, "if p4Seen {")
	assert.Contains(t, result, "out.Email = p4")
	assert.NotContains(t, result, "out.Cache")
}

func TestGenerator_SharedDelegates(t *testing.T) {
	// Test plan:
	// - one delegate method pair per distinct type and qualifier set
	// - properties of the same resolved type share a method
	// - qualified delegates get their own method with the qualifier noted

	str := typemodel.Named("String")
	first := ctorProp("first", str, 0)
	last := ctorProp("last", str, 1)
	secret := ctorProp("secret", str, 2)
	secret.Qualifiers = []typemodel.Qualifier{{Name: "model.Sensitive"}}

	target := &descriptor.TargetType{
		Name:       "model.Account",
		Properties: []descriptor.TargetProperty{first, last, secret},
	}

	g := NewGenerator("model")
	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Equal(t, 1, strings.Count(result, "func (c *AccountCodec) decodeString(r runtime.Reader)"))
	assert.Contains(t, result, "func (c *AccountCodec) decodeStringAtSensitive(r runtime.Reader)")
	assert.Contains(t, result, "qualified by @Sensitive")
}

func TestGenerator_NestedTypes(t *testing.T) {
	// Test: Named user types dispatch through the sibling codec
	addr := ctorProp("address", typemodel.Named("model.Address"), 0)
	target := &descriptor.TargetType{
		Name:       "model.Person",
		Properties: []descriptor.TargetProperty{addr},
	}

	g := NewGenerator("model")
	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "Address *Address")
	assert.Contains(t, result, "if v, err = NewAddressCodec().Decode(r); err != nil {")
	assert.Contains(t, result, "NewAddressCodec().Encode(w, v)")
}

func TestGenerator_Encode(t *testing.T) {
	// Test plan:
	// - Encode rejects a nil root
	// - properties are written name-then-value in declaration order
	// - the transient property is never written

	target := userTarget()
	g := NewGenerator("model")

	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "func (c *UserCodec) Encode(w runtime.Writer, v *User) error {")
	assert.Contains(t, result, "return runtime.ErrNullRoot")
	assert.NotContains(t, result, `w.Name("cache")`)

	// The value write must be a sibling of the name write, reached on the
	// success path, and a name error must propagate.
	assert.Contains(t, result, "\tif err := w.Name(\"id\"); err != nil {\n"+
		"\t\treturn err\n"+
		"\t}\n"+
		"\tif err := c.encodeString(w, v.Id); err != nil {\n"+
		"\t\treturn err\n"+
		"\t}\n")

	// declaration order
	idPos := strings.Index(result, `w.Name("id")`)
	emailPos := strings.Index(result, `w.Name("email")`)
	require.True(t, idPos >= 0 && emailPos >= 0)
	assert.Less(t, idPos, emailPos)
}

func TestGenerator_UnsupportedType(t *testing.T) {
	// Test: Type variables cannot be rendered and fail loudly
	generic := ctorProp("value", typemodel.TypeVar("T"), 0)
	target := &descriptor.TargetType{
		Name:       "model.Box",
		Properties: []descriptor.TargetProperty{generic},
	}

	g := NewGenerator("model")
	_, err := g.Generate(target, compilePlan(t, target))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot render type")
}

func TestGenerator_ListOfNullable(t *testing.T) {
	// Test: List elements keep their own nullability
	items := ctorProp("items", typemodel.Parameterized("List", typemodel.Named("Int").AsNullable()), 0)
	target := &descriptor.TargetType{
		Name:       "model.Bag",
		Properties: []descriptor.TargetProperty{items},
	}

	g := NewGenerator("model")
	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "Items []*int64")
	assert.Contains(t, result, "decodeListOfNullableInt")
	assert.Contains(t, result, "r.BeginArray()")
	assert.Contains(t, result, "r.EndArray()")
}

func TestGenerator_FileMetadata(t *testing.T) {
	// Test: Language and extension identify the renderer
	g := NewGenerator("model")
	assert.Equal(t, "go", g.Language())
	assert.Equal(t, ".go", g.FileExtension())
}

func TestGenerator_WideConstructor(t *testing.T) {
	// Test plan:
	// - 33 defaulted parameters span two mask words
	// - parameter 32 clears bit 0 of the second word

	props := make([]descriptor.TargetProperty, 0, 33)
	for i := 0; i < 33; i++ {
		p := ctorProp(fmt.Sprintf("f%d", i), typemodel.Named("Int"), i)
		p.HasDefault = true
		p.DefaultLiteral = int64(i)
		props = append(props, p)
	}
	target := &descriptor.TargetType{Name: "model.Wide", Properties: props}

	g := NewGenerator("model")
	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "mask0 := ^uint32(0)")
	assert.Contains(t, result, "mask1 := ^uint32(0)")
	assert.Contains(t, result, "mask1 &^= 0x1")
	assert.Contains(t, result, "if mask1&0x1 != 0 {")
	assert.NotContains(t, result, "mask2")
}
