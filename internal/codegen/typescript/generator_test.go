package typescript

import (
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

func userTarget() *descriptor.TargetType {
	str := typemodel.Named("String")

	id := ctorProp("id", str, 0)

	nickname := ctorProp("nickname", str.AsNullable(), 1)
	nickname.HasDefault = true
	nickname.DefaultLiteral = "buddy"

	score := ctorProp("score", typemodel.Named("Int"), 2)

	email := descriptor.TargetProperty{
		Name: "email", JSONName: "email", Type: str.AsNullable(),
		ParameterIndex: -1, Settable: true,
	}

	target := &descriptor.TargetType{
		Name:       "model.User",
		Properties: []descriptor.TargetProperty{id, nickname, score, email},
	}
	for _, p := range target.Properties[:3] {
		target.Params = append(target.Params, descriptor.TargetParameter{
			Name: p.Name, Index: p.ParameterIndex, Type: p.Type, HasDefault: p.HasDefault,
		})
	}
	return target
}

func TestGenerator_InterfaceShape(t *testing.T) {
	// Test plan:
	// - nullable properties render with a null union
	// - settable properties without defaults are optional
	// - Int and Float both map to number

	target := userTarget()
	g := NewGenerator("")

	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "// Code generated by codecgen. DO NOT EDIT.")
	assert.Contains(t, result, "export interface User {")
	assert.Contains(t, result, "id: string;")
	assert.Contains(t, result, "nickname: string | null;")
	assert.Contains(t, result, "score: number;")
	assert.Contains(t, result, "email?: string | null;")
}

func TestGenerator_DecodeChecks(t *testing.T) {
	// Test plan:
	// - non-object roots are rejected
	// - unknown names are skipped
	// - required properties throw when missing
	// - non-nullable properties reject explicit null

	target := userTarget()
	g := NewGenerator("")

	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "export class UserCodec {")
	assert.Contains(t, result, "decode(value: unknown): User {")
	assert.Contains(t, result, `const userCodecNames: readonly string[] = ["id", "nickname", "score", "email"];`)
	assert.Contains(t, result, "continue; // unknown names are skipped")
	assert.Contains(t, result, `throw new Error("required property id (JSON name id) is missing");`)
	assert.Contains(t, result, `throw new Error("unexpected null for property id (JSON name id)");`)
}

func TestGenerator_DefaultsAndSettables(t *testing.T) {
	// Test plan:
	// - an absent defaulted property falls back to its declared value
	// - an explicit null on a nullable defaulted property stays null
	// - the settable property is only assigned when present

	target := userTarget()
	g := NewGenerator("")

	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, `nickname: p1 === undefined ? "buddy" : p1,`)
	assert.Contains(t, result, "if (p3 !== undefined) {")
	assert.Contains(t, result, "out.email = p3;")
}

func TestGenerator_Encode(t *testing.T) {
	// Test plan:
	// - null roots are rejected
	// - wire names map to delegate-encoded values
	// - optional absent properties are dropped, not written as null

	target := userTarget()
	g := NewGenerator("")

	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "encode(value: User): Record<string, unknown> {")
	assert.Contains(t, result, `throw new Error("cannot encode a null User");`)
	assert.Contains(t, result, `"id": this.encodeString(value.id),`)
	assert.Contains(t, result, `"email": value.email === undefined ? undefined : this.encodeNullableString(value.email),`)
}

func TestGenerator_Delegates(t *testing.T) {
	// Test plan:
	// - one private method pair per distinct delegate
	// - runtime type guards match the declared type
	// - qualified delegates are emitted separately

	str := typemodel.Named("String")
	first := ctorProp("first", str, 0)
	last := ctorProp("last", str, 1)
	secret := ctorProp("secret", str, 2)
	secret.Qualifiers = []typemodel.Qualifier{{Name: "model.Sensitive"}}

	target := &descriptor.TargetType{
		Name:       "model.Account",
		Properties: []descriptor.TargetProperty{first, last, secret},
	}

	g := NewGenerator("")
	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Equal(t, 1, strings.Count(result, "private decodeString(v: unknown): string {"))
	assert.Contains(t, result, "private decodeStringAtSensitive(v: unknown): string {")
	assert.Contains(t, result, "qualified by @Sensitive")
	assert.Contains(t, result, `if (typeof v !== "string") {`)
}

func TestGenerator_ListsAndNesting(t *testing.T) {
	// Test plan:
	// - lists validate with Array.isArray and map elements
	// - named user types dispatch through the sibling codec class

	tags := ctorProp("tags", typemodel.Parameterized("List", typemodel.Named("Int")), 0)
	addr := ctorProp("address", typemodel.Named("model.Address"), 1)
	target := &descriptor.TargetType{
		Name:       "model.Person",
		Properties: []descriptor.TargetProperty{tags, addr},
	}

	g := NewGenerator("")
	code, err := g.Generate(target, compilePlan(t, target))
	require.NoError(t, err)

	result := string(code)
	assert.Contains(t, result, "tags: Array<number>;")
	assert.Contains(t, result, "if (!Array.isArray(v)) {")
	assert.Contains(t, result, "return v.map((e0: unknown) => {")
	assert.Contains(t, result, "return new AddressCodec().decode(v);")
	assert.Contains(t, result, "return new AddressCodec().encode(v);")
}

func TestGenerator_UnsupportedType(t *testing.T) {
	// Test: Type variables cannot be rendered and fail loudly
	generic := ctorProp("value", typemodel.TypeVar("T"), 0)
	target := &descriptor.TargetType{
		Name:       "model.Box",
		Properties: []descriptor.TargetProperty{generic},
	}

	g := NewGenerator("")
	_, err := g.Generate(target, compilePlan(t, target))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot render type")
}

func TestGenerator_FileMetadata(t *testing.T) {
	// Test: Language and extension identify the renderer
	g := NewGenerator("")
	assert.Equal(t, "typescript", g.Language())
	assert.Equal(t, ".ts", g.FileExtension())
}
