package golang

import (
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecgen-platform/codecgen/internal/descriptor"
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// Test plan for property-based testing:
// 1. Generated code is always syntactically valid Go
// 2. Generation is deterministic for a fixed target
// 3. Mask word count in the output matches the constructor arity
// 4. Delegate methods are emitted exactly once per distinct delegate

// randomTarget builds a target with a random mix of builtin types,
// nullability, defaults, settable and transient properties.
func randomTarget(r *rand.Rand, name string) *descriptor.TargetType {
	builtins := []typemodel.TypeRef{
		typemodel.Named("String"),
		typemodel.Named("Int"),
		typemodel.Named("Float"),
		typemodel.Named("Boolean"),
		typemodel.Parameterized("List", typemodel.Named("String")),
	}
	defaults := map[string]any{
		"String":  "d",
		"Int":     int64(7),
		"Float":   1.5,
		"Boolean": true,
	}

	n := 1 + r.Intn(12)
	target := &descriptor.TargetType{Name: name}
	ctorIndex := 0
	for i := 0; i < n; i++ {
		typ := builtins[r.Intn(len(builtins))]
		if r.Intn(3) == 0 {
			typ = typ.AsNullable()
		}
		prop := descriptor.TargetProperty{
			Name:           fmt.Sprintf("f%d", i),
			JSONName:       fmt.Sprintf("f%d", i),
			Type:           typ,
			ParameterIndex: -1,
		}
		lit, hasLit := defaults[typ.RawName()]
		if hasLit && r.Intn(2) == 0 {
			prop.HasDefault = true
			prop.DefaultLiteral = lit
		}
		switch {
		case r.Intn(4) == 0 && prop.HasDefault:
			prop.Transient = true
			prop.ParameterIndex = ctorIndex
			ctorIndex++
		case r.Intn(3) == 0:
			prop.Settable = true
		default:
			prop.ParameterIndex = ctorIndex
			ctorIndex++
		}
		if prop.ParameterIndex >= 0 {
			target.Params = append(target.Params, descriptor.TargetParameter{
				Name:       prop.Name,
				Index:      prop.ParameterIndex,
				Type:       prop.Type,
				HasDefault: prop.HasDefault,
			})
		}
		target.Properties = append(target.Properties, prop)
	}
	return target
}

func TestGenerator_PropertyValidGo(t *testing.T) {
	// Test: All generated code is valid Go syntax
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		t.Run(fmt.Sprintf("random_target_%d", i), func(t *testing.T) {
			target := randomTarget(r, fmt.Sprintf("model.T%d", i))
			g := NewGenerator("model")

			code, err := g.Generate(target, compilePlan(t, target))
			require.NoError(t, err)

			formatted, err := format.Source(code)
			if err != nil {
				t.Logf("Generated code:\n%s", string(code))
				t.Fatalf("Generated code is not valid Go: %v", err)
			}

			fset := token.NewFileSet()
			_, err = parser.ParseFile(fset, "generated.go", formatted, parser.AllErrors)
			assert.NoError(t, err, "Generated code should parse successfully")
		})
	}
}

func TestGenerator_PropertyDeterministic(t *testing.T) {
	// Test: Two generations of the same target are byte-identical
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		target := randomTarget(r, fmt.Sprintf("model.D%d", i))
		g := NewGenerator("model")

		first, err := g.Generate(target, compilePlan(t, target))
		require.NoError(t, err)
		second, err := g.Generate(target, compilePlan(t, target))
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second))
	}
}

func TestGenerator_PropertyMaskWords(t *testing.T) {
	// Test: The number of mask words tracks the constructor arity
	for _, arity := range []int{1, 31, 32, 33, 64, 65} {
		props := make([]descriptor.TargetProperty, 0, arity)
		for i := 0; i < arity; i++ {
			p := descriptor.TargetProperty{
				Name:           fmt.Sprintf("f%d", i),
				JSONName:       fmt.Sprintf("f%d", i),
				Type:           typemodel.Named("Int"),
				ParameterIndex: i,
				HasDefault:     true,
				DefaultLiteral: int64(0),
			}
			props = append(props, p)
		}
		target := &descriptor.TargetType{Name: "model.Wide", Properties: props}

		g := NewGenerator("model")
		code, err := g.Generate(target, compilePlan(t, target))
		require.NoError(t, err)

		result := string(code)
		want := (arity + 31) / 32
		for w := 0; w < want; w++ {
			assert.Contains(t, result, fmt.Sprintf("mask%d := ^uint32(0)", w), "arity %d", arity)
		}
		assert.NotContains(t, result, fmt.Sprintf("mask%d := ^uint32(0)", want), "arity %d", arity)
	}
}
