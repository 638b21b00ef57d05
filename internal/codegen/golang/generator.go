// Package golang renders a compiled codec plan into Go source. The output
// for each target is a plain struct mirroring the declared shape plus a
// streaming codec over the runtime Reader/Writer contract, with one shared
// delegate method per distinct (type, qualifier set) pair.
package golang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codecgen-platform/codecgen/internal/codegen/writer"
	"github.com/codecgen-platform/codecgen/internal/delegate"
	"github.com/codecgen-platform/codecgen/internal/descriptor"
	"github.com/codecgen-platform/codecgen/internal/plan"
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

const runtimeImport = "github.com/codecgen-platform/codecgen/runtime"

// Generator renders Go codec source from a compiled plan
type Generator struct {
	packageName string
}

// NewGenerator creates a new Go codec renderer
func NewGenerator(packageName string) *Generator {
	return &Generator{
		packageName: packageName,
	}
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "go"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".go"
}

// Generate renders the struct and codec for one target type
func (g *Generator) Generate(target *descriptor.TargetType, p *plan.CodecPlan) ([]byte, error) {
	pkg := g.packageName
	if pkg == "" {
		pkg = packageOf(target.Name)
	}

	w := writer.NewWriter("\t")
	w.WriteLine("// Code generated by codecgen. DO NOT EDIT.")
	w.BlankLine()
	w.WriteLinef("package %s", pkg)
	w.BlankLine()
	w.WriteLine("import (")
	w.Indent()
	w.WriteLinef("%q", runtimeImport)
	w.Dedent()
	w.WriteLine(")")
	w.BlankLine()

	if err := g.generateStruct(w, target); err != nil {
		return nil, err
	}
	w.BlankLine()
	g.generateOptions(w, p)
	w.BlankLine()
	g.generateCodecType(w, target, p)
	w.BlankLine()
	if err := g.generateDecode(w, target, p); err != nil {
		return nil, err
	}
	w.BlankLine()
	if err := g.generateEncode(w, target, p); err != nil {
		return nil, err
	}

	for _, h := range p.Delegates {
		w.BlankLine()
		if err := g.generateDecodeDelegate(w, p, h); err != nil {
			return nil, err
		}
		w.BlankLine()
		if err := g.generateEncodeDelegate(w, p, h); err != nil {
			return nil, err
		}
	}

	return w.Bytes(), nil
}

// generateStruct renders the target's declared shape, transient fields
// included.
func (g *Generator) generateStruct(w *writer.Writer, target *descriptor.TargetType) error {
	w.WriteLinef("// %s is the decoded representation of %s.", target.SimpleName(), target.Name)
	w.WriteLinef("type %s struct {", target.SimpleName())
	w.Indent()
	for _, prop := range target.Properties {
		goType, err := g.goType(prop.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", prop.Name, err)
		}
		w.WriteLinef("%s %s", exportedName(prop.Name), goType)
	}
	w.Dedent()
	w.WriteLine("}")
	return nil
}

// generateOptions renders the hoisted field-selection table. Its entry order
// is the switch order in Decode.
func (g *Generator) generateOptions(w *writer.Writer, p *plan.CodecPlan) {
	names := make([]string, 0, len(p.Selection))
	for _, e := range p.Selection {
		names = append(names, strconv.Quote(e.WireName))
	}
	w.WriteLinef("var %s = runtime.NewOptions(%s)", optionsVar(p), strings.Join(names, ", "))
}

func (g *Generator) generateCodecType(w *writer.Writer, target *descriptor.TargetType, p *plan.CodecPlan) {
	w.WriteLinef("// %s decodes and encodes %s values.", p.CodecName, target.SimpleName())
	w.WriteLinef("type %s struct{}", p.CodecName)
	w.BlankLine()
	w.WriteLinef("func New%s() *%s {", p.CodecName, p.CodecName)
	w.Indent()
	w.WriteLinef("return &%s{}", p.CodecName)
	w.Dedent()
	w.WriteLine("}")
}

// generateDecode renders the decode state machine: local slots per wire
// property, the defaults-mask words, the selection loop, and construction.
func (g *Generator) generateDecode(w *writer.Writer, target *descriptor.TargetType, p *plan.CodecPlan) error {
	w.WriteLinef("// Decode reads one %s value from r.", target.SimpleName())
	w.WriteLinef("func (c *%s) Decode(r runtime.Reader) (*%s, error) {", p.CodecName, target.SimpleName())
	w.Indent()

	if len(p.Decode) > 0 {
		w.WriteLine("var (")
		w.Indent()
		for _, s := range p.Decode {
			prop := target.Property(s.Property)
			goType, err := g.goType(prop.Type)
			if err != nil {
				return fmt.Errorf("property %s: %w", s.Property, err)
			}
			w.WriteLinef("%s %s // %s", slotVar(s), goType, s.Property)
			w.WriteLinef("%sSeen bool", slotVar(s))
		}
		w.Dedent()
		w.WriteLine(")")
	}
	wordUsed := make([]bool, p.MaskWordCount)
	for _, s := range p.Decode {
		if s.UsesMask {
			wordUsed[s.MaskWord] = true
		}
	}
	for word := 0; word < p.MaskWordCount; word++ {
		w.WriteLinef("mask%d := ^uint32(0)", word)
		if !wordUsed[word] {
			w.WriteLinef("_ = mask%d", word)
		}
	}

	w.WriteBlock("if err := r.BeginObject(); err != nil {", "}", func() {
		w.WriteLine("return nil, err")
	})
	w.WriteLine("for {")
	w.Indent()
	w.WriteLine("more, err := r.HasNext()")
	w.WriteBlock("if err != nil {", "}", func() {
		w.WriteLine("return nil, err")
	})
	w.WriteBlock("if !more {", "}", func() {
		w.WriteLine("break")
	})
	w.WriteLinef("idx, err := r.SelectName(%s)", optionsVar(p))
	w.WriteBlock("if err != nil {", "}", func() {
		w.WriteLine("return nil, err")
	})
	w.WriteLine("switch idx {")
	for _, s := range p.Decode {
		w.WriteLinef("case %d: // %s", s.Index, s.Property)
		w.Indent()
		g.generateFieldCase(w, p, s)
		w.Dedent()
	}
	w.WriteLine("default:")
	w.Indent()
	w.WriteBlock("if err := r.SkipValue(); err != nil {", "}", func() {
		w.WriteLine("return nil, err")
	})
	w.Dedent()
	w.WriteLine("}")
	w.Dedent()
	w.WriteLine("}")
	w.WriteBlock("if err := r.EndObject(); err != nil {", "}", func() {
		w.WriteLine("return nil, err")
	})

	if err := g.generateConstruction(w, target, p); err != nil {
		return err
	}

	w.WriteLine("return out, nil")
	w.Dedent()
	w.WriteLine("}")
	return nil
}

// generateFieldCase renders one arm of the selection switch: duplicate
// detection, the null guard for non-nullable properties, the delegate read,
// and the defaults-mask bit clear.
func (g *Generator) generateFieldCase(w *writer.Writer, p *plan.CodecPlan, s plan.DecodeStep) {
	w.WriteBlock(fmt.Sprintf("if %sSeen {", slotVar(s)), "}", func() {
		w.WriteLinef("return nil, %s", dataErrorExpr("DuplicateKey", s.Property, s.WireName))
	})
	if !s.Nullable {
		w.WriteLine("null, err := r.PeekNull()")
		w.WriteBlock("if err != nil {", "}", func() {
			w.WriteLine("return nil, err")
		})
		w.WriteBlock("if null {", "}", func() {
			w.WriteLinef("return nil, %s", dataErrorExpr("UnexpectedNull", s.Property, s.WireName))
		})
	}
	w.WriteLinef("v, err := c.%s(r)", decodeMethod(s.Delegate))
	w.WriteBlock("if err != nil {", "}", func() {
		w.WriteLine("return nil, err")
	})
	w.WriteLinef("%s = v", slotVar(s))
	w.WriteLinef("%sSeen = true", slotVar(s))
	if s.UsesMask {
		w.WriteLinef("mask%d &^= 0x%x", s.MaskWord, uint32(1)<<s.MaskBit)
	}
}

// generateConstruction applies defaults for untouched mask bits, enforces
// required properties, builds the value, then applies settable properties.
func (g *Generator) generateConstruction(w *writer.Writer, target *descriptor.TargetType, p *plan.CodecPlan) error {
	for _, s := range p.ConstructorSteps() {
		prop := target.Property(s.Property)
		switch {
		case s.UsesMask:
			lit, err := g.goLiteral(prop.Type, prop.DefaultLiteral)
			if err != nil {
				return fmt.Errorf("property %s: %w", s.Property, err)
			}
			w.WriteBlock(fmt.Sprintf("if mask%d&0x%x != 0 {", s.MaskWord, uint32(1)<<s.MaskBit), "}", func() {
				w.WriteLinef("%s = %s", slotVar(s), lit)
			})
		case !s.Nullable:
			w.WriteBlock(fmt.Sprintf("if !%sSeen {", slotVar(s)), "}", func() {
				w.WriteLinef("return nil, %s", dataErrorExpr("RequiredMissing", s.Property, s.WireName))
			})
		}
		// nullable without default: absent stays nil
	}

	w.WriteLinef("out := &%s{", target.SimpleName())
	w.Indent()
	for _, s := range p.ConstructorSteps() {
		w.WriteLinef("%s: %s,", exportedName(s.Property), slotVar(s))
	}
	for _, name := range p.Transients {
		prop := target.Property(name)
		if prop == nil || !prop.HasDefault || prop.DefaultLiteral == nil {
			continue
		}
		lit, err := g.goLiteral(prop.Type, prop.DefaultLiteral)
		if err != nil {
			return fmt.Errorf("property %s: %w", name, err)
		}
		w.WriteLinef("%s: %s,", exportedName(name), lit)
	}
	w.Dedent()
	w.WriteLine("}")

	for _, s := range p.SettableSteps() {
		prop := target.Property(s.Property)
		if s.HasDefault {
			lit, err := g.goLiteral(prop.Type, prop.DefaultLiteral)
			if err != nil {
				return fmt.Errorf("property %s: %w", s.Property, err)
			}
			w.WriteLinef("if %sSeen {", slotVar(s))
			w.Indent()
			w.WriteLinef("out.%s = %s", exportedName(s.Property), slotVar(s))
			w.Dedent()
			w.WriteLine("} else {")
			w.Indent()
			w.WriteLinef("out.%s = %s", exportedName(s.Property), lit)
			w.Dedent()
			w.WriteLine("}")
		} else {
			w.WriteBlock(fmt.Sprintf("if %sSeen {", slotVar(s)), "}", func() {
				w.WriteLinef("out.%s = %s", exportedName(s.Property), slotVar(s))
			})
		}
	}
	return nil
}

// generateEncode renders the emission loop in declaration order. Transient
// properties never appear.
func (g *Generator) generateEncode(w *writer.Writer, target *descriptor.TargetType, p *plan.CodecPlan) error {
	w.WriteLinef("// Encode writes v to w. A nil v is an error; wrap the codec for null-safety.")
	w.WriteLinef("func (c *%s) Encode(w runtime.Writer, v *%s) error {", p.CodecName, target.SimpleName())
	w.Indent()
	w.WriteBlock("if v == nil {", "}", func() {
		w.WriteLine("return runtime.ErrNullRoot")
	})
	w.WriteBlock("if err := w.BeginObject(); err != nil {", "}", func() {
		w.WriteLine("return err")
	})
	for _, s := range p.Encode {
		w.WriteBlock(fmt.Sprintf("if err := w.Name(%q); err != nil {", s.WireName), "}", func() {
			w.WriteLine("return err")
		})
		w.WriteBlock(fmt.Sprintf("if err := c.%s(w, v.%s); err != nil {", encodeMethod(s.Delegate), exportedName(s.Property)), "}", func() {
			w.WriteLine("return err")
		})
	}
	w.WriteLine("return w.EndObject()")
	w.Dedent()
	w.WriteLine("}")
	return nil
}

// generateDecodeDelegate renders one shared delegate reader. Every property
// with the same resolved type and qualifier set dispatches through it.
func (g *Generator) generateDecodeDelegate(w *writer.Writer, p *plan.CodecPlan, h *delegate.Handle) error {
	goType, err := g.goType(h.Type)
	if err != nil {
		return fmt.Errorf("delegate %s: %w", h.Name, err)
	}
	w.WriteLinef("// %s reads one %s value%s.", decodeMethod(h), h.Type.String(), qualifierNote(h))
	w.WriteLinef("func (c *%s) %s(r runtime.Reader) (v %s, err error) {", p.CodecName, decodeMethod(h), goType)
	w.Indent()
	if err := g.writeDecodeInto(w, h.Type, "v", 0); err != nil {
		return fmt.Errorf("delegate %s: %w", h.Name, err)
	}
	w.WriteLine("return")
	w.Dedent()
	w.WriteLine("}")
	return nil
}

func (g *Generator) generateEncodeDelegate(w *writer.Writer, p *plan.CodecPlan, h *delegate.Handle) error {
	goType, err := g.goType(h.Type)
	if err != nil {
		return fmt.Errorf("delegate %s: %w", h.Name, err)
	}
	w.WriteLinef("func (c *%s) %s(w runtime.Writer, v %s) error {", p.CodecName, encodeMethod(h), goType)
	w.Indent()
	if err := g.writeEncodeValue(w, h.Type, "v", 0); err != nil {
		return fmt.Errorf("delegate %s: %w", h.Name, err)
	}
	w.WriteLine("return nil")
	w.Dedent()
	w.WriteLine("}")
	return nil
}

// writeDecodeInto emits statements assigning one decoded value of type t
// into dst. The enclosing function must declare named returns (v, err).
func (g *Generator) writeDecodeInto(w *writer.Writer, t typemodel.TypeRef, dst string, depth int) error {
	if t.Nullable && !pointerShaped(t) {
		nullVar := fmt.Sprintf("null%d", depth)
		w.WriteLinef("var %s bool", nullVar)
		w.WriteBlock(fmt.Sprintf("if %s, err = r.PeekNull(); err != nil {", nullVar), "}", func() {
			w.WriteLine("return")
		})
		w.WriteLinef("if %s {", nullVar)
		w.Indent()
		w.WriteBlock("if err = r.ReadNull(); err != nil {", "}", func() {
			w.WriteLine("return")
		})
		w.Dedent()
		w.WriteLine("} else {")
		w.Indent()
		inner := t.AsNonNull()
		tmpType, err := g.goType(inner)
		if err != nil {
			return err
		}
		tmp := fmt.Sprintf("v%d", depth)
		w.WriteLinef("var %s %s", tmp, tmpType)
		if err := g.writeDecodeInto(w, inner, tmp, depth+1); err != nil {
			return err
		}
		w.WriteLinef("%s = &%s", dst, tmp)
		w.Dedent()
		w.WriteLine("}")
		return nil
	}
	if t.Nullable && pointerShaped(t) {
		// user types decode to a pointer already; null maps to nil
		nullVar := fmt.Sprintf("null%d", depth)
		w.WriteLinef("var %s bool", nullVar)
		w.WriteBlock(fmt.Sprintf("if %s, err = r.PeekNull(); err != nil {", nullVar), "}", func() {
			w.WriteLine("return")
		})
		w.WriteLinef("if %s {", nullVar)
		w.Indent()
		w.WriteBlock("if err = r.ReadNull(); err != nil {", "}", func() {
			w.WriteLine("return")
		})
		w.Dedent()
		w.WriteLine("} else {")
		w.Indent()
		if err := g.writeDecodeInto(w, t.AsNonNull(), dst, depth+1); err != nil {
			return err
		}
		w.Dedent()
		w.WriteLine("}")
		return nil
	}

	switch t.Kind {
	case typemodel.KindNamed:
		switch t.RawName() {
		case "String":
			w.WriteBlock(fmt.Sprintf("if %s, err = r.ReadString(); err != nil {", dst), "}", func() {
				w.WriteLine("return")
			})
		case "Int":
			w.WriteBlock(fmt.Sprintf("if %s, err = r.ReadInt(); err != nil {", dst), "}", func() {
				w.WriteLine("return")
			})
		case "Float":
			w.WriteBlock(fmt.Sprintf("if %s, err = r.ReadFloat(); err != nil {", dst), "}", func() {
				w.WriteLine("return")
			})
		case "Boolean":
			w.WriteBlock(fmt.Sprintf("if %s, err = r.ReadBool(); err != nil {", dst), "}", func() {
				w.WriteLine("return")
			})
		default:
			w.WriteBlock(fmt.Sprintf("if %s, err = New%sCodec().Decode(r); err != nil {", dst, t.SimpleName()), "}", func() {
				w.WriteLine("return")
			})
		}
		return nil
	case typemodel.KindParameterized:
		if t.RawName() != "List" || len(t.Args) != 1 {
			return fmt.Errorf("cannot render type %s", t.String())
		}
		elemType, err := g.goType(t.Args[0])
		if err != nil {
			return err
		}
		w.WriteBlock("if err = r.BeginArray(); err != nil {", "}", func() {
			w.WriteLine("return")
		})
		w.WriteLinef("%s = %s{}", dst, "[]"+elemType)
		w.WriteLine("for {")
		w.Indent()
		moreVar := fmt.Sprintf("more%d", depth)
		w.WriteLinef("var %s bool", moreVar)
		w.WriteBlock(fmt.Sprintf("if %s, err = r.HasNext(); err != nil {", moreVar), "}", func() {
			w.WriteLine("return")
		})
		w.WriteBlock(fmt.Sprintf("if !%s {", moreVar), "}", func() {
			w.WriteLine("break")
		})
		elemVar := fmt.Sprintf("e%d", depth)
		w.WriteLinef("var %s %s", elemVar, elemType)
		if err := g.writeDecodeInto(w, t.Args[0], elemVar, depth+1); err != nil {
			return err
		}
		w.WriteLinef("%s = append(%s, %s)", dst, dst, elemVar)
		w.Dedent()
		w.WriteLine("}")
		w.WriteBlock("if err = r.EndArray(); err != nil {", "}", func() {
			w.WriteLine("return")
		})
		return nil
	default:
		return fmt.Errorf("cannot render type %s", t.String())
	}
}

// writeEncodeValue emits statements writing expr, a value of type t.
func (g *Generator) writeEncodeValue(w *writer.Writer, t typemodel.TypeRef, expr string, depth int) error {
	if t.Nullable {
		w.WriteLinef("if %s == nil {", expr)
		w.Indent()
		w.WriteBlock("if err := w.WriteNull(); err != nil {", "}", func() {
			w.WriteLine("return err")
		})
		w.Dedent()
		w.WriteLine("} else {")
		w.Indent()
		inner := expr
		if !pointerShaped(t) {
			inner = "*" + expr
		}
		if err := g.writeEncodeValue(w, t.AsNonNull(), inner, depth+1); err != nil {
			return err
		}
		w.Dedent()
		w.WriteLine("}")
		return nil
	}

	switch t.Kind {
	case typemodel.KindNamed:
		var call string
		switch t.RawName() {
		case "String":
			call = fmt.Sprintf("w.WriteString(%s)", expr)
		case "Int":
			call = fmt.Sprintf("w.WriteInt(%s)", expr)
		case "Float":
			call = fmt.Sprintf("w.WriteFloat(%s)", expr)
		case "Boolean":
			call = fmt.Sprintf("w.WriteBool(%s)", expr)
		default:
			call = fmt.Sprintf("New%sCodec().Encode(w, %s)", t.SimpleName(), expr)
		}
		w.WriteBlock(fmt.Sprintf("if err := %s; err != nil {", call), "}", func() {
			w.WriteLine("return err")
		})
		return nil
	case typemodel.KindParameterized:
		if t.RawName() != "List" || len(t.Args) != 1 {
			return fmt.Errorf("cannot render type %s", t.String())
		}
		w.WriteBlock("if err := w.BeginArray(); err != nil {", "}", func() {
			w.WriteLine("return err")
		})
		elemVar := fmt.Sprintf("e%d", depth)
		w.WriteLinef("for _, %s := range %s {", elemVar, expr)
		w.Indent()
		if err := g.writeEncodeValue(w, t.Args[0], elemVar, depth+1); err != nil {
			return err
		}
		w.Dedent()
		w.WriteLine("}")
		w.WriteBlock("if err := w.EndArray(); err != nil {", "}", func() {
			w.WriteLine("return err")
		})
		return nil
	default:
		return fmt.Errorf("cannot render type %s", t.String())
	}
}

// goType maps a resolved type reference to its Go spelling. Nullable
// builtins become pointers; user types are always rendered by pointer, so
// their nullable form adds nothing.
func (g *Generator) goType(t typemodel.TypeRef) (string, error) {
	switch t.Kind {
	case typemodel.KindNamed:
		var base string
		switch t.RawName() {
		case "String":
			base = "string"
		case "Int":
			base = "int64"
		case "Float":
			base = "float64"
		case "Boolean":
			base = "bool"
		default:
			return "*" + t.SimpleName(), nil
		}
		if t.Nullable {
			return "*" + base, nil
		}
		return base, nil
	case typemodel.KindParameterized:
		if t.RawName() != "List" || len(t.Args) != 1 {
			return "", fmt.Errorf("cannot render type %s", t.String())
		}
		elem, err := g.goType(t.Args[0])
		if err != nil {
			return "", err
		}
		if t.Nullable {
			return "*[]" + elem, nil
		}
		return "[]" + elem, nil
	default:
		return "", fmt.Errorf("cannot render type %s", t.String())
	}
}

// goLiteral renders a declared default value as a Go expression of the
// property's rendered type.
func (g *Generator) goLiteral(t typemodel.TypeRef, val any) (string, error) {
	if val == nil {
		return "nil", nil
	}
	var lit string
	switch v := val.(type) {
	case string:
		lit = strconv.Quote(v)
	case int64:
		lit = fmt.Sprintf("int64(%d)", v)
	case float64:
		lit = fmt.Sprintf("float64(%s)", strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		lit = strconv.FormatBool(v)
	default:
		return "", fmt.Errorf("cannot render default value %v", val)
	}
	if t.Nullable && !pointerShaped(t) {
		return fmt.Sprintf("runtime.Ptr(%s)", lit), nil
	}
	return lit, nil
}

// pointerShaped reports whether the non-null rendering of t is already a
// pointer type.
func pointerShaped(t typemodel.TypeRef) bool {
	if t.Kind != typemodel.KindNamed {
		return false
	}
	switch t.RawName() {
	case "String", "Int", "Float", "Boolean":
		return false
	}
	return true
}

func dataErrorExpr(kind, property, wireName string) string {
	return fmt.Sprintf("&runtime.DataError{Kind: runtime.%s, Property: %q, WireName: %q}", kind, property, wireName)
}

func decodeMethod(h *delegate.Handle) string {
	return "decode" + exportedName(strings.TrimSuffix(h.Name, "Codec"))
}

func encodeMethod(h *delegate.Handle) string {
	return "encode" + exportedName(strings.TrimSuffix(h.Name, "Codec"))
}

func qualifierNote(h *delegate.Handle) string {
	if len(h.Qualifiers) == 0 {
		return ""
	}
	names := make([]string, 0, len(h.Qualifiers))
	for _, q := range h.Qualifiers {
		names = append(names, "@"+q.SimpleName())
	}
	return " qualified by " + strings.Join(names, ", ")
}

func optionsVar(p *plan.CodecPlan) string {
	return unexportedName(p.CodecName) + "Names"
}

func slotVar(s plan.DecodeStep) string {
	return fmt.Sprintf("p%d", s.Index)
}

func packageOf(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[:i]
	}
	return "types"
}

// exportedName converts a property name to an exported Go identifier
func exportedName(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func unexportedName(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToLower(name[:1]) + name[1:]
}
