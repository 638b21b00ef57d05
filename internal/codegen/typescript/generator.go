// Package typescript renders a compiled codec plan into TypeScript source.
// TypeScript codecs operate on already-parsed JSON values; absence is
// modeled with undefined, which stands in for the defaults-mask accounting
// the Go renderer emits.
package typescript

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

// Generator renders TypeScript codec source from a compiled plan
type Generator struct {
	moduleName string
}

// NewGenerator creates a new TypeScript codec renderer
func NewGenerator(moduleName string) *Generator {
	return &Generator{
		moduleName: moduleName,
	}
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "typescript"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".ts"
}

// Generate renders the interface and codec class for one target type
func (g *Generator) Generate(target *descriptor.TargetType, p *plan.CodecPlan) ([]byte, error) {
	w := writer.NewWriter("  ") // TypeScript typically uses 2 spaces
	w.WriteLine("// Code generated by codecgen. DO NOT EDIT.")
	w.BlankLine()

	if err := g.generateInterface(w, target); err != nil {
		return nil, err
	}
	w.BlankLine()
	g.generateNames(w, p)
	w.BlankLine()
	if err := g.generateClass(w, target, p); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// generateInterface renders the target's declared shape. Settable
// properties without defaults are optional; everything else is present
// after a successful decode.
func (g *Generator) generateInterface(w *writer.Writer, target *descriptor.TargetType) error {
	w.WriteLinef("export interface %s {", target.SimpleName())
	w.Indent()
	for _, prop := range target.Properties {
		tsType, err := g.tsType(prop.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", prop.Name, err)
		}
		optional := ""
		if prop.Settable && !prop.HasDefault {
			optional = "?"
		}
		w.WriteLinef("%s%s: %s;", prop.Name, optional, tsType)
	}
	w.Dedent()
	w.WriteLine("}")
	return nil
}

func (g *Generator) generateNames(w *writer.Writer, p *plan.CodecPlan) {
	names := make([]string, 0, len(p.Selection))
	for _, e := range p.Selection {
		names = append(names, strconv.Quote(e.WireName))
	}
	w.WriteLinef("const %s: readonly string[] = [%s];", namesVar(p), strings.Join(names, ", "))
}

func (g *Generator) generateClass(w *writer.Writer, target *descriptor.TargetType, p *plan.CodecPlan) error {
	w.WriteLinef("export class %s {", p.CodecName)
	w.Indent()

	if err := g.generateDecode(w, target, p); err != nil {
		return err
	}
	w.BlankLine()
	if err := g.generateEncode(w, target, p); err != nil {
		return err
	}
	for _, h := range p.Delegates {
		w.BlankLine()
		if err := g.generateDecodeDelegate(w, h); err != nil {
			return err
		}
		w.BlankLine()
		if err := g.generateEncodeDelegate(w, h); err != nil {
			return err
		}
	}

	w.Dedent()
	w.WriteLine("}")
	return nil
}

// generateDecode renders the decode method: one slot per wire property,
// a selection loop over the object's keys, then construction with defaults
// and required checks.
func (g *Generator) generateDecode(w *writer.Writer, target *descriptor.TargetType, p *plan.CodecPlan) error {
	w.WriteLinef("decode(value: unknown): %s {", target.SimpleName())
	w.Indent()
	w.WriteBlock(`if (value === null || typeof value !== "object" || Array.isArray(value)) {`, "}", func() {
		w.WriteLinef("throw new Error(%q);", "expected an object for "+target.SimpleName())
	})
	w.WriteLine("const obj = value as Record<string, unknown>;")
	for _, s := range p.Decode {
		prop := target.Property(s.Property)
		tsType, err := g.tsType(prop.Type)
		if err != nil {
			return fmt.Errorf("property %s: %w", s.Property, err)
		}
		w.WriteLinef("let %s: %s | undefined;", slotVar(s), tsType)
	}
	w.WriteLine("for (const key of Object.keys(obj)) {")
	w.Indent()
	w.WriteLinef("const idx = %s.indexOf(key);", namesVar(p))
	w.WriteBlock("if (idx === -1) {", "}", func() {
		w.WriteLine("continue; // unknown names are skipped")
	})
	w.WriteLine("switch (idx) {")
	w.Indent()
	for _, s := range p.Decode {
		w.WriteLinef("case %d: { // %s", s.Index, s.Property)
		w.Indent()
		w.WriteLinef("const raw = obj[%q];", s.WireName)
		if !s.Nullable {
			w.WriteBlock("if (raw === null) {", "}", func() {
				w.WriteLinef("throw new Error(%q);", fmt.Sprintf("unexpected null for property %s (JSON name %s)", s.Property, s.WireName))
			})
		}
		w.WriteLinef("%s = this.%s(raw);", slotVar(s), decodeMethod(s.Delegate))
		w.WriteLine("break;")
		w.Dedent()
		w.WriteLine("}")
	}
	w.Dedent()
	w.WriteLine("}")
	w.Dedent()
	w.WriteLine("}")

	for _, s := range p.ConstructorSteps() {
		if !s.HasDefault && !s.Nullable {
			w.WriteBlock(fmt.Sprintf("if (%s === undefined) {", slotVar(s)), "}", func() {
				w.WriteLinef("throw new Error(%q);", fmt.Sprintf("required property %s (JSON name %s) is missing", s.Property, s.WireName))
			})
		}
	}

	w.WriteLinef("const out: %s = {", target.SimpleName())
	w.Indent()
	for _, s := range p.ConstructorSteps() {
		expr, err := g.slotExpr(target, s)
		if err != nil {
			return err
		}
		w.WriteLinef("%s: %s,", s.Property, expr)
	}
	for _, name := range p.Transients {
		prop := target.Property(name)
		if prop == nil || !prop.HasDefault {
			continue
		}
		lit, err := tsLiteral(prop.DefaultLiteral)
		if err != nil {
			return fmt.Errorf("property %s: %w", name, err)
		}
		w.WriteLinef("%s: %s,", name, lit)
	}
	w.Dedent()
	w.WriteLine("};")

	for _, s := range p.SettableSteps() {
		if s.HasDefault {
			expr, err := g.slotExpr(target, s)
			if err != nil {
				return err
			}
			w.WriteLinef("out.%s = %s;", s.Property, expr)
		} else {
			w.WriteBlock(fmt.Sprintf("if (%s !== undefined) {", slotVar(s)), "}", func() {
				w.WriteLinef("out.%s = %s;", s.Property, slotVar(s))
			})
		}
	}
	w.WriteLine("return out;")
	w.Dedent()
	w.WriteLine("}")
	return nil
}

// slotExpr renders the construction expression for one decoded slot:
// undefined falls back to the declared default, or to null for nullable
// properties without one.
func (g *Generator) slotExpr(target *descriptor.TargetType, s plan.DecodeStep) (string, error) {
	slot := slotVar(s)
	if s.HasDefault {
		prop := target.Property(s.Property)
		lit, err := tsLiteral(prop.DefaultLiteral)
		if err != nil {
			return "", fmt.Errorf("property %s: %w", s.Property, err)
		}
		return fmt.Sprintf("%s === undefined ? %s : %s", slot, lit, slot), nil
	}
	if s.Nullable {
		return fmt.Sprintf("%s === undefined ? null : %s", slot, slot), nil
	}
	// required; checked above
	return slot, nil
}

func (g *Generator) generateEncode(w *writer.Writer, target *descriptor.TargetType, p *plan.CodecPlan) error {
	w.WriteLinef("encode(value: %s): Record<string, unknown> {", target.SimpleName())
	w.Indent()
	w.WriteBlock("if (value === null || value === undefined) {", "}", func() {
		w.WriteLinef("throw new Error(%q);", "cannot encode a null "+target.SimpleName())
	})
	w.WriteLine("return {")
	w.Indent()
	for _, s := range p.Encode {
		prop := target.Property(s.Property)
		expr := "value." + s.Property
		if prop.Settable && !prop.HasDefault {
			// optional property; undefined is dropped by JSON.stringify
			w.WriteLinef("%q: value.%s === undefined ? undefined : this.%s(value.%s),",
				s.WireName, s.Property, encodeMethod(s.Delegate), s.Property)
			continue
		}
		w.WriteLinef("%q: this.%s(%s),", s.WireName, encodeMethod(s.Delegate), expr)
	}
	w.Dedent()
	w.WriteLine("};")
	w.Dedent()
	w.WriteLine("}")
	return nil
}

func (g *Generator) generateDecodeDelegate(w *writer.Writer, h *delegate.Handle) error {
	tsType, err := g.tsType(h.Type)
	if err != nil {
		return fmt.Errorf("delegate %s: %w", h.Name, err)
	}
	if note := qualifierNote(h); note != "" {
		w.WriteComment(note)
	}
	w.WriteLinef("private %s(v: unknown): %s {", decodeMethod(h), tsType)
	w.Indent()
	if err := g.writeDecodeReturn(w, h.Type, "v", 0); err != nil {
		return fmt.Errorf("delegate %s: %w", h.Name, err)
	}
	w.Dedent()
	w.WriteLine("}")
	return nil
}

func (g *Generator) generateEncodeDelegate(w *writer.Writer, h *delegate.Handle) error {
	tsType, err := g.tsType(h.Type)
	if err != nil {
		return fmt.Errorf("delegate %s: %w", h.Name, err)
	}
	w.WriteLinef("private %s(v: %s): unknown {", encodeMethod(h), tsType)
	w.Indent()
	if err := g.writeEncodeReturn(w, h.Type, "v", 0); err != nil {
		return fmt.Errorf("delegate %s: %w", h.Name, err)
	}
	w.Dedent()
	w.WriteLine("}")
	return nil
}

// writeDecodeReturn emits statements that validate expr as a value of type
// t and return the decoded result.
func (g *Generator) writeDecodeReturn(w *writer.Writer, t typemodel.TypeRef, expr string, depth int) error {
	if t.Nullable {
		w.WriteBlock(fmt.Sprintf("if (%s === null) {", expr), "}", func() {
			w.WriteLine("return null;")
		})
		return g.writeDecodeReturn(w, t.AsNonNull(), expr, depth)
	}

	switch t.Kind {
	case typemodel.KindNamed:
		switch t.RawName() {
		case "String":
			w.WriteBlock(fmt.Sprintf(`if (typeof %s !== "string") {`, expr), "}", func() {
				w.WriteLinef("throw new Error(%q);", "expected a string")
			})
			w.WriteLinef("return %s;", expr)
		case "Int":
			w.WriteBlock(fmt.Sprintf(`if (typeof %s !== "number" || !Number.isInteger(%s)) {`, expr, expr), "}", func() {
				w.WriteLinef("throw new Error(%q);", "expected an integer")
			})
			w.WriteLinef("return %s;", expr)
		case "Float":
			w.WriteBlock(fmt.Sprintf(`if (typeof %s !== "number") {`, expr), "}", func() {
				w.WriteLinef("throw new Error(%q);", "expected a number")
			})
			w.WriteLinef("return %s;", expr)
		case "Boolean":
			w.WriteBlock(fmt.Sprintf(`if (typeof %s !== "boolean") {`, expr), "}", func() {
				w.WriteLinef("throw new Error(%q);", "expected a boolean")
			})
			w.WriteLinef("return %s;", expr)
		default:
			w.WriteLinef("return new %sCodec().decode(%s);", t.SimpleName(), expr)
		}
		return nil
	case typemodel.KindParameterized:
		if t.RawName() != "List" || len(t.Args) != 1 {
			return fmt.Errorf("cannot render type %s", t.String())
		}
		w.WriteBlock(fmt.Sprintf("if (!Array.isArray(%s)) {", expr), "}", func() {
			w.WriteLinef("throw new Error(%q);", "expected an array")
		})
		elemVar := fmt.Sprintf("e%d", depth)
		w.WriteLinef("return %s.map((%s: unknown) => {", expr, elemVar)
		w.Indent()
		if err := g.writeDecodeReturn(w, t.Args[0], elemVar, depth+1); err != nil {
			return err
		}
		w.Dedent()
		w.WriteLine("});")
		return nil
	default:
		return fmt.Errorf("cannot render type %s", t.String())
	}
}

// writeEncodeReturn emits statements that return the wire form of expr.
func (g *Generator) writeEncodeReturn(w *writer.Writer, t typemodel.TypeRef, expr string, depth int) error {
	if t.Nullable {
		w.WriteBlock(fmt.Sprintf("if (%s === null) {", expr), "}", func() {
			w.WriteLine("return null;")
		})
		return g.writeEncodeReturn(w, t.AsNonNull(), expr, depth)
	}

	switch t.Kind {
	case typemodel.KindNamed:
		switch t.RawName() {
		case "String", "Int", "Float", "Boolean":
			w.WriteLinef("return %s;", expr)
		default:
			w.WriteLinef("return new %sCodec().encode(%s);", t.SimpleName(), expr)
		}
		return nil
	case typemodel.KindParameterized:
		if t.RawName() != "List" || len(t.Args) != 1 {
			return fmt.Errorf("cannot render type %s", t.String())
		}
		elemType, err := g.tsType(t.Args[0])
		if err != nil {
			return err
		}
		elemVar := fmt.Sprintf("e%d", depth)
		w.WriteLinef("return %s.map((%s: %s) => {", expr, elemVar, elemType)
		w.Indent()
		if err := g.writeEncodeReturn(w, t.Args[0], elemVar, depth+1); err != nil {
			return err
		}
		w.Dedent()
		w.WriteLine("});")
		return nil
	default:
		return fmt.Errorf("cannot render type %s", t.String())
	}
}

// tsType maps a resolved type reference to its TypeScript spelling.
func (g *Generator) tsType(t typemodel.TypeRef) (string, error) {
	var base string
	switch t.Kind {
	case typemodel.KindNamed:
		switch t.RawName() {
		case "String":
			base = "string"
		case "Int", "Float":
			base = "number"
		case "Boolean":
			base = "boolean"
		default:
			base = t.SimpleName()
		}
	case typemodel.KindParameterized:
		if t.RawName() != "List" || len(t.Args) != 1 {
			return "", fmt.Errorf("cannot render type %s", t.String())
		}
		elem, err := g.tsType(t.Args[0])
		if err != nil {
			return "", err
		}
		base = fmt.Sprintf("Array<%s>", elem)
	default:
		return "", fmt.Errorf("cannot render type %s", t.String())
	}
	if t.Nullable {
		return base + " | null", nil
	}
	return base, nil
}

// tsLiteral renders a declared default value as a TypeScript expression.
func tsLiteral(val any) (string, error) {
	if val == nil {
		return "null", nil
	}
	switch v := val.(type) {
	case string:
		return strconv.Quote(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("cannot render default value %v", val)
}

func qualifierNote(h *delegate.Handle) string {
	if len(h.Qualifiers) == 0 {
		return ""
	}
	names := make([]string, 0, len(h.Qualifiers))
	for _, q := range h.Qualifiers {
		names = append(names, "@"+q.SimpleName())
	}
	return "qualified by " + strings.Join(names, ", ")
}

func namesVar(p *plan.CodecPlan) string {
	name := p.CodecName
	return strings.ToLower(name[:1]) + name[1:] + "Names"
}

func slotVar(s plan.DecodeStep) string {
	return fmt.Sprintf("p%d", s.Index)
}

func decodeMethod(h *delegate.Handle) string {
	base := strings.TrimSuffix(h.Name, "Codec")
	return "decode" + strings.ToUpper(base[:1]) + base[1:]
}

func encodeMethod(h *delegate.Handle) string {
	base := strings.TrimSuffix(h.Name, "Codec")
	return "encode" + strings.ToUpper(base[:1]) + base[1:]
}
