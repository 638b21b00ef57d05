package descriptor

import (
	"fmt"

	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// rootTypeName is the universal supertype; it declares nothing of interest
// and is skipped during the supertype walk.
const rootTypeName = "Any"

// Builder turns raw host metadata into validated TargetType descriptors.
// Validation is collect-all-then-fail per type: every violation in one type
// is reported before the type is rejected, but an invalid type is never
// handed to later stages.
type Builder struct {
	universe Universe
	resolver *typemodel.Resolver
	reporter Reporter
}

// NewBuilder creates a builder over the given collaborators.
func NewBuilder(universe Universe, resolver *typemodel.Resolver, reporter Reporter) *Builder {
	return &Builder{universe: universe, resolver: resolver, reporter: reporter}
}

// Build validates raw and produces its descriptor. It returns (nil, false)
// when the type has at least one fatal violation; all diagnostics for the
// type are reported either way.
func (b *Builder) Build(raw *RawType) (*TargetType, bool) {
	valid := true
	report := func(code Code, member, format string, args ...any) {
		b.reporter.Report(Diagnostic{
			Code:    code,
			Type:    raw.Name,
			Member:  member,
			Message: fmt.Sprintf(format, args...),
		})
		if code.fatal() {
			valid = false
		}
	}

	b.checkKind(raw, report)

	ctor := raw.Constructor
	if ctor == nil {
		ctor = &RawConstructor{Visibility: raw.Visibility}
	}
	if ctor.Visibility == Private {
		report(CodeBadConstructorVisibility, "",
			"primary constructor is private; it must be internal or wider")
	}

	props, ok := b.collectProperties(raw, report)
	if !ok {
		return nil, false
	}

	target := &TargetType{
		Name:        raw.Name,
		Visibility:  raw.Visibility,
		IsDataClass: raw.IsDataClass,
		TypeParams:  raw.TypeParams,
	}

	// Constructor parameters: each must be backed by a same-typed property
	// or carry a default value.
	byName := make(map[string]int, len(props))
	for i, p := range props {
		byName[p.Name] = i
	}
	for idx, param := range ctor.Params {
		tp := TargetParameter{
			Name:           param.Name,
			Index:          idx,
			Type:           param.Type,
			HasDefault:     param.HasDefault,
			DefaultLiteral: param.DefaultLiteral,
			JSONName:       param.JSONName,
			Qualifiers:     b.checkQualifiers(raw.Name, param.Name, param.Qualifiers, report),
		}
		target.Params = append(target.Params, tp)

		pi, backed := byName[param.Name]
		if !backed {
			if !param.HasDefault {
				report(CodeParameterWithoutProperty, param.Name,
					"constructor parameter has no backing property and no default value")
			}
			continue
		}
		prop := &props[pi]
		if !b.sameResolvedType(param.Type, prop.Type) {
			report(CodePropertyParameterTypeMismatch, param.Name,
				"property type %s does not match constructor parameter type %s",
				prop.Type, param.Type)
			continue
		}
		prop.ParameterIndex = idx
		prop.HasDefault = param.HasDefault
		prop.DefaultLiteral = param.DefaultLiteral
		if param.JSONName != "" {
			// Wire-name resolution order: parameter's explicit name wins
			// over the property's.
			prop.JSONName = param.JSONName
		}
		prop.Qualifiers = mergeQualifiers(prop.Qualifiers, tp.Qualifiers)
	}

	for i := range props {
		p := &props[i]
		if p.Visibility == Private && !p.Transient {
			report(CodeBadPropertyVisibility, p.Name,
				"property is private; private properties must be transient")
		}
		if p.Transient && !p.HasDefault {
			report(CodeTransientWithoutDefault, p.Name,
				"transient property needs a default value")
		}
		if p.JSONName == "" {
			p.JSONName = p.Name
		}
	}

	target.Properties = props
	if !valid {
		return nil, false
	}
	return target, true
}

func (b *Builder) checkKind(raw *RawType, report func(Code, string, string, ...any)) {
	if raw.Kind != KindClass {
		report(CodeWrongKind, "", "codec targets must be classes, not %s declarations", raw.Kind)
	}
	if raw.IsAbstract {
		report(CodeAbstractType, "", "cannot generate a codec for an abstract type")
	}
	if raw.IsSealed {
		report(CodeSealedType, "", "cannot generate a codec for a sealed type")
	}
	if raw.IsLocal || raw.IsInner {
		report(CodeLocalOrInnerType, "", "cannot generate a codec for a local or inner type")
	}
}

// collectProperties gathers declared and inherited properties,
// nearest-declaration-wins on name collision. Interface supertypes and the
// universal root are skipped; an unresolvable class supertype is fatal.
func (b *Builder) collectProperties(raw *RawType, report func(Code, string, string, ...any)) ([]TargetProperty, bool) {
	var out []TargetProperty
	seen := make(map[string]bool)
	ok := true

	add := func(rp RawProperty) {
		if seen[rp.Name] {
			return
		}
		seen[rp.Name] = true
		out = append(out, TargetProperty{
			Name:           rp.Name,
			Type:           rp.Type,
			JSONName:       rp.JSONName,
			HasDefault:     rp.HasDefault,
			DefaultLiteral: rp.DefaultLiteral,
			Transient:      rp.Transient,
			ParameterIndex: -1,
			Settable:       rp.Mutable,
			Visibility:     rp.Visibility,
			Qualifiers:     b.checkQualifiers(raw.Name, rp.Name, rp.Qualifiers, report),
		})
	}

	for _, rp := range raw.Properties {
		add(rp)
	}

	pending := append([]string(nil), raw.Supertypes...)
	walked := make(map[string]bool)
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		if name == rootTypeName || walked[name] {
			continue
		}
		walked[name] = true
		super, found := b.universe.LookupType(name)
		if !found {
			report(CodeUnresolvableSupertype, "",
				"supertype %s is not resolvable in this type system", name)
			ok = false
			continue
		}
		if super.Kind != KindClass {
			continue
		}
		for _, rp := range super.Properties {
			add(rp)
		}
		pending = append(pending, super.Supertypes...)
	}

	return out, ok
}

// checkQualifiers validates qualifier metadata and returns the usable
// subset. Violations are error-level diagnostics but do not invalidate the
// type; the offending qualifier is simply excluded from delegate identity.
func (b *Builder) checkQualifiers(typeName, member string, qs []typemodel.Qualifier, report func(Code, string, string, ...any)) []typemodel.Qualifier {
	var kept []typemodel.Qualifier
	for _, q := range qs {
		info, known := b.universe.QualifierInfo(q.Name)
		if !known || !info.RuntimeRetained {
			report(CodeInvalidQualifierRetention, member,
				"qualifier @%s is not runtime-retained", q.SimpleName())
			continue
		}
		if !info.TargetsField {
			report(CodeInvalidQualifierTarget, member,
				"qualifier @%s is not applicable to fields", q.SimpleName())
			continue
		}
		kept = append(kept, q)
	}
	return kept
}

// sameResolvedType compares two references after alias unwrapping, so a
// property declared with an alias still matches its constructor parameter.
func (b *Builder) sameResolvedType(a, c typemodel.TypeRef) bool {
	ra, _ := b.resolver.Unalias(a)
	rc, _ := b.resolver.Unalias(c)
	return ra.Equal(rc)
}

func mergeQualifiers(a, b []typemodel.Qualifier) []typemodel.Qualifier {
	seen := make(map[string]bool, len(a))
	out := append([]typemodel.Qualifier(nil), a...)
	for _, q := range a {
		seen[q.Key()] = true
	}
	for _, q := range b {
		if !seen[q.Key()] {
			seen[q.Key()] = true
			out = append(out, q)
		}
	}
	return out
}
