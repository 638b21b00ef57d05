package plan

import (
	"fmt"

	"github.com/codecgen-platform/codecgen/internal/delegate"
	"github.com/codecgen-platform/codecgen/internal/descriptor"
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// Compile turns a validated descriptor and its delegate resolution into a
// codec plan. Errors here are programming-error class: a descriptor that
// passed validation should always compile.
func Compile(target *descriptor.TargetType, res *delegate.Resolution, resolver *typemodel.Resolver) (*CodecPlan, error) {
	p := &CodecPlan{
		TargetName:       target.Name,
		CodecName:        target.SimpleName() + "Codec",
		ConstructorArity: len(target.Params),
		Delegates:        res.Handles,
	}
	if p.ConstructorArity > 0 {
		p.MaskWordCount = (p.ConstructorArity + maskBits - 1) / maskBits
	}
	for _, param := range target.Params {
		if param.HasDefault {
			p.UsesDefaults = true
			break
		}
	}

	for _, prop := range target.Properties {
		if prop.Transient {
			p.Transients = append(p.Transients, prop.Name)
		}
	}

	for _, prop := range target.WireProperties() {
		h := res.ForProperty(prop.Name)
		if h == nil {
			return nil, fmt.Errorf("no delegate resolved for property %s.%s", target.Name, prop.Name)
		}

		idx := len(p.Selection)
		p.Selection = append(p.Selection, SelectionEntry{
			WireName: prop.JSONName,
			Property: prop.Name,
		})

		resolved, _ := resolver.Unalias(prop.Type)
		step := DecodeStep{
			Index:      idx,
			Property:   prop.Name,
			WireName:   prop.JSONName,
			Delegate:   h,
			Nullable:   resolved.Nullable,
			HasDefault: prop.HasDefault,
			CtorIndex:  prop.ParameterIndex,
		}
		switch {
		case prop.ConstructorBacked() && prop.HasDefault:
			// Defaulted constructor parameters track explicit provision
			// through the mask word, not a was-set flag.
			step.UsesMask = true
			step.MaskWord = prop.ParameterIndex / maskBits
			step.MaskBit = prop.ParameterIndex % maskBits
		case !prop.ConstructorBacked() && prop.HasDefault && resolved.Nullable:
			// Nullable-with-default settable properties must tell
			// JSON-null apart from JSON-absent.
			step.TracksPresence = true
		}
		p.Decode = append(p.Decode, step)

		p.Encode = append(p.Encode, EncodeStep{
			WireName: prop.JSONName,
			Property: prop.Name,
			Delegate: h,
		})
	}

	p.Keep = buildKeepRule(target, p)
	return p, nil
}

// buildKeepRule assembles the shrinker description: the defaults-mask
// constructor path needs the full erased parameter shape for reflective
// lookup, and every qualifier annotation type must survive stripping.
func buildKeepRule(target *descriptor.TargetType, p *CodecPlan) KeepRule {
	rule := KeepRule{
		TargetName:   target.Name,
		CodecName:    p.CodecName,
		UsesDefaults: p.UsesDefaults,
	}
	if p.UsesDefaults {
		sig := make([]string, 0, len(target.Params)+p.MaskWordCount+1)
		for _, param := range target.Params {
			sig = append(sig, param.Type.RawName())
		}
		for i := 0; i < p.MaskWordCount; i++ {
			sig = append(sig, "Int")
		}
		sig = append(sig, "DefaultConstructorMarker")
		rule.ConstructorSig = sig
	}
	seen := make(map[string]bool)
	for _, h := range p.Delegates {
		for _, q := range h.Qualifiers {
			if !seen[q.Name] {
				seen[q.Name] = true
				rule.QualifierTypes = append(rule.QualifierTypes, q.Name)
			}
		}
	}
	return rule
}
