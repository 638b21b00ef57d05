// Package plan compiles a validated target descriptor and its resolved
// delegates into a codec plan: the field-selection table, the ordered decode
// state machine with constructor-defaulting bitmask accounting, and the
// encode emission order. The plan is language-agnostic; renderers and the
// runtime executor both consume it.
package plan

import (
	"github.com/codecgen-platform/codecgen/internal/delegate"
)

// maskBits is the width of one defaults-mask word. The defaulting
// convention packs constructor parameters 32 per word: bit = index % 32,
// word = index / 32.
const maskBits = 32

// SelectionEntry maps one wire name to its property. The entry's position
// in the selection table is the index the decode loop dispatches on; -1
// denotes an unrecognized name.
type SelectionEntry struct {
	WireName string
	Property string
}

// DecodeStep drives decoding of one property. Steps appear in declaration
// order; the step's Index matches its selection-table position.
type DecodeStep struct {
	Index    int
	Property string
	WireName string
	Delegate *delegate.Handle

	// Nullable mirrors the property's resolved nullability: a delegate
	// returning explicit null for a non-nullable step is a data error.
	Nullable bool

	// HasDefault is set when an absent value falls back to a declared
	// default instead of being required.
	HasDefault bool

	// CtorIndex is the backing constructor parameter position, or -1 for a
	// settable-only property.
	CtorIndex int

	// TracksPresence marks a nullable, defaulted, settable-only property
	// that must differentiate JSON-null from JSON-absent via a was-set
	// flag.
	TracksPresence bool

	// MaskWord / MaskBit locate the defaults-mask bit to clear when an
	// explicit value is read. Only meaningful when UsesMask is true.
	UsesMask bool
	MaskWord int
	MaskBit  int
}

// EncodeStep emits one property: write the wire name, then delegate-encode
// the property's current value.
type EncodeStep struct {
	WireName string
	Property string
	Delegate *delegate.Handle
}

// KeepRule is the declarative dead-code-elimination description emitted
// alongside the plan for the host's shrinker tooling.
type KeepRule struct {
	TargetName     string   `json:"targetName"`
	CodecName      string   `json:"codecName"`
	UsesDefaults   bool     `json:"usesDefaultsConstructor"`
	ConstructorSig []string `json:"constructorSignature,omitempty"`
	QualifierTypes []string `json:"qualifierTypes,omitempty"`
}

// CodecPlan is the compiled output for one target type. Built once,
// immutable, consumed by renderers and the runtime executor.
type CodecPlan struct {
	TargetName string
	CodecName  string

	// Selection is the ordered wire-name table the decode loop matches
	// against.
	Selection []SelectionEntry

	// Decode holds one step per non-transient property in declaration
	// order.
	Decode []DecodeStep

	// ConstructorArity is the primary constructor's parameter count,
	// including transient placeholder parameters.
	ConstructorArity int

	// MaskWordCount is ceil(ConstructorArity / 32); zero when the
	// constructor has no parameters.
	MaskWordCount int

	// UsesDefaults is set when at least one constructor parameter carries a
	// default value, which routes construction through the defaults-mask
	// path.
	UsesDefaults bool

	// Delegates lists the shared handles in first-use order.
	Delegates []*delegate.Handle

	// Encode holds the emission order for serialization.
	Encode []EncodeStep

	// Transients names the transient properties, which stay off the wire
	// but need their declared defaults at construction time.
	Transients []string

	// Keep is the shrinker side output.
	Keep KeepRule
}

// ConstructorSteps returns the decode steps bound to constructor
// parameters, in parameter order.
func (p *CodecPlan) ConstructorSteps() []DecodeStep {
	out := make([]DecodeStep, 0, len(p.Decode))
	for _, s := range p.Decode {
		if s.CtorIndex >= 0 {
			out = append(out, s)
		}
	}
	return out
}

// SettableSteps returns the decode steps applied after construction, in
// declaration order.
func (p *CodecPlan) SettableSteps() []DecodeStep {
	out := make([]DecodeStep, 0, len(p.Decode))
	for _, s := range p.Decode {
		if s.CtorIndex < 0 {
			out = append(out, s)
		}
	}
	return out
}
