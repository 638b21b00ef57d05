package runtime

import (
	"fmt"

	"github.com/codecgen-platform/codecgen/internal/plan"
)

// Executor runs one codec plan. It is the runtime counterpart of the
// rendered codec: same selection table, same defaulting-mask protocol, same
// data-error surface.
type Executor struct {
	plan     *plan.CodecPlan
	reg      *Registry
	defaults DefaultSource
	options  *Options
	codecs   []Codec
}

// NewExecutor prepares an executor for a compiled plan. Delegate codecs are
// resolved lazily on first use so mutually-referential types can all be
// registered before any decode runs.
func NewExecutor(p *plan.CodecPlan, reg *Registry, defaults DefaultSource) *Executor {
	names := make([]string, len(p.Selection))
	for i, entry := range p.Selection {
		names[i] = entry.WireName
	}
	if defaults == nil {
		defaults = Defaults{}
	}
	return &Executor{
		plan:     p,
		reg:      reg,
		defaults: defaults,
		options:  NewOptions(names...),
		codecs:   make([]Codec, len(p.Decode)),
	}
}

// Plan returns the executed plan.
func (e *Executor) Plan() *plan.CodecPlan {
	return e.plan
}

func (e *Executor) codecFor(idx int) (Codec, error) {
	if e.codecs[idx] != nil {
		return e.codecs[idx], nil
	}
	c, err := e.reg.Codec(e.plan.Decode[idx].Delegate)
	if err != nil {
		return nil, fmt.Errorf("resolving delegate for %s.%s: %w",
			e.plan.TargetName, e.plan.Decode[idx].Property, err)
	}
	e.codecs[idx] = c
	return c, nil
}

// Decode reads one object for the plan's target type. Unknown fields are
// skipped; duplicate recognized fields, explicit nulls for non-nullable
// properties, and missing required values are data errors.
func (e *Executor) Decode(r Reader) (*Instance, error) {
	steps := e.plan.Decode
	slots := make([]any, len(steps))
	set := make([]bool, len(steps))
	seen := make([]bool, len(steps))

	// The defaults mask starts fully set: every defaulted constructor
	// parameter is pending until an explicit value clears its bit.
	masks := make([]uint32, e.plan.MaskWordCount)
	for i := range masks {
		masks[i] = ^uint32(0)
	}

	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		idx, err := r.SelectName(e.options)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			if err := r.SkipValue(); err != nil {
				return nil, err
			}
			continue
		}
		step := &steps[idx]
		if seen[idx] {
			return nil, &DataError{Kind: DuplicateKey, Property: step.Property, WireName: step.WireName}
		}
		seen[idx] = true

		if !step.Nullable {
			isNull, err := r.PeekNull()
			if err != nil {
				return nil, err
			}
			if isNull {
				return nil, &DataError{Kind: UnexpectedNull, Property: step.Property, WireName: step.WireName}
			}
		}
		c, err := e.codecFor(idx)
		if err != nil {
			return nil, err
		}
		v, err := c.Decode(r)
		if err != nil {
			return nil, err
		}
		slots[idx] = v
		set[idx] = true
		if step.UsesMask {
			masks[step.MaskWord] &^= 1 << uint(step.MaskBit)
		}
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}

	return e.construct(slots, set, masks)
}

func (e *Executor) construct(slots []any, set []bool, masks []uint32) (*Instance, error) {
	inst := NewInstance(e.plan.TargetName)

	for _, step := range e.plan.ConstructorSteps() {
		if step.UsesMask {
			// Defaults path: a still-set bit selects the declared default.
			if masks[step.MaskWord]&(1<<uint(step.MaskBit)) == 0 {
				inst.Set(step.Property, slots[step.Index])
				continue
			}
			v, ok := e.defaults.Default(step.Property)
			if !ok {
				return nil, fmt.Errorf("no default value available for %s.%s",
					e.plan.TargetName, step.Property)
			}
			inst.Set(step.Property, v)
			continue
		}
		switch {
		case set[step.Index]:
			inst.Set(step.Property, slots[step.Index])
		case step.Nullable:
			inst.Set(step.Property, nil)
		default:
			return nil, &DataError{Kind: RequiredMissing, Property: step.Property, WireName: step.WireName}
		}
	}

	// Transient constructor placeholders keep their declared defaults.
	for _, name := range e.plan.Transients {
		if v, ok := e.defaults.Default(name); ok {
			inst.Set(name, v)
		}
	}

	// Settable properties apply after construction in declaration order.
	for _, step := range e.plan.SettableSteps() {
		if step.TracksPresence {
			// Absent and explicit-null differ: only an actually-read value
			// (including null) overrides the fresh instance's default.
			if set[step.Index] {
				inst.Set(step.Property, slots[step.Index])
			} else if v, ok := e.defaults.Default(step.Property); ok {
				inst.Set(step.Property, v)
			}
			continue
		}
		if v, ok := e.defaults.Default(step.Property); ok {
			inst.Set(step.Property, v)
		}
		if set[step.Index] && slots[step.Index] != nil {
			// decodedOrNull ?? existing
			inst.Set(step.Property, slots[step.Index])
		}
	}

	return inst, nil
}

// Encode writes one instance as an object. A nil root is always a caller
// error.
func (e *Executor) Encode(w Writer, inst *Instance) error {
	if inst == nil {
		return ErrNullRoot
	}
	return e.encodeFields(w, inst)
}

// encodeFields walks the emission order; encode steps align one-to-one with
// decode steps, so delegate codecs are shared between the two directions.
func (e *Executor) encodeFields(w Writer, inst *Instance) error {
	if err := w.BeginObject(); err != nil {
		return err
	}
	for i, step := range e.plan.Encode {
		if err := w.Name(step.WireName); err != nil {
			return err
		}
		v, _ := inst.Get(step.Property)
		if v == nil {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		c, err := e.codecFor(i)
		if err != nil {
			return err
		}
		if err := c.Encode(w, v); err != nil {
			return err
		}
	}
	return w.EndObject()
}
