package runtime

import (
	"fmt"
)

// Codec decodes and encodes one value shape. Decoded values use a small
// dynamic vocabulary: string, int64, float64, bool, []any, *Instance, and
// nil for JSON null.
type Codec interface {
	Decode(r Reader) (any, error)
	Encode(w Writer, v any) error
}

type stringCodec struct{}

func (stringCodec) Decode(r Reader) (any, error) { return r.ReadString() }

func (stringCodec) Encode(w Writer, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", v)
	}
	return w.WriteString(s)
}

type intCodec struct{}

func (intCodec) Decode(r Reader) (any, error) { return r.ReadInt() }

func (intCodec) Encode(w Writer, v any) error {
	switch n := v.(type) {
	case int64:
		return w.WriteInt(n)
	case int:
		return w.WriteInt(int64(n))
	}
	return fmt.Errorf("expected integer, got %T", v)
}

type floatCodec struct{}

func (floatCodec) Decode(r Reader) (any, error) { return r.ReadFloat() }

func (floatCodec) Encode(w Writer, v any) error {
	switch n := v.(type) {
	case float64:
		return w.WriteFloat(n)
	case int64:
		return w.WriteFloat(float64(n))
	}
	return fmt.Errorf("expected number, got %T", v)
}

type boolCodec struct{}

func (boolCodec) Decode(r Reader) (any, error) { return r.ReadBool() }

func (boolCodec) Encode(w Writer, v any) error {
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("expected boolean, got %T", v)
	}
	return w.WriteBool(b)
}

// listCodec delegates elements to a shared element codec.
type listCodec struct {
	elem Codec
}

func (c listCodec) Decode(r Reader) (any, error) {
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	out := []any{}
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		v, err := c.elem.Decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := r.EndArray(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c listCodec) Encode(w Writer, v any) error {
	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("expected list, got %T", v)
	}
	if err := w.BeginArray(); err != nil {
		return err
	}
	for _, item := range items {
		if err := c.elem.Encode(w, item); err != nil {
			return err
		}
	}
	return w.EndArray()
}

// nullableCodec admits JSON null, decoding it to nil and encoding nil back
// to null.
type nullableCodec struct {
	inner Codec
}

func (c nullableCodec) Decode(r Reader) (any, error) {
	isNull, err := r.PeekNull()
	if err != nil {
		return nil, err
	}
	if isNull {
		return nil, r.ReadNull()
	}
	return c.inner.Decode(r)
}

func (c nullableCodec) Encode(w Writer, v any) error {
	if v == nil {
		return w.WriteNull()
	}
	return c.inner.Encode(w, v)
}

// instanceCodec runs a nested plan through its executor.
type instanceCodec struct {
	exec *Executor
}

func (c instanceCodec) Decode(r Reader) (any, error) {
	return c.exec.Decode(r)
}

func (c instanceCodec) Encode(w Writer, v any) error {
	inst, ok := v.(*Instance)
	if !ok {
		return fmt.Errorf("expected %s instance, got %T", c.exec.plan.TargetName, v)
	}
	return c.exec.encodeFields(w, inst)
}
