package runtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// jsonWriter emits JSON text for the Writer contract, tracking element
// separators with a small scope stack.
type jsonWriter struct {
	buf    bytes.Buffer
	scopes []scope
}

type scope struct {
	array   bool
	count   int
	pending bool // a name was written, the next value needs no comma
}

// NewJSONWriter creates a Writer that accumulates JSON text in memory.
// Retrieve the output with JSONBytes.
func NewJSONWriter() Writer {
	return &jsonWriter{}
}

// JSONBytes returns the accumulated output of a Writer created by
// NewJSONWriter.
func JSONBytes(w Writer) []byte {
	if jw, ok := w.(*jsonWriter); ok {
		return jw.buf.Bytes()
	}
	return nil
}

func (w *jsonWriter) top() *scope {
	if len(w.scopes) == 0 {
		return nil
	}
	return &w.scopes[len(w.scopes)-1]
}

// beforeValue writes the separator a value needs in the current scope.
func (w *jsonWriter) beforeValue() {
	s := w.top()
	if s == nil {
		return
	}
	if s.pending {
		s.pending = false
		return
	}
	if s.count > 0 {
		w.buf.WriteByte(',')
	}
	s.count++
}

func (w *jsonWriter) BeginObject() error {
	w.beforeValue()
	w.buf.WriteByte('{')
	w.scopes = append(w.scopes, scope{})
	return nil
}

func (w *jsonWriter) EndObject() error {
	if s := w.top(); s == nil || s.array {
		return fmt.Errorf("not inside an object")
	}
	w.scopes = w.scopes[:len(w.scopes)-1]
	w.buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) BeginArray() error {
	w.beforeValue()
	w.buf.WriteByte('[')
	w.scopes = append(w.scopes, scope{array: true})
	return nil
}

func (w *jsonWriter) EndArray() error {
	if s := w.top(); s == nil || !s.array {
		return fmt.Errorf("not inside an array")
	}
	w.scopes = w.scopes[:len(w.scopes)-1]
	w.buf.WriteByte(']')
	return nil
}

func (w *jsonWriter) Name(name string) error {
	s := w.top()
	if s == nil || s.array {
		return fmt.Errorf("names are only valid inside objects")
	}
	if s.count > 0 {
		w.buf.WriteByte(',')
	}
	s.count++
	s.pending = true
	encoded, err := json.Marshal(name)
	if err != nil {
		return err
	}
	w.buf.Write(encoded)
	w.buf.WriteByte(':')
	return nil
}

func (w *jsonWriter) WriteString(v string) error {
	w.beforeValue()
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.buf.Write(encoded)
	return nil
}

func (w *jsonWriter) WriteInt(v int64) error {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatInt(v, 10))
	return nil
}

func (w *jsonWriter) WriteFloat(v float64) error {
	w.beforeValue()
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.buf.Write(encoded)
	return nil
}

func (w *jsonWriter) WriteBool(v bool) error {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatBool(v))
	return nil
}

func (w *jsonWriter) WriteNull() error {
	w.beforeValue()
	w.buf.WriteString("null")
	return nil
}
