package runtime

// Options is a prepared wire-name table for SelectName. Building it once per
// codec mirrors the generated code, which hoists the table into a constant.
type Options struct {
	names []string
}

// NewOptions creates a selection table over the given wire names.
func NewOptions(names ...string) *Options {
	return &Options{names: names}
}

// Names returns the table contents in selection order.
func (o *Options) Names() []string {
	return append([]string(nil), o.names...)
}

func (o *Options) indexOf(name string) int {
	for i, n := range o.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Reader is the streaming token source the decode state machine consumes.
// Implementations sit on top of an actual JSON tokenizer; the executor only
// relies on this contract.
type Reader interface {
	// BeginObject consumes the opening brace of an object.
	BeginObject() error

	// EndObject consumes the closing brace of an object.
	EndObject() error

	// BeginArray consumes the opening bracket of an array.
	BeginArray() error

	// EndArray consumes the closing bracket of an array.
	EndArray() error

	// HasNext reports whether the current object or array has another
	// name/value pair or element.
	HasNext() (bool, error)

	// SelectName consumes the next object name and returns its index in
	// options, or -1 when the name is not in the table.
	SelectName(options *Options) (int, error)

	// SkipValue discards the next value, including nested structures.
	SkipValue() error

	// PeekNull reports whether the next value is a JSON null without
	// consuming it.
	PeekNull() (bool, error)

	// ReadNull consumes a JSON null.
	ReadNull() error

	// ReadString consumes a string value.
	ReadString() (string, error)

	// ReadInt consumes an integer value.
	ReadInt() (int64, error)

	// ReadFloat consumes a number value.
	ReadFloat() (float64, error)

	// ReadBool consumes a boolean value.
	ReadBool() (bool, error)
}

// Writer is the streaming token sink the encode loop writes to.
type Writer interface {
	BeginObject() error
	EndObject() error
	BeginArray() error
	EndArray() error

	// Name writes an object key; the next write must be its value.
	Name(name string) error

	WriteString(v string) error
	WriteInt(v int64) error
	WriteFloat(v float64) error
	WriteBool(v bool) error
	WriteNull() error
}
