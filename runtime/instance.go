package runtime

import "reflect"

// Instance is a dynamically-typed value of one target type, produced by the
// decode state machine and consumed by the encode loop.
type Instance struct {
	typeName string
	fields   map[string]any
}

// NewInstance creates an empty instance of the named target type.
func NewInstance(typeName string) *Instance {
	return &Instance{typeName: typeName, fields: make(map[string]any)}
}

// TypeName returns the qualified target type name.
func (i *Instance) TypeName() string {
	return i.typeName
}

// Get returns a property value and whether it is set.
func (i *Instance) Get(name string) (any, bool) {
	v, ok := i.fields[name]
	return v, ok
}

// Set assigns a property value.
func (i *Instance) Set(name string, v any) {
	i.fields[name] = v
}

// Equal reports deep value equality with another instance.
func (i *Instance) Equal(o *Instance) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.typeName == o.typeName && reflect.DeepEqual(i.fields, o.fields)
}
