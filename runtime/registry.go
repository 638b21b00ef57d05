package runtime

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codecgen-platform/codecgen/internal/delegate"
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// DefaultSource supplies the declared default value of a property or
// constructor parameter when the decode loop leaves its defaults-mask bit
// set. The host front-end builds one per target type from schema literals.
type DefaultSource interface {
	Default(property string) (any, bool)
}

// Defaults is a map-backed DefaultSource.
type Defaults map[string]any

// Default implements DefaultSource.
func (d Defaults) Default(property string) (any, bool) {
	v, ok := d[property]
	return v, ok
}

// Registry resolves delegate handles to codec implementations. Resolved
// codecs are shared through a bounded LRU cache, mirroring the
// adapter-caching behavior of the generated runtime: one codec instance per
// (type, qualifier set) key, reused across executors.
type Registry struct {
	cache     *lru.Cache[delegate.Key, Codec]
	executors map[string]*Executor
	overrides map[delegate.Key]Codec
}

// NewRegistry creates a registry whose codec cache holds at most size
// entries.
func NewRegistry(size int) (*Registry, error) {
	cache, err := lru.New[delegate.Key, Codec](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create codec cache: %w", err)
	}
	return &Registry{
		cache:     cache,
		executors: make(map[string]*Executor),
		overrides: make(map[delegate.Key]Codec),
	}, nil
}

// RegisterExecutor makes a compiled plan's executor available for nested
// decoding of its target type.
func (r *Registry) RegisterExecutor(e *Executor) {
	r.executors[e.plan.TargetName] = e
}

// RegisterOverride installs a custom codec for one delegate key. Qualified
// delegates with no override fall back to the unqualified codec for their
// type; the qualifier still splits the cache entry.
func (r *Registry) RegisterOverride(key delegate.Key, c Codec) {
	r.overrides[key] = c
}

// Codec resolves the implementation for a delegate handle.
func (r *Registry) Codec(h *delegate.Handle) (Codec, error) {
	key := h.Key()
	if c, ok := r.overrides[key]; ok {
		return c, nil
	}
	if c, ok := r.cache.Get(key); ok {
		return c, nil
	}
	c, err := r.build(h.Type)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, c)
	return c, nil
}

func (r *Registry) build(t typemodel.TypeRef) (Codec, error) {
	inner, err := r.buildNonNull(t)
	if err != nil {
		return nil, err
	}
	if t.Nullable {
		return nullableCodec{inner: inner}, nil
	}
	return inner, nil
}

func (r *Registry) buildNonNull(t typemodel.TypeRef) (Codec, error) {
	switch t.RawName() {
	case "String":
		return stringCodec{}, nil
	case "Int":
		return intCodec{}, nil
	case "Float":
		return floatCodec{}, nil
	case "Boolean":
		return boolCodec{}, nil
	case "List":
		if len(t.Args) != 1 {
			return nil, fmt.Errorf("list type %s needs exactly one argument", t)
		}
		elem, err := r.build(t.Args[0])
		if err != nil {
			return nil, err
		}
		return listCodec{elem: elem}, nil
	}
	if exec, ok := r.executors[t.RawName()]; ok {
		return instanceCodec{exec: exec}, nil
	}
	return nil, fmt.Errorf("no codec available for type %s", t)
}
