package typemodel

import (
	"fmt"
	"sort"
	"strings"
)

// QualifierArg is one named argument of a qualifier instantiation.
type QualifierArg struct {
	Name  string
	Value string
}

// Qualifier is a value-object marker attached to a property or parameter. It
// participates in delegate identity: two same-typed properties with different
// qualifier sets get different delegates. Identity is the qualified
// annotation name plus its ordered argument values.
type Qualifier struct {
	Name string
	Args []QualifierArg
}

// Key returns a canonical encoding of the qualifier for equality and
// deduplication.
func (q Qualifier) Key() string {
	if len(q.Args) == 0 {
		return q.Name
	}
	parts := make([]string, len(q.Args))
	for i, a := range q.Args {
		parts[i] = fmt.Sprintf("%s=%s", a.Name, a.Value)
	}
	return q.Name + "(" + strings.Join(parts, ",") + ")"
}

// SimpleName returns the last segment of the qualifier's qualified name.
func (q Qualifier) SimpleName() string {
	if i := strings.LastIndex(q.Name, "."); i >= 0 {
		return q.Name[i+1:]
	}
	return q.Name
}

// QualifierSetKey returns a canonical, order-independent encoding of a
// qualifier set. Two sets with the same members produce the same key
// regardless of declaration order.
func QualifierSetKey(qs []Qualifier) string {
	if len(qs) == 0 {
		return ""
	}
	keys := make([]string, len(qs))
	for i, q := range qs {
		keys[i] = q.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, ";")
}
