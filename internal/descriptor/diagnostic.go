package descriptor

import "fmt"

// Code identifies one class of schema-shape violation.
type Code string

const (
	CodeWrongKind                     Code = "wrong-kind"
	CodeAbstractType                  Code = "abstract-type"
	CodeLocalOrInnerType              Code = "local-or-inner-type"
	CodeSealedType                    Code = "sealed-type"
	CodeBadConstructorVisibility      Code = "bad-constructor-visibility"
	CodeBadPropertyVisibility         Code = "bad-property-visibility"
	CodeParameterWithoutProperty      Code = "parameter-without-property-or-default"
	CodeTransientWithoutDefault       Code = "transient-without-default"
	CodeInvalidQualifierRetention     Code = "invalid-qualifier-retention"
	CodeInvalidQualifierTarget        Code = "invalid-qualifier-target"
	CodeUnresolvableSupertype         Code = "unresolvable-supertype"
	CodePropertyParameterTypeMismatch Code = "property-parameter-type-mismatch"
)

// fatal reports whether a diagnostic with this code invalidates the type.
// Qualifier metadata violations are error-level but do not abort the type;
// the offending qualifier is dropped instead.
func (c Code) fatal() bool {
	switch c {
	case CodeInvalidQualifierRetention, CodeInvalidQualifierTarget:
		return false
	}
	return true
}

// Diagnostic is one reported schema-shape violation. Diagnostics are plain
// values: the builder never raises them as control-flow errors.
type Diagnostic struct {
	Code    Code
	Type    string // qualified name of the affected type
	Member  string // property or parameter name, empty for type-level issues
	Message string
}

// Fatal reports whether the diagnostic invalidates its type.
func (d Diagnostic) Fatal() bool {
	return d.Code.fatal()
}

func (d Diagnostic) String() string {
	if d.Member != "" {
		return fmt.Sprintf("%s: %s.%s: %s", d.Code, d.Type, d.Member, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Code, d.Type, d.Message)
}

// Reporter receives diagnostics as they are found. Implementations must be
// append-only; the builder reports in declaration order within one type.
type Reporter interface {
	Report(d Diagnostic)
}

// Collector is a Reporter that accumulates diagnostics in order.
type Collector struct {
	Diagnostics []Diagnostic
}

// Report appends the diagnostic.
func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// HasFatal reports whether any collected diagnostic invalidates its type.
func (c *Collector) HasFatal() bool {
	for _, d := range c.Diagnostics {
		if d.Code.fatal() {
			return true
		}
	}
	return false
}
