package runtime

// Ptr returns a pointer to v. Generated code uses it to spell pointer-typed
// default values in a single expression.
func Ptr[T any](v T) *T {
	return &v
}
