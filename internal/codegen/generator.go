// Package codegen renders compiled codec plans into source files. Each
// target language registers a Generator; the generate command looks one up
// by name and feeds it every plan produced for the schema.
package codegen

import (
	"github.com/codecgen-platform/codecgen/internal/descriptor"
	"github.com/codecgen-platform/codecgen/internal/plan"
)

// Generator is the interface that all language-specific codec renderers must
// implement
type Generator interface {
	// Generate renders one target's codec from its descriptor and compiled
	// plan and returns the generated source as bytes
	Generate(target *descriptor.TargetType, p *plan.CodecPlan) ([]byte, error)

	// Language returns the name of the target language (e.g., "go", "typescript")
	Language() string

	// FileExtension returns the file extension for generated files (e.g., ".go", ".ts")
	FileExtension() string
}
