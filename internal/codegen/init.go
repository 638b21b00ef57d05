package codegen

import (
	"github.com/codecgen-platform/codecgen/internal/codegen/golang"
	"github.com/codecgen-platform/codecgen/internal/codegen/typescript"
)

// DefaultRegistry is the global registry instance with pre-registered renderers
var DefaultRegistry = NewRegistry()

func init() {
	// Register Go renderer
	DefaultRegistry.Register("go", func(packageName string) Generator {
		return golang.NewGenerator(packageName)
	})

	// Register TypeScript renderer
	DefaultRegistry.Register("typescript", func(packageName string) Generator {
		return typescript.NewGenerator(packageName)
	})

	// Register ts as an alias for typescript
	DefaultRegistry.Register("ts", func(packageName string) Generator {
		return typescript.NewGenerator(packageName)
	})
}
