package commands

import (
	"context"
	"fmt"
	"os"
)

// ValidateDependencies for the validate command
type ValidateDependencies struct {
	ConfigLoader ConfigLoader
	Output       Output
}

// ValidateCommand checks every configured IDL file without writing output
type ValidateCommand struct {
	deps ValidateDependencies
}

// NewValidateCommand creates a new validate command with default
// dependencies
func NewValidateCommand() *ValidateCommand {
	return &ValidateCommand{
		deps: ValidateDependencies{
			ConfigLoader: &defaultConfigLoader{},
			Output:       &defaultOutput{},
		},
	}
}

// WithDependencies allows injecting custom dependencies for testing
func (vc *ValidateCommand) WithDependencies(deps ValidateDependencies) *ValidateCommand {
	vc.deps = deps
	return vc
}

// Execute parses and validates the project's schemas, printing every
// diagnostic. It fails when any type is invalid.
func (vc *ValidateCommand) Execute(ctx context.Context) error {
	cfg, root, err := vc.deps.ConfigLoader.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}

	files, err := cfg.SchemaFiles(root)
	if err != nil {
		return err
	}

	fatal := false
	types := 0
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read schema %s: %w", file, err)
		}

		result, err := CompileDocument(string(content), cfg.Language)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		for _, d := range result.Diagnostics {
			vc.deps.Output.Printf("%s: %s\n", file, d)
		}
		if result.HasFatal() {
			fatal = true
		}
		types += len(result.Types)
	}

	if fatal {
		return fmt.Errorf("schema validation failed")
	}

	vc.deps.Output.Printf("Validated %d type(s) across %d file(s)\n", types, len(files))
	return nil
}
