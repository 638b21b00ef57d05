package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codecgen-platform/codecgen/internal/codegen"
	"github.com/codecgen-platform/codecgen/internal/config"
	"github.com/codecgen-platform/codecgen/internal/delegate"
	"github.com/codecgen-platform/codecgen/internal/descriptor"
	"github.com/codecgen-platform/codecgen/internal/plan"
	"github.com/codecgen-platform/codecgen/internal/schema"
	"github.com/codecgen-platform/codecgen/internal/typemodel"
)

// ConfigLoader resolves the project configuration
type ConfigLoader interface {
	LoadConfig() (*config.Config, string, error)
}

// Output abstracts user-facing prints for testing
type Output interface {
	Printf(format string, args ...any)
	Println(args ...any)
}

// OutputFS abstracts the files the generate command writes
type OutputFS interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
}

type defaultConfigLoader struct{}

func (l *defaultConfigLoader) LoadConfig() (*config.Config, string, error) {
	return config.LoadConfig()
}

type defaultOutput struct{}

func (o *defaultOutput) Printf(format string, args ...any) {
	fmt.Printf(format, args...)
}

func (o *defaultOutput) Println(args ...any) {
	fmt.Println(args...)
}

type defaultOutputFS struct{}

func (f *defaultOutputFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (f *defaultOutputFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// CompiledType is one target's rendered codec source plus its shrinker
// keep rule.
type CompiledType struct {
	Name     string
	FileName string
	Source   []byte
	Keep     plan.KeepRule
}

// CompileResult is everything produced from one IDL document.
type CompileResult struct {
	Package     string
	Types       []CompiledType
	Diagnostics []descriptor.Diagnostic
}

// HasFatal reports whether any diagnostic invalidated its type.
func (r *CompileResult) HasFatal() bool {
	for _, d := range r.Diagnostics {
		if d.Fatal() {
			return true
		}
	}
	return false
}

// CompileDocument parses one IDL document, validates every declared type
// and renders a codec for each valid one. Diagnostics are collected, not
// raised: a broken type suppresses its own codec without hiding issues in
// its siblings.
func CompileDocument(source, language string) (*CompileResult, error) {
	parsed, err := schema.ParseSchema(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	universe := schema.Lower(parsed)
	resolver := typemodel.NewResolver(universe.Aliases())
	collector := &descriptor.Collector{}
	builder := descriptor.NewBuilder(universe, resolver, collector)

	generator, err := codegen.DefaultRegistry.Get(language, "")
	if err != nil {
		return nil, err
	}

	result := &CompileResult{Package: universe.Meta().Package}
	for _, name := range universe.TypeNames() {
		raw, ok := universe.LookupType(name)
		if !ok {
			continue
		}
		target, ok := builder.Build(raw)
		if !ok {
			continue
		}
		resolution := delegate.Resolve(resolver, target.Properties)
		codecPlan, err := plan.Compile(target, resolution, resolver)
		if err != nil {
			return nil, fmt.Errorf("failed to compile plan for %s: %w", name, err)
		}
		src, err := generator.Generate(target, codecPlan)
		if err != nil {
			return nil, fmt.Errorf("failed to render codec for %s: %w", name, err)
		}
		result.Types = append(result.Types, CompiledType{
			Name:     name,
			FileName: strings.ToLower(target.SimpleName()) + ".codec" + generator.FileExtension(),
			Source:   src,
			Keep:     codecPlan.Keep,
		})
	}
	result.Diagnostics = collector.Diagnostics
	return result, nil
}

// GenerateDependencies for the generate command
type GenerateDependencies struct {
	ConfigLoader ConfigLoader
	FS           OutputFS
	Output       Output
}

// GenerateCommand encapsulates the generate logic with injected
// dependencies
type GenerateCommand struct {
	deps   GenerateDependencies
	logger zerolog.Logger
}

// NewGenerateCommand creates a new generate command with default
// dependencies
func NewGenerateCommand() *GenerateCommand {
	return &GenerateCommand{
		deps: GenerateDependencies{
			ConfigLoader: &defaultConfigLoader{},
			FS:           &defaultOutputFS{},
			Output:       &defaultOutput{},
		},
		logger: log.With().Str("component", "generate").Logger(),
	}
}

// WithDependencies allows injecting custom dependencies for testing
func (gc *GenerateCommand) WithDependencies(deps GenerateDependencies) *GenerateCommand {
	gc.deps = deps
	return gc
}

// Execute compiles every configured IDL file and writes the rendered
// codecs and the merged keep rules.
func (gc *GenerateCommand) Execute(ctx context.Context) error {
	cfg, root, err := gc.deps.ConfigLoader.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}

	files, err := cfg.SchemaFiles(root)
	if err != nil {
		return err
	}

	outDir := cfg.Generate.Output
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(root, outDir)
	}
	if err := gc.deps.FS.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var keep []plan.KeepRule
	fatal := false
	written := 0
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read schema %s: %w", file, err)
		}

		result, err := CompileDocument(string(content), cfg.Language)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		gc.reportDiagnostics(file, result.Diagnostics)
		if result.HasFatal() {
			fatal = true
			continue
		}

		for _, ct := range result.Types {
			outPath := filepath.Join(outDir, ct.FileName)
			if err := gc.deps.FS.WriteFile(outPath, ct.Source, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			gc.logger.Debug().Str("type", ct.Name).Str("file", outPath).Msg("wrote codec")
			keep = append(keep, ct.Keep)
			written++
		}
	}

	if fatal {
		return fmt.Errorf("schema validation failed; no codecs written for invalid types")
	}

	if cfg.Generate.KeepRules != "" {
		keepPath := cfg.Generate.KeepRules
		if !filepath.IsAbs(keepPath) {
			keepPath = filepath.Join(root, keepPath)
		}
		data, err := json.MarshalIndent(keep, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal keep rules: %w", err)
		}
		if err := gc.deps.FS.WriteFile(keepPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write keep rules: %w", err)
		}
	}

	gc.deps.Output.Printf("Generated %d codec(s) in %s\n", written, outDir)
	return nil
}

func (gc *GenerateCommand) reportDiagnostics(file string, diags []descriptor.Diagnostic) {
	for _, d := range diags {
		event := gc.logger.Error()
		if !d.Fatal() {
			event = gc.logger.Warn()
		}
		event.Str("file", file).Str("code", string(d.Code)).Str("type", d.Type).Msg(d.Message)
		gc.deps.Output.Printf("%s: %s\n", file, d)
	}
}
