package commands

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

//go:embed templates/*
var templatesFS embed.FS

type InitOptions struct {
	ProjectName string
	Language    string
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

type InitCommand struct {
	filesystem  FileSystem
	templatesFS fs.FS
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand() *InitCommand {
	return &InitCommand{
		filesystem:  &osFileSystem{},
		templatesFS: templatesFS,
	}
}

func (ic *InitCommand) Run(ctx context.Context) error {
	return ic.RunWithOptions(ctx)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts ...tea.ProgramOption) error {
	var options *InitOptions
	var err error

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return fmt.Errorf("failed to get init options: %w", err)
		}
	}

	if err := ic.scaffoldProject(options); err != nil {
		return fmt.Errorf("failed to scaffold project: %w", err)
	}

	fmt.Printf("Created %s project: %s\n", options.Language, options.ProjectName)
	return nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	var projectName string
	var language string

	form := ic.createInitForm(&projectName, &language)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		// Normal execution
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	return &InitOptions{
		ProjectName: projectName,
		Language:    language,
	}, nil
}

func (ic *InitCommand) createInitForm(projectName *string, language *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Description("Name of your new codecgen project").
				Value(projectName).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("project name cannot be empty")
					}
					if _, err := ic.filesystem.Stat(s); err == nil {
						return fmt.Errorf("directory %s already exists", s)
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Target language").
				Description("Language the codecs are generated in").
				Options(
					huh.NewOption("Go", "go"),
					huh.NewOption("TypeScript", "typescript"),
				).
				Value(language),
		),
	)
}

// scaffoldProject writes the embedded template for the chosen language
// into a new project directory, substituting the project name.
func (ic *InitCommand) scaffoldProject(options *InitOptions) error {
	if _, err := ic.filesystem.Stat(options.ProjectName); err == nil {
		return fmt.Errorf("directory %s already exists", options.ProjectName)
	}
	if err := ic.filesystem.MkdirAll(options.ProjectName, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	templateRoot := "templates/" + options.Language
	return fs.WalkDir(ic.templatesFS, templateRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == templateRoot {
			return nil
		}

		relPath, err := filepath.Rel(templateRoot, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(options.ProjectName, relPath)

		if d.IsDir() {
			return ic.filesystem.MkdirAll(destPath, 0755)
		}

		data, err := fs.ReadFile(ic.templatesFS, path)
		if err != nil {
			return err
		}
		content := strings.ReplaceAll(string(data), "{{ProjectName}}", options.ProjectName)

		return ic.filesystem.WriteFile(destPath, []byte(content), 0644)
	})
}
