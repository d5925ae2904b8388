package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"

	"github.com/okra-platform/apigen/internal/codegen"
	"github.com/okra-platform/apigen/internal/config"
)

// InitOptions are the answers that end up in the new config file
type InitOptions struct {
	Source       string
	OutputDir    string
	TypesDir     string
	Template     string
	UseInterface bool
}

// InitCommand writes a starter apigen.yaml
type InitCommand struct {
	deps Dependencies
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

// NewInitCommand creates an init command
func NewInitCommand(deps Dependencies) *InitCommand {
	return &InitCommand{deps: deps}
}

// Run prompts for the settings and writes apigen.yaml into dir
func (ic *InitCommand) Run(ctx context.Context, dir string, force bool) error {
	return ic.RunWithOptions(ctx, dir, force)
}

// RunWithOptions is Run with bubbletea program options for the form
func (ic *InitCommand) RunWithOptions(ctx context.Context, dir string, force bool, opts ...tea.ProgramOption) error {
	target := filepath.Join(dir, config.FileNames[0])
	if _, err := ic.deps.FileSystem.Stat(target); err == nil && !force {
		return errors.WithHint(
			errors.Newf("%s already exists", target),
			"pass --force to overwrite it",
		)
	}

	var options *InitOptions
	var err error

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return errors.Wrap(err, "failed to get init options")
		}
	}

	data, err := config.Marshal(map[string]any{
		"source":          options.Source,
		"output.dir":      options.OutputDir,
		"output.typesDir": options.TypesDir,
		"template":        options.Template,
		"useInterface":    options.UseInterface,
	})
	if err != nil {
		return err
	}
	if _, err := config.Parse(data); err != nil {
		return errors.Wrap(err, "generated config is invalid")
	}

	if err := ic.deps.FileSystem.WriteFile(target, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", target)
	}

	ic.deps.Output.Printf("✅ Created %s\n", target)
	return nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	defaults := config.Defaults()
	options := &InitOptions{
		Source:       defaults["source"].(string),
		OutputDir:    defaults["output.dir"].(string),
		TypesDir:     defaults["output.typesDir"].(string),
		Template:     codegen.DefaultTemplate,
		UseInterface: true,
	}

	form := ic.createInitForm(options)

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

	return options, nil
}

func (ic *InitCommand) createInitForm(options *InitOptions) *huh.Form {
	templates := make([]huh.Option[string], 0)
	for _, name := range codegen.DefaultRegistry.Names() {
		templates = append(templates, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Description model").
				Description("Path or URL of the API description model").
				Value(&options.Source).
				Validate(notEmpty("source")),

			huh.NewInput().
				Title("Service output directory").
				Value(&options.OutputDir).
				Validate(notEmpty("output directory")),

			huh.NewInput().
				Title("Types output directory").
				Value(&options.TypesDir).
				Validate(notEmpty("types directory")),

			huh.NewSelect[string]().
				Title("Template").
				Description("Request style of the generated services").
				Options(templates...).
				Value(&options.Template),

			huh.NewConfirm().
				Title("Generate interfaces?").
				Description("No generates type aliases and unions instead").
				Value(&options.UseInterface),
		),
	)
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}
