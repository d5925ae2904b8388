package commands

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/okra-platform/apigen/internal/codegen"
	"github.com/okra-platform/apigen/internal/config"
)

// partialPattern selects the template partials loaded next to templatePath
const partialPattern = "*.tmpl"

// GenerateOptions are the command line options of generate
type GenerateOptions struct {
	ConfigPath string
	// Source overrides the configured model location
	Source string
	// DryRun lists the artifacts without writing them
	DryRun bool
}

// GenerateCommand runs one generation pass
type GenerateCommand struct {
	deps Dependencies
}

// NewGenerateCommand creates a generate command with its default dependencies
func NewGenerateCommand(deps Dependencies) *GenerateCommand {
	return &GenerateCommand{deps: deps}
}

// WithDependencies allows injecting custom dependencies for testing
func (gc *GenerateCommand) WithDependencies(deps Dependencies) *GenerateCommand {
	gc.deps = deps
	return gc
}

// Execute loads the configuration and generates once
func (gc *GenerateCommand) Execute(ctx context.Context, opts GenerateOptions) error {
	cfg, err := loadConfig(gc.deps.ConfigLoader, opts.ConfigPath, opts.Source)
	if err != nil {
		return err
	}
	return gc.Run(ctx, cfg, opts.DryRun)
}

// Run generates from an already loaded configuration: load the model, generate,
// write the artifacts and run the post-generation command
func (gc *GenerateCommand) Run(ctx context.Context, cfg *config.Config, dryRun bool) error {
	log := gc.deps.Logger

	opts, err := gc.codegenOptions(cfg)
	if err != nil {
		return err
	}

	location := cfg.SourceLocation()
	m, err := gc.deps.ModelLoader.Load(ctx, location)
	if err != nil {
		return errors.Wrap(err, "failed to load description model")
	}
	log.Info().Str("source", location).Int("apis", len(m.APIs)).Int("types", len(m.Types)).Msg("loaded description model")

	result, err := codegen.New(opts, codegen.WithLogger(log)).Generate(m)
	if err != nil {
		return errors.Wrap(err, "failed to generate")
	}

	out := gc.deps.SinkFactory.NewSink(cfg)
	if dryRun {
		for _, a := range result.Artifacts {
			gc.deps.Output.Println(out.Path(a))
		}
		gc.deps.Output.Printf("%d artifacts, %d warnings (dry run, nothing written)\n", len(result.Artifacts), len(result.Diagnostics))
		return nil
	}

	report, err := out.Write(result.Artifacts)
	if err != nil {
		return errors.Wrap(err, "failed to write artifacts")
	}
	gc.deps.Output.Printf("Generated %d files (%d written, %d unchanged), %d warnings\n",
		len(result.Artifacts), len(report.Written), len(report.Unchanged), len(result.Diagnostics))

	if !cfg.PostGeneration.Enabled {
		return nil
	}
	if err := gc.deps.CommandRunner.Run(ctx, cfg.PostGen()); err != nil {
		return errors.Wrap(err, "post-generation command failed")
	}
	return nil
}

// codegenOptions converts the config, reading the template file when one is configured.
// Other *.tmpl files next to it are loaded as partials.
func (gc *GenerateCommand) codegenOptions(cfg *config.Config) (codegen.Options, error) {
	opts := cfg.CodegenOptions()
	if cfg.TemplatePath == "" {
		return opts, nil
	}

	path := cfg.Resolve(cfg.TemplatePath)
	text, err := gc.deps.FileSystem.ReadFile(path)
	if err != nil {
		return opts, errors.WithHintf(
			errors.Mark(errors.Wrapf(err, "failed to read template %s", path), codegen.ErrTemplateNotFound),
			"check templatePath, or remove it to use the %q template", cfg.Template,
		)
	}
	opts.TemplateText = string(text)

	siblings, err := gc.deps.FileSystem.Glob(filepath.Join(filepath.Dir(path), partialPattern))
	if err != nil {
		return opts, errors.Wrapf(err, "failed to list partials next to %s", path)
	}
	for _, sibling := range siblings {
		if sibling == path {
			continue
		}
		text, err := gc.deps.FileSystem.ReadFile(sibling)
		if err != nil {
			return opts, errors.Wrapf(err, "failed to read partial %s", sibling)
		}
		if opts.TemplatePartials == nil {
			opts.TemplatePartials = make(map[string]string)
		}
		opts.TemplatePartials[filepath.Base(sibling)] = string(text)
	}
	return opts, nil
}

func loadConfig(loader ConfigLoader, path, sourceOverride string) (*config.Config, error) {
	opts := config.LoadOptions{Path: path}
	if sourceOverride != "" {
		opts.Overrides = map[string]any{"source": sourceOverride}
	}
	cfg, err := loader.Load(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}
