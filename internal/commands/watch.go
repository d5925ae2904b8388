package commands

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/okra-platform/apigen/internal/config"
	"github.com/okra-platform/apigen/internal/source"
	"github.com/okra-platform/apigen/internal/watch"
)

// WatchOptions are the command line options of watch
type WatchOptions struct {
	ConfigPath string
	Source     string
}

// WatchCommand regenerates whenever the model, config or template file changes
type WatchCommand struct {
	deps Dependencies
}

// NewWatchCommand creates a watch command
func NewWatchCommand(deps Dependencies) *WatchCommand {
	return &WatchCommand{deps: deps}
}

// WithDependencies allows injecting custom dependencies for testing
func (wc *WatchCommand) WithDependencies(deps Dependencies) *WatchCommand {
	wc.deps = deps
	return wc
}

// Execute runs an initial generation and then watches until interrupted
func (wc *WatchCommand) Execute(ctx context.Context, opts WatchOptions) error {
	cfg, err := loadConfig(wc.deps.ConfigLoader, opts.ConfigPath, opts.Source)
	if err != nil {
		return err
	}
	if source.IsRemote(cfg.Source) {
		return errors.WithHint(
			errors.Newf("cannot watch remote source %s", cfg.Source),
			"point source at a local model file, or run generate on demand",
		)
	}

	wc.deps.Output.Printf("👀 Watching %s\n", cfg.SourceLocation())

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	wc.deps.SignalNotifier.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer wc.deps.SignalNotifier.Stop(sigChan)

	// Start signal handler
	go func() {
		select {
		case <-sigChan:
			wc.deps.Output.Println("\n👋 Stopping watch...")
			cancel()
		case <-ctx.Done():
			// Context cancelled, no need to do anything
		}
	}()

	generate := NewGenerateCommand(wc.deps)
	wc.regenerate(ctx, generate, cfg)

	// The callback runs on the goroutine of Start, after w is assigned
	var w Watcher
	watched := make(map[string]bool)
	w, err = wc.deps.WatcherFactory.NewWatcher(watchOptions, func(ctx context.Context, paths []string) {
		if cfg.File != "" && slices.Contains(paths, cfg.File) {
			reloaded, err := loadConfig(wc.deps.ConfigLoader, cfg.File, opts.Source)
			if err != nil {
				wc.deps.Logger.Error().Err(err).Msg("config reload failed, keeping the previous config")
			} else {
				wc.deps.Logger.Info().Str("config", cfg.File).Msg("config reloaded")
				cfg = reloaded
				if err := watchInputs(w, cfg, watched); err != nil {
					wc.deps.Logger.Warn().Err(err).Msg("failed to watch the reloaded inputs")
				}
			}
		}
		wc.deps.Logger.Info().Strs("changed", paths).Msg("regenerating")
		wc.regenerate(ctx, generate, cfg)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := watchInputs(w, cfg, watched); err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "watch failed")
	}
	return nil
}

// regenerate logs failures instead of returning them so watching continues
func (wc *WatchCommand) regenerate(ctx context.Context, generate *GenerateCommand, cfg *config.Config) {
	if err := generate.Run(ctx, cfg, false); err != nil {
		wc.deps.Logger.Error().Err(err).Msg("generation failed")
	}
}

// watchOptions pick template partials out of the template directory
var watchOptions = watch.Options{
	Patterns: []string{"**/" + partialPattern},
	Exclude:  []string{"node_modules/", ".git/"},
}

// watchInputs adds the on-disk inputs of cfg that are not in watched yet
func watchInputs(w Watcher, cfg *config.Config, watched map[string]bool) error {
	for _, path := range watchedFiles(cfg) {
		if watched[path] {
			continue
		}
		if err := w.AddFile(path); err != nil {
			return err
		}
		watched[path] = true
	}
	if cfg.TemplatePath == "" {
		return nil
	}
	dir := filepath.Dir(cfg.Resolve(cfg.TemplatePath))
	key := dir + string(filepath.Separator)
	if watched[key] {
		return nil
	}
	if err := w.AddDirectory(dir); err != nil {
		return err
	}
	watched[key] = true
	return nil
}

// watchedFiles are the inputs of a generation run that live on disk
func watchedFiles(cfg *config.Config) []string {
	files := []string{strings.TrimPrefix(cfg.SourceLocation(), "file://")}
	if cfg.File != "" {
		files = append(files, cfg.File)
	}
	if cfg.TemplatePath != "" {
		files = append(files, cfg.Resolve(cfg.TemplatePath))
	}
	return files
}
