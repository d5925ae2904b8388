package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/okra-platform/apigen/internal/codegen"
	"github.com/okra-platform/apigen/internal/config"
	"github.com/okra-platform/apigen/internal/model"
	"github.com/okra-platform/apigen/internal/postgen"
	"github.com/okra-platform/apigen/internal/sink"
	"github.com/okra-platform/apigen/internal/source"
	"github.com/okra-platform/apigen/internal/watch"
)

// Dependencies shared by the commands
type Dependencies struct {
	ConfigLoader   ConfigLoader
	ModelLoader    ModelLoader
	SinkFactory    SinkFactory
	CommandRunner  CommandRunner
	WatcherFactory WatcherFactory
	SignalNotifier SignalNotifier
	FileSystem     FileSystem
	Output         Output
	Logger         zerolog.Logger
}

// Interfaces for dependency injection
type ConfigLoader interface {
	Load(opts config.LoadOptions) (*config.Config, error)
}

type ModelLoader interface {
	Load(ctx context.Context, location string) (*model.Model, error)
}

type ArtifactSink interface {
	Path(a codegen.Artifact) string
	Write(artifacts []codegen.Artifact) (sink.Report, error)
}

type SinkFactory interface {
	NewSink(cfg *config.Config) ArtifactSink
}

type CommandRunner interface {
	Run(ctx context.Context, cfg postgen.Config) error
}

type Watcher interface {
	AddFile(path string) error
	AddDirectory(dir string) error
	Start(ctx context.Context) error
	Close() error
}

type WatcherFactory interface {
	NewWatcher(opts watch.Options, onChange watch.ChangeFunc) (Watcher, error)
}

type SignalNotifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Stat(name string) (os.FileInfo, error)
	Glob(pattern string) ([]string, error)
}

type Output interface {
	Printf(format string, a ...any)
	Println(a ...any)
}

// DefaultDependencies wires the real implementations
func DefaultDependencies(logger zerolog.Logger) Dependencies {
	return Dependencies{
		ConfigLoader:   &defaultConfigLoader{},
		ModelLoader:    source.NewLoader(source.WithLogger(logger)),
		SinkFactory:    &defaultSinkFactory{logger: logger},
		CommandRunner:  postgen.New(logger),
		WatcherFactory: &defaultWatcherFactory{logger: logger},
		SignalNotifier: &defaultSignalNotifier{},
		FileSystem:     &osFileSystem{},
		Output:         &defaultOutput{},
		Logger:         logger,
	}
}

// Default implementations
type defaultConfigLoader struct{}

func (l *defaultConfigLoader) Load(opts config.LoadOptions) (*config.Config, error) {
	return config.Load(opts)
}

type defaultSinkFactory struct {
	logger zerolog.Logger
}

func (f *defaultSinkFactory) NewSink(cfg *config.Config) ArtifactSink {
	return sink.New(cfg.OutputDir(), cfg.TypesDir(), f.logger)
}

type defaultWatcherFactory struct {
	logger zerolog.Logger
}

func (f *defaultWatcherFactory) NewWatcher(opts watch.Options, onChange watch.ChangeFunc) (Watcher, error) {
	w, err := watch.NewFileWatcher(opts, f.logger, onChange)
	if err != nil {
		return nil, err
	}
	return w, nil
}

type defaultSignalNotifier struct{}

func (n *defaultSignalNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (n *defaultSignalNotifier) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

type osFileSystem struct{}

func (fs *osFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

type defaultOutput struct{}

func (o *defaultOutput) Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

func (o *defaultOutput) Println(a ...any) {
	fmt.Println(a...)
}
