package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/okra-platform/apigen/internal/codegen"
	"github.com/okra-platform/apigen/internal/config"
	"github.com/okra-platform/apigen/internal/model"
	"github.com/okra-platform/apigen/internal/postgen"
	"github.com/okra-platform/apigen/internal/sink"
	"github.com/okra-platform/apigen/internal/watch"
)

type mockConfigLoader struct {
	mock.Mock
}

func (m *mockConfigLoader) Load(opts config.LoadOptions) (*config.Config, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*config.Config), args.Error(1)
}

type mockModelLoader struct {
	mock.Mock
}

func (m *mockModelLoader) Load(ctx context.Context, location string) (*model.Model, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Model), args.Error(1)
}

type mockCommandRunner struct {
	mock.Mock
}

func (m *mockCommandRunner) Run(ctx context.Context, cfg postgen.Config) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// memorySink records artifacts instead of writing them
type memorySink struct {
	mu        sync.Mutex
	outputDir string
	typesDir  string
	written   map[string]string
	writes    int
	err       error
}

func (s *memorySink) Path(a codegen.Artifact) string {
	if a.Kind == codegen.KindService {
		return filepath.Join(s.outputDir, a.FileName())
	}
	return filepath.Join(s.typesDir, a.FileName())
}

func (s *memorySink) Write(artifacts []codegen.Artifact) (sink.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return sink.Report{}, s.err
	}
	if s.written == nil {
		s.written = make(map[string]string)
	}
	s.writes++
	var report sink.Report
	for _, a := range artifacts {
		path := s.Path(a)
		s.written[path] = string(a.Content)
		report.Written = append(report.Written, path)
	}
	return report, nil
}

func (s *memorySink) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type memorySinkFactory struct {
	sink *memorySink
}

func (f *memorySinkFactory) NewSink(cfg *config.Config) ArtifactSink {
	f.sink.outputDir = cfg.OutputDir()
	f.sink.typesDir = cfg.TypesDir()
	return f.sink
}

type mockSignalNotifier struct {
	mock.Mock
}

func (m *mockSignalNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	m.Called(c, sig)
}

func (m *mockSignalNotifier) Stop(c chan<- os.Signal) {
	m.Called(c)
}

// fakeWatcher delivers the scripted change batches and then returns
type fakeWatcher struct {
	added    []string
	dirs     []string
	batches  [][]string
	onChange watch.ChangeFunc
	closed   bool
}

func (w *fakeWatcher) AddFile(path string) error {
	w.added = append(w.added, path)
	return nil
}

func (w *fakeWatcher) AddDirectory(dir string) error {
	w.dirs = append(w.dirs, dir)
	return nil
}

func (w *fakeWatcher) Start(ctx context.Context) error {
	for _, batch := range w.batches {
		w.onChange(ctx, batch)
	}
	return context.Canceled
}

func (w *fakeWatcher) Close() error {
	w.closed = true
	return nil
}

type fakeWatcherFactory struct {
	watcher *fakeWatcher
	opts    watch.Options
}

func (f *fakeWatcherFactory) NewWatcher(opts watch.Options, onChange watch.ChangeFunc) (Watcher, error) {
	f.opts = opts
	f.watcher.onChange = onChange
	return f.watcher, nil
}

type mockFileSystem struct {
	files  map[string][]byte
	writes map[string][]byte
}

func (m *mockFileSystem) ReadFile(name string) ([]byte, error) {
	if data, ok := m.files[name]; ok {
		return data, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if m.writes == nil {
		m.writes = make(map[string][]byte)
	}
	m.writes[name] = data
	return nil
}

func (m *mockFileSystem) Stat(name string) (os.FileInfo, error) {
	if _, ok := m.files[name]; ok {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockFileSystem) Glob(pattern string) ([]string, error) {
	var matches []string
	for name := range m.files {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

type mockOutput struct {
	mu       sync.Mutex
	messages []string
}

func (o *mockOutput) Printf(format string, a ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, fmt.Sprintf(format, a...))
}

func (o *mockOutput) Println(a ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, fmt.Sprintln(a...))
}

// testDeps returns dependencies with in-memory fakes for everything
func testDeps() (Dependencies, *memorySink) {
	out := &memorySink{}
	return Dependencies{
		ConfigLoader:   new(mockConfigLoader),
		ModelLoader:    new(mockModelLoader),
		SinkFactory:    &memorySinkFactory{sink: out},
		CommandRunner:  new(mockCommandRunner),
		WatcherFactory: &fakeWatcherFactory{watcher: &fakeWatcher{}},
		SignalNotifier: new(mockSignalNotifier),
		FileSystem:     &mockFileSystem{files: map[string][]byte{}},
		Output:         &mockOutput{},
		Logger:         zerolog.Nop(),
	}, out
}
