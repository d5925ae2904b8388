package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/apigen/internal/config"
)

func TestWatchCommand_Execute_RegeneratesOnChange(t *testing.T) {
	// Test: Initial generation plus one run per change batch; config edits are reloaded
	// and the inputs they introduce are watched from then on
	deps, out := testDeps()
	cfg := testConfig(t, "source: ./model.json\ntemplatePath: ./service.tmpl\n")
	reloaded := testConfig(t, "source: ./model.json\ntemplatePath: ./templates/v2.tmpl\napiPrefix: /v2\n")
	modelPath := filepath.Join(projectDir, "model.json")
	templatePath := filepath.Join(projectDir, "service.tmpl")
	v2Path := filepath.Join(projectDir, "templates", "v2.tmpl")
	deps.FileSystem = &mockFileSystem{files: map[string][]byte{
		templatePath: []byte("{{range .Endpoints}}{{.Path}}\n{{end}}"),
		v2Path:       []byte(`{{range .Endpoints}}{{template "row.tmpl" .}}{{end}}`),
		filepath.Join(projectDir, "templates", "row.tmpl"): []byte("v2 {{.Path}}\n"),
	}}

	loader := deps.ConfigLoader.(*mockConfigLoader)
	loader.On("Load", config.LoadOptions{}).Return(cfg, nil).Once()
	loader.On("Load", config.LoadOptions{Path: cfg.File}).Return(reloaded, nil).Once()
	models := deps.ModelLoader.(*mockModelLoader)
	models.On("Load", mock.Anything, modelPath).Return(shopModel(), nil)
	notifier := deps.SignalNotifier.(*mockSignalNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return()
	notifier.On("Stop", mock.Anything).Return()

	w := &fakeWatcher{batches: [][]string{{modelPath}, {cfg.File}}}
	factory := &fakeWatcherFactory{watcher: w}
	deps.WatcherFactory = factory

	err := NewWatchCommand(deps).Execute(context.Background(), WatchOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{modelPath, cfg.File, templatePath, v2Path}, w.added)
	assert.Equal(t, []string{projectDir, filepath.Join(projectDir, "templates")}, w.dirs)
	assert.Equal(t, []string{"**/*.tmpl"}, factory.opts.Patterns)
	assert.True(t, w.closed)
	assert.Equal(t, 3, out.writeCount())
	models.AssertNumberOfCalls(t, "Load", 3)
	loader.AssertExpectations(t)
	notifier.AssertExpectations(t)

	// The last run used the reloaded prefix and template with its partial
	assert.Equal(t, "v2 /v2/api/orders\n", out.written[filepath.Join(projectDir, "api", "OrderService.ts")])
}

func TestWatchCommand_Execute_KeepsWatchingAfterFailure(t *testing.T) {
	deps, out := testDeps()
	cfg := testConfig(t, "source: ./model.json\n")
	deps.ConfigLoader.(*mockConfigLoader).On("Load", mock.Anything).Return(cfg, nil)
	models := deps.ModelLoader.(*mockModelLoader)
	models.On("Load", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
	models.On("Load", mock.Anything, mock.Anything).Return(shopModel(), nil)
	deps.SignalNotifier.(*mockSignalNotifier).On("Notify", mock.Anything, mock.Anything).Return()
	deps.SignalNotifier.(*mockSignalNotifier).On("Stop", mock.Anything).Return()
	deps.WatcherFactory = &fakeWatcherFactory{watcher: &fakeWatcher{
		batches: [][]string{{filepath.Join(projectDir, "model.json")}},
	}}

	err := NewWatchCommand(deps).Execute(context.Background(), WatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.writeCount())
}

func TestWatchCommand_Execute_RemoteSource(t *testing.T) {
	// Test: Remote sources cannot be watched
	deps, _ := testDeps()
	cfg := testConfig(t, "source: https://shop.example.com/api-description-model\n")
	deps.ConfigLoader.(*mockConfigLoader).On("Load", mock.Anything).Return(cfg, nil)

	err := NewWatchCommand(deps).Execute(context.Background(), WatchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot watch remote source")
}
