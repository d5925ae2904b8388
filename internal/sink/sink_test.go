package sink

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/apigen/internal/codegen"
)

func testArtifacts() []codegen.Artifact {
	return []codegen.Artifact{
		{Kind: codegen.KindType, Name: "Widget", Content: []byte("export interface Widget {\n}\n")},
		{Kind: codegen.KindTypeIndex, Name: "index", Content: []byte("export * from './Widget';\n")},
		{Kind: codegen.KindService, Name: "WidgetService", Content: []byte("export function get() {}\n")},
	}
}

func TestFileSink_Write(t *testing.T) {
	// Test: Types and services land in their directories, created on demand
	root := t.TempDir()
	s := New(filepath.Join(root, "src", "api"), filepath.Join(root, "src", "types"), zerolog.Nop())

	report, err := s.Write(testArtifacts())
	require.NoError(t, err)
	assert.Len(t, report.Written, 3)
	assert.Empty(t, report.Unchanged)

	data, err := os.ReadFile(filepath.Join(root, "src", "types", "Widget.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export interface Widget {\n}\n", string(data))

	_, err = os.Stat(filepath.Join(root, "src", "types", "index.ts"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "src", "api", "WidgetService.ts"))
	assert.NoError(t, err)
}

func TestFileSink_WriteIfChanged(t *testing.T) {
	// Test: Identical content is not rewritten, changed content is
	root := t.TempDir()
	s := New(filepath.Join(root, "api"), filepath.Join(root, "types"), zerolog.Nop())

	_, err := s.Write(testArtifacts())
	require.NoError(t, err)

	widget := filepath.Join(root, "types", "Widget.ts")
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(widget, old, old))

	artifacts := testArtifacts()
	artifacts[2].Content = []byte("export function list() {}\n")
	report, err := s.Write(artifacts)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "api", "WidgetService.ts")}, report.Written)
	assert.Len(t, report.Unchanged, 2)

	info, err := os.Stat(widget)
	require.NoError(t, err)
	assert.Equal(t, old.Unix(), info.ModTime().Unix(), "unchanged file was rewritten")
}

func TestFileSink_Path(t *testing.T) {
	s := New("out", "types", zerolog.Nop())
	assert.Equal(t, filepath.Join("types", "Widget.ts"), s.Path(codegen.Artifact{Kind: codegen.KindType, Name: "Widget"}))
	assert.Equal(t, filepath.Join("out", "WidgetService.ts"), s.Path(codegen.Artifact{Kind: codegen.KindService, Name: "WidgetService"}))
}

func TestFileSink_WriteError(t *testing.T) {
	// Test: A file in place of the output directory fails the write
	root := t.TempDir()
	blocker := filepath.Join(root, "api")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	s := New(blocker, filepath.Join(root, "types"), zerolog.Nop())
	_, err := s.Write(testArtifacts())
	assert.Error(t, err)
}

func TestFileSink_WriteRejectsUnsafeNames(t *testing.T) {
	// Test: Names that are not plain file names are refused before anything is written
	tests := []struct {
		name     string
		artifact string
	}{
		{"parent traversal", "../../etc/Evil"},
		{"nested path", "sub/Widget"},
		{"backslash", `sub\Widget`},
		{"dot dot", ".."},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			s := New(filepath.Join(root, "api"), filepath.Join(root, "types"), zerolog.Nop())

			_, err := s.Write([]codegen.Artifact{{Kind: codegen.KindType, Name: tt.artifact, Content: []byte("x")}})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsafeName)

			entries, err := os.ReadDir(root)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}
