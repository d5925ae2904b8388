// Package sink persists generated artifacts to disk.
package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/okra-platform/apigen/internal/codegen"
)

// ErrUnsafeName is returned by Write for an artifact name that is not a plain file name
var ErrUnsafeName = errors.New("unsafe artifact name")

// Report lists the files touched by a write, as paths
type Report struct {
	Written   []string
	Unchanged []string
}

// FileSink writes type artifacts to TypesDir and service artifacts to OutputDir
type FileSink struct {
	outputDir string
	typesDir  string
	logger    zerolog.Logger
}

// New creates a file sink
func New(outputDir, typesDir string, logger zerolog.Logger) *FileSink {
	return &FileSink{
		outputDir: outputDir,
		typesDir:  typesDir,
		logger:    logger,
	}
}

// Path returns the target path of an artifact
func (s *FileSink) Path(a codegen.Artifact) string {
	dir := s.typesDir
	if a.Kind == codegen.KindService {
		dir = s.outputDir
	}
	return filepath.Join(dir, a.FileName())
}

// Write persists artifacts. Files whose content is already identical are left alone so
// downstream watchers are not triggered.
func (s *FileSink) Write(artifacts []codegen.Artifact) (Report, error) {
	var report Report
	created := make(map[string]bool)

	for _, a := range artifacts {
		if !safeName(a.Name) {
			return report, errors.Wrapf(ErrUnsafeName, "%s artifact %q", a.Kind, a.Name)
		}
		path := s.Path(a)
		dir := filepath.Dir(path)
		if !created[dir] {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return report, errors.Wrapf(err, "failed to create directory %s", dir)
			}
			created[dir] = true
		}

		changed, err := writeIfChanged(path, a.Content)
		if err != nil {
			return report, err
		}
		if changed {
			report.Written = append(report.Written, path)
			s.logger.Debug().Str("path", path).Str("kind", a.Kind.String()).Msg("wrote artifact")
		} else {
			report.Unchanged = append(report.Unchanged, path)
		}
	}
	return report, nil
}

func writeIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	return true, nil
}

// safeName rejects names that would resolve outside the target directory
func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\:`)
}
