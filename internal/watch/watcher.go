// Package watch regenerates output when the files feeding generation change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle
const DefaultDebounce = 200 * time.Millisecond

// ErrClosed is returned from Start when the underlying watcher shuts down
var ErrClosed = errors.New("watcher closed")

// ChangeFunc handles one settled batch of changed paths. Calls are never concurrent.
type ChangeFunc func(ctx context.Context, paths []string)

// Options configures a watcher
type Options struct {
	// Patterns select files inside watched directories
	Patterns []string
	// Exclude skips matching files and directories
	Exclude  []string
	Debounce time.Duration
}

// FileWatcher watches individual files and directory trees for changes
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	patterns []string
	exclude  []string
	debounce time.Duration
	files    map[string]bool
	roots    []string
	onChange ChangeFunc
	logger   zerolog.Logger
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(opts Options, logger zerolog.Logger, onChange ChangeFunc) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FileWatcher{
		watcher:  watcher,
		patterns: opts.Patterns,
		exclude:  opts.Exclude,
		debounce: debounce,
		files:    make(map[string]bool),
		onChange: onChange,
		logger:   logger,
	}, nil
}

// AddFile watches a single file. Its directory is watched so that editors
// replacing the file by rename are still noticed.
func (fw *FileWatcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", path)
	}
	if err := fw.watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", abs)
	}
	fw.files[abs] = true
	fw.logger.Debug().Str("file", abs).Msg("watching file")
	return nil
}

// AddDirectory recursively adds a directory to the watcher. Adding a tree already
// watched is a no-op.
func (fw *FileWatcher) AddDirectory(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", dir)
	}
	if slices.Contains(fw.roots, abs) {
		return nil
	}
	if err := fw.addTree(abs); err != nil {
		return err
	}
	fw.roots = append(fw.roots, abs)
	return nil
}

func (fw *FileWatcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if path != dir && fw.excluded(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Only watch directories
		if info.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				return errors.Wrapf(err, "failed to watch directory %s", path)
			}
		}

		return nil
	})
}

// Start watches until ctx is done, invoking the change handler once per settled burst
func (fw *FileWatcher) Start(ctx context.Context) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return ErrClosed
			}

			// If a new directory is created inside a watched tree, add it to the watcher
			if event.Has(fsnotify.Create) && fw.underRoot(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !fw.excluded(event.Name) {
					if err := fw.addTree(event.Name); err != nil {
						fw.logger.Warn().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
					}
				}
			}

			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if !fw.shouldWatch(event.Name) {
				continue
			}

			fw.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change detected")
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			fw.onChange(ctx, paths)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return ErrClosed
			}
			if err != nil {
				// Log error but continue watching
				fw.logger.Warn().Err(err).Msg("watcher error")
			}
		}
	}
}

// shouldWatch checks if a path should trigger a change event
func (fw *FileWatcher) shouldWatch(path string) bool {
	if fw.files[path] {
		return true
	}
	rel, ok := fw.relativeToRoot(path)
	if !ok {
		return false
	}
	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		if fw.excluded(segment) {
			return false
		}
	}
	return fw.matches(path)
}

func (fw *FileWatcher) matches(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range fw.patterns {
		// "**/*.ext" matches the extension at any depth
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			pattern = rest
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range fw.exclude {
		if matched, _ := filepath.Match(strings.TrimSuffix(pattern, "/"), base); matched {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) underRoot(path string) bool {
	_, ok := fw.relativeToRoot(path)
	return ok
}

// relativeToRoot returns path relative to the first watched tree containing it
func (fw *FileWatcher) relativeToRoot(path string) (string, bool) {
	for _, root := range fw.roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return rel, true
		}
	}
	return "", false
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
