// Package source loads API description models from files and HTTP endpoints.
package source

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	"github.com/rs/zerolog"

	"github.com/okra-platform/apigen/internal/model"
)

var (
	// ErrUnsupportedSource is returned for locations that are neither files nor http(s) URLs
	ErrUnsupportedSource = errors.New("unsupported source")
	// ErrFetch is returned when the model cannot be read
	ErrFetch = errors.New("failed to fetch description model")
	// ErrDecode is returned when the model is not a valid description document
	ErrDecode = errors.New("failed to decode description model")
)

// maxModelSize caps the size of a description document
const maxModelSize = 64 << 20

// Loader reads description models
type Loader struct {
	client *http.Client
	logger zerolog.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithHTTPClient sets the client used for http(s) sources
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.client = client
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes the model at location using a default loader
func Load(ctx context.Context, location string) (*model.Model, error) {
	return NewLoader().Load(ctx, location)
}

// IsRemote reports whether location is an http(s) URL
func IsRemote(location string) bool {
	u, err := url.Parse(strings.TrimSpace(location))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Load reads and decodes the model at location, a file path, a file:// URL or an
// http(s) URL
func (l *Loader) Load(ctx context.Context, location string) (*model.Model, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.WithHint(
			errors.Wrap(ErrUnsupportedSource, "no source given"),
			"set source in apigen.yaml or pass --source",
		)
	}

	var (
		data []byte
		err  error
	)
	if IsRemote(location) {
		data, err = l.fetch(ctx, location)
	} else {
		path, perr := filePath(location)
		if perr != nil {
			return nil, perr
		}
		data, err = l.read(path)
	}
	if err != nil {
		return nil, err
	}

	m, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "source %s", location)
	}
	l.logger.Debug().
		Str("source", location).
		Int("apis", len(m.APIs)).
		Int("types", len(m.Types)).
		Msg("loaded description model")
	return m, nil
}

// Decode parses a description document. Member names match case-insensitively.
func Decode(data []byte) (*model.Model, error) {
	var m model.Model
	if err := json.Unmarshal(data, &m, json.MatchCaseInsensitiveNames(true)); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "invalid description document"), ErrDecode)
	}
	if m.Types == nil {
		m.Types = make(map[string]model.TypeDescription)
	}
	return &m, nil
}

func filePath(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || isDriveLetter(u.Scheme) {
		return location, nil
	}
	if u.Scheme == "file" {
		return filepath.FromSlash(u.Path), nil
	}
	return "", errors.WithHint(
		errors.Wrapf(ErrUnsupportedSource, "scheme %q", u.Scheme),
		"use a file path or an http(s) URL",
	)
}

// isDriveLetter matches Windows paths such as C:\models\api.json
func isDriveLetter(scheme string) bool {
	return len(scheme) == 1
}

func (l *Loader) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read %s", path), ErrFetch)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "build request for %s", location), ErrFetch)
	}
	req.Header.Set("Accept", "application/json")

	l.logger.Debug().Str("url", location).Msg("fetching description model")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "GET %s", location), ErrFetch)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Mark(errors.Newf("GET %s: unexpected status %s", location, resp.Status), ErrFetch)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxModelSize+1))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read response from %s", location), ErrFetch)
	}
	if len(data) > maxModelSize {
		return nil, errors.Mark(errors.Newf("GET %s: response exceeds %d bytes", location, maxModelSize), ErrFetch)
	}
	return data, nil
}
