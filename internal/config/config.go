package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read as configuration
const EnvPrefix = "APIGEN_"

// FileNames are the config file names searched for, in order
var FileNames = []string{"apigen.yaml", "apigen.yml", "apigen.json"}

// ErrNotFound is returned when no config file exists in a directory or its parents
var ErrNotFound = errors.New("no apigen config file found")

// Config represents the apigen.yaml configuration file
type Config struct {
	// Source is a model file path or an http(s) URL serving the model
	Source             string               `koanf:"source" validate:"required"`
	Output             OutputConfig         `koanf:"output"`
	ImportLines        []string             `koanf:"importLines"`
	APIPrefix          string               `koanf:"apiPrefix"`
	UseInterface       bool                 `koanf:"useInterface"`
	NamespacePrefix    string               `koanf:"namespacePrefix"`
	UnwrapGenericTypes []string             `koanf:"unwrapGenericTypes"`
	TypePrefix         string               `koanf:"typePrefix"`
	PropertyNaming     string               `koanf:"propertyNaming" validate:"oneof=preserve camel"`
	OnCycle            string               `koanf:"onCycle" validate:"oneof=omit emit fail"`
	Template           string               `koanf:"template"`
	TemplatePath       string               `koanf:"templatePath"`
	Comments           CommentsConfig       `koanf:"comments"`
	PostGeneration     PostGenerationConfig `koanf:"postGeneration"`

	// File is the config file that was loaded, empty when running on defaults
	File string `koanf:"-"`
	// Dir is the directory relative paths are resolved against
	Dir string `koanf:"-"`
}

// OutputConfig holds the output directories
type OutputConfig struct {
	Dir      string `koanf:"dir" validate:"required"`
	TypesDir string `koanf:"typesDir" validate:"required"`
}

// CommentsConfig controls JSDoc generation
type CommentsConfig struct {
	Enabled            bool `koanf:"enabled"`
	MaxLength          int  `koanf:"maxLength" validate:"gte=0"`
	MaxLines           int  `koanf:"maxLines" validate:"gte=0"`
	PreserveHTMLTags   bool `koanf:"preserveHtmlTags"`
	PreserveLineBreaks bool `koanf:"preserveLineBreaks"`
}

// PostGenerationConfig describes a command run after artifacts are written
type PostGenerationConfig struct {
	Enabled          bool          `koanf:"enabled"`
	WorkingDirectory string        `koanf:"workingDirectory"`
	Command          string        `koanf:"command"`
	Arguments        string        `koanf:"arguments"`
	Timeout          time.Duration `koanf:"timeout" validate:"gte=0"`
	Wait             bool          `koanf:"wait"`
}

// Defaults returns the default value of every key
func Defaults() map[string]any {
	return map[string]any{
		"source":                          "./api-description.json",
		"output.dir":                      "./api",
		"output.typesDir":                 "./types",
		"importLines":                     []string{"import { request as requestHttp } from '../request';"},
		"apiPrefix":                       "",
		"useInterface":                    true,
		"namespacePrefix":                 "",
		"unwrapGenericTypes":              []string{},
		"typePrefix":                      "types.",
		"propertyNaming":                  "preserve",
		"onCycle":                         "omit",
		"template":                        "axios",
		"templatePath":                    "",
		"comments.enabled":                true,
		"comments.maxLength":              200,
		"comments.maxLines":               5,
		"comments.preserveHtmlTags":       true,
		"comments.preserveLineBreaks":     true,
		"postGeneration.enabled":          false,
		"postGeneration.workingDirectory": "",
		"postGeneration.command":          "",
		"postGeneration.arguments":        "",
		"postGeneration.timeout":          "30s",
		"postGeneration.wait":             true,
	}
}

// LoadOptions selects where configuration is read from
type LoadOptions struct {
	// Path is an explicit config file. When empty the file is discovered from Dir.
	Path string
	// Dir starts discovery, the working directory when empty
	Dir string
	// Overrides are applied last, typically from command line flags
	Overrides map[string]any
	// Environ replaces os.Environ, for tests
	Environ func() []string
}

// Load reads defaults, the config file, APIGEN_ environment variables and overrides,
// in increasing priority, then validates the result
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	path, dir, err := locate(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	if err := k.Load(envProvider(opts.Environ), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, "failed to apply overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	cfg.File = path
	cfg.Dir = dir
	return cfg, nil
}

// Parse reads a config document on top of the defaults, ignoring the environment
func Parse(data []byte) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	return unmarshal(k)
}

// Marshal renders values over the defaults as a YAML config document
func Marshal(values map[string]any) ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load values")
	}
	data, err := k.Marshal(yaml.Parser())
	return data, errors.Wrap(err, "failed to render config")
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// locate returns the config file to read and the directory paths resolve against
func locate(opts LoadOptions) (string, string, error) {
	if opts.Path != "" {
		path, err := filepath.Abs(opts.Path)
		if err != nil {
			return "", "", errors.Wrapf(err, "failed to resolve %s", opts.Path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", "", errors.Wrap(err, "failed to read config file")
		}
		return path, filepath.Dir(path), nil
	}

	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", errors.Wrap(err, "failed to get current directory")
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to resolve %s", dir)
	}

	path, err := FindConfigFile(dir)
	if errors.Is(err, ErrNotFound) {
		return "", dir, nil
	}
	if err != nil {
		return "", "", err
	}
	return path, filepath.Dir(path), nil
}

// FindConfigFile searches for a config file in startDir and its parents
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", errors.Wrapf(ErrNotFound, "searched %s and every parent directory", startDir)
}

// listSeparators splits list-valued environment variables
var listSeparators = map[string]string{
	"importLines":        "\n",
	"unwrapGenericTypes": ",",
}

// envProvider maps APIGEN_OUTPUT_TYPES_DIR style variables onto known keys.
// Variables that match no key are ignored.
func envProvider(environ func() []string) *env.Env {
	canonical := make(map[string]string)
	for key := range Defaults() {
		canonical[normalizeKey(key)] = key
	}

	return env.Provider(".", env.Opt{
		Prefix:      EnvPrefix,
		EnvironFunc: environ,
		TransformFunc: func(k, v string) (string, any) {
			key, ok := canonical[normalizeKey(strings.TrimPrefix(k, EnvPrefix))]
			if !ok {
				return "", nil
			}
			if sep, isList := listSeparators[key]; isList {
				var items []string
				for _, item := range strings.Split(v, sep) {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
				return key, items
			}
			return key, v
		},
	})
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.NewReplacer(".", "", "_", "").Replace(key)
}
