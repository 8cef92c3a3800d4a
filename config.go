package icetype

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the .icetype.yaml configuration file.
type Config struct {
	// Paths are the files or directories to load when none are given on the
	// command line. Relative paths resolve against the config file's directory.
	Paths []string `yaml:"paths,omitempty"`

	// Extensions restricts directory discovery, e.g. [".yaml", ".json"].
	Extensions []string `yaml:"extensions,omitempty"`

	Emit EmitConfig `yaml:"emit,omitempty"`
	Log  LogConfig  `yaml:"log,omitempty"`

	// dir is the directory the config was loaded from.
	dir string
}

// EmitConfig holds settings for the parse command's output.
type EmitConfig struct {
	// Format is a registered emitter name ("json", "yaml").
	Format string `yaml:"format,omitempty"`

	// Out is the output file. Empty means stdout.
	Out string `yaml:"out,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a zap level name ("debug", "info", ...).
	Level string `yaml:"level,omitempty"`
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".icetype.yaml", ".icetype.yml", "icetype.yaml", "icetype.yml"}

// DefaultExtensions are the schema file extensions discovered in directories.
var DefaultExtensions = []string{".yaml", ".yml", ".json"}

// LoadConfig finds and loads the nearest .icetype.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.dir = filepath.Dir(path)

	return &cfg, nil
}

// ResolvedPaths returns Paths made absolute against the config directory.
func (c *Config) ResolvedPaths() []string {
	out := make([]string, 0, len(c.Paths))

	for _, p := range c.Paths {
		if !filepath.IsAbs(p) && c.dir != "" {
			p = filepath.Join(c.dir, p)
		}

		out = append(out, p)
	}

	return out
}

// SchemaExtensions returns the configured extensions or DefaultExtensions.
func (c *Config) SchemaExtensions() []string {
	if len(c.Extensions) == 0 {
		return DefaultExtensions
	}

	return c.Extensions
}
