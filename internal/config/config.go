package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/strata-dev/strata/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "strata.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3100

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultAppDir is the default app directory.
	DefaultAppDir = "app"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"
)

// DefaultExtensions are the file extensions recognized for conventional
// files when the config does not override them.
var DefaultExtensions = []string{".go", ".templ"}

// Config represents the complete strata.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// App is the path to the app directory, relative to the config file.
	App string `json:"app,omitempty"`

	// Extensions are the recognized conventional-file extensions, in
	// probe order.
	Extensions []string `json:"extensions,omitempty"`

	// Build contains build configuration.
	Build BuildConfig `json:"build,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Deploy contains static-export deploy configuration.
	Deploy DeployConfig `json:"deploy,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// BuildConfig contains build settings.
type BuildConfig struct {
	// Output is the output directory for compiled route modules and the
	// route manifest.
	Output string `json:"output,omitempty"`

	// Target is the build-target mode. The only recognized value beyond
	// the default is "static-export".
	Target string `json:"target,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Watch contains extra paths to watch for changes, relative to the
	// config file. The app directory is always watched.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains glob patterns to skip during watch.
	Ignore []string `json:"ignore,omitempty"`
}

// DeployConfig contains static-export deploy settings.
type DeployConfig struct {
	// Bucket is the S3 bucket the export is uploaded to.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the key prefix inside the bucket.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region of the bucket.
	Region string `json:"region,omitempty"`
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).WithPath(path)
		}
		return nil, errors.New(errors.CodeConfigInvalid).WithPath(path).Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithPath(path).
			WithSuggestion("check strata.json for syntax errors").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromWorkingDir finds strata.json in the current directory or any
// parent, and loads it.
func LoadFromWorkingDir() (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithSuggestion("run strata from a project directory, or create strata.json")
		}
		dir = parent
	}
}

// Default returns a config with all defaults applied, rooted at dir.
// Used by tests and by commands that can run without a config file.
func Default(dir string) *Config {
	cfg := &Config{configPath: filepath.Join(dir, ConfigFileName)}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.App == "" {
		c.App = DefaultAppDir
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
}

func (c *Config) validate() error {
	for _, ext := range c.Extensions {
		if ext == "" || ext[0] != '.' {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail("extension " + ext + " must start with a dot").
				WithPath(c.configPath)
		}
	}
	if t := c.Build.Target; t != "" && t != "static-export" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("unknown build target " + t).
			WithSuggestion(`use "" or "static-export"`).
			WithPath(c.configPath)
	}
	return nil
}

// Dir returns the project directory (where the config file lives).
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AppPath returns the absolute path of the app directory.
func (c *Config) AppPath() string {
	if filepath.IsAbs(c.App) {
		return c.App
	}
	return filepath.Join(c.Dir(), c.App)
}

// OutputPath returns the absolute path of the build output directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Build.Output) {
		return c.Build.Output
	}
	return filepath.Join(c.Dir(), c.Build.Output)
}
