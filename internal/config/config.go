// Package config loads hgsave configuration.
//
// Configuration is read from a single YAML file named by the --config
// flag or the HGSAVE_CONFIG environment variable. There is no automatic
// discovery; without a file, defaults apply.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bsm/hgsave/internal/backup"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "HGSAVE_CONFIG"

// Config is the hgsave configuration.
type Config struct {
	// Mapping is the path of the key-mapping definition file.
	// Default: the sidecar next to the executable.
	Mapping string `yaml:"mapping"`

	// Strict makes unmapped keys an error instead of passing them through.
	Strict bool `yaml:"strict"`

	// LogLevel is one of debug, info, warn, error.
	// Default: warn.
	LogLevel string `yaml:"log_level"`

	// ChunkSize is the uncompressed size of written blocks.
	// Default: 0x80000. Other values produce files the game may reject.
	ChunkSize int `yaml:"chunk_size"`

	// Backup configures copies made before a save is overwritten.
	Backup BackupConfig `yaml:"backup"`
}

// BackupConfig configures backups.
type BackupConfig struct {
	// Enabled turns backups on.
	// Default: true.
	Enabled *bool `yaml:"enabled"`

	// Compression is one of snappy, zstd, none.
	// Default: snappy.
	Compression string `yaml:"compression"`

	// Suffix is appended to the save path.
	// Default: .bak
	Suffix string `yaml:"suffix"`
}

// BackupEnabled reports whether backups are enabled.
func (c *Config) BackupEnabled() bool {
	return c.Backup.Enabled == nil || *c.Backup.Enabled
}

// Default returns the default configuration.
func Default() *Config {
	c := new(Config)
	c.norm()
	return c
}

func (c *Config) norm() {
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.ChunkSize < 1 {
		c.ChunkSize = 0x80000
	}
	if c.Backup.Compression == "" {
		c.Backup.Compression = "snappy"
	}
	if c.Backup.Suffix == "" {
		c.Backup.Suffix = ".bak"
	}
}

// Parse decodes YAML configuration. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	c := new(Config)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}

	c.norm()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Resolve loads the file named by flagPath or, if empty, by EnvVar.
// Without either, it returns Default.
func Resolve(flagPath string) (*Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := backup.ParseCompression(c.Backup.Compression); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// BackupOptions returns the backup options, or nil when backups are
// disabled.
func (c *Config) BackupOptions() *backup.Options {
	if !c.BackupEnabled() {
		return nil
	}
	comp, _ := backup.ParseCompression(c.Backup.Compression)
	return &backup.Options{Compression: comp, Suffix: c.Backup.Suffix}
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", name)
}
