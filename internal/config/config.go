package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/store"
)

// DefaultAddr matches the address the editor UI posts to.
const DefaultAddr = "127.0.0.1:8765"

// Config is the settings server configuration.
type Config struct {
	Addr          string           `yaml:"addr"`
	SettingsPath  string           `yaml:"settings_path"`
	MetadataPath  string           `yaml:"metadata_path"`
	Marker        string           `yaml:"marker"`
	StaticDir     string           `yaml:"static_dir"`
	TemplateDir   string           `yaml:"template_dir"`
	AllowOrigin   string           `yaml:"allow_origin"`
	Watch         bool             `yaml:"watch"`
	ShutdownGrace time.Duration    `yaml:"shutdown_grace"`
	Tokens        []metadata.Entry `yaml:"tokens"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:          DefaultAddr,
		SettingsPath:  store.DefaultFileName,
		AllowOrigin:   "*",
		Watch:         true,
		ShutdownGrace: 5 * time.Second,
	}
}

// Load reads a YAML file over Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("config: addr %q: %w", c.Addr, err)
	}
	if strings.TrimSpace(c.SettingsPath) == "" {
		return errors.New("config: settings_path is required")
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("config: shutdown_grace must not be negative, got %s", c.ShutdownGrace)
	}
	for i, entry := range c.Tokens {
		if strings.TrimSpace(entry.Key) == "" {
			return fmt.Errorf("config: tokens[%d]: key is required", i)
		}
		if len(entry.Paths) == 0 {
			return fmt.Errorf("config: tokens[%d] (%s): at least one path is required", i, entry.Key)
		}
	}
	return nil
}

// KeyMap returns the default token table extended with the configured
// entries.
func (c Config) KeyMap() *metadata.KeyMap {
	if len(c.Tokens) == 0 {
		return metadata.DefaultKeyMap()
	}
	return metadata.DefaultKeyMap().With(c.Tokens...)
}
