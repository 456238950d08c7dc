// Package config holds the ambient settings of the server.
//
// The listening port and the served directory are fixed. Configuration
// files and environment variables only tune logging, the startup build
// check and extra MIME types.
package config

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// Port is the TCP port the server listens on.
	Port = 3000
	// Root is the frontend build output, relative to the working directory.
	Root = "../frontend/build"
)

// FileNames lists the configuration files Load looks for, in order.
var FileNames = []string{"buildserve.toml", "buildserve.yaml", "buildserve.yml"}

// Config is the resolved server configuration.
type Config struct {
	// Port and Root are never read from files or the environment.
	Port int    `toml:"-" yaml:"-"`
	Root string `toml:"-" yaml:"-"`

	Log LogConfig `toml:"log" yaml:"log"`
	// CheckBuild enables the build output check at startup.
	CheckBuild bool `toml:"check_build" yaml:"check_build"`
	// MIME maps file extensions (".webmanifest") to media types.
	MIME map[string]string `toml:"mime" yaml:"mime"`
}

// LogConfig controls the slog output.
type LogConfig struct {
	Debug  bool   `toml:"debug" yaml:"debug"`
	Access bool   `toml:"access" yaml:"access"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port: Port,
		Root: Root,
		Log: LogConfig{
			Access: true,
			Format: "text",
		},
		CheckBuild: true,
		MIME:       map[string]string{},
	}
}

// Load decodes the first configuration file found in dir over the
// defaults. It returns the path of the file used, or "" when none exists.
func Load(dir string) (Config, string, error) {
	cfg := Default()

	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return cfg, path, fmt.Errorf("read config %s: %w", path, err)
		}

		if strings.HasSuffix(name, ".toml") {
			if _, err := toml.Decode(string(data), &cfg); err != nil {
				return cfg, path, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, path, fmt.Errorf("parse config %s: %w", path, err)
			}
		}

		// Files cannot move the server.
		cfg.Port = Port
		cfg.Root = Root
		if cfg.MIME == nil {
			cfg.MIME = map[string]string{}
		}
		return cfg, path, nil
	}

	return cfg, "", nil
}

// LoadDotEnv loads a .env file from dir into the process environment.
// Variables that are already set keep their value. A missing file is not
// an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays BUILDSERVE_* variables on cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("BUILDSERVE_DEBUG"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BUILDSERVE_DEBUG: %w", err)
		}
		cfg.Log.Debug = b
	}
	if v, ok := lookup("BUILDSERVE_ACCESS_LOG"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BUILDSERVE_ACCESS_LOG: %w", err)
		}
		cfg.Log.Access = b
	}
	if v, ok := lookup("BUILDSERVE_LOG_FORMAT"); ok && v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported format %q (want text or json)", c.Log.Format)
	}

	for ext, typ := range c.MIME {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("mime: extension %q must start with a dot", ext)
		}
		if _, _, err := mime.ParseMediaType(typ); err != nil {
			return fmt.Errorf("mime: %s: %w", ext, err)
		}
	}
	return nil
}

// RegisterMIME adds the configured extension types to the process-wide
// MIME table used when serving files.
func (c Config) RegisterMIME() error {
	for ext, typ := range c.MIME {
		if err := mime.AddExtensionType(ext, typ); err != nil {
			return fmt.Errorf("register mime type for %s: %w", ext, err)
		}
	}
	return nil
}
