// Package config loads bundle files describing asset managers and the
// component asset directories to publish with them.
//
// TOML and YAML are both accepted, chosen by file extension:
//
//	listen = ":8080"
//	base_url = "/assets"
//
//	[[manager]]
//	name = "vendor"
//	base_url = "/vendor"
//
//	[[bundle]]
//	owner = "datepicker"
//	dir = "./assets/datepicker"
//
//	[[bundle]]
//	owner = "charts"
//	dir = "./third_party/charts"
//	manager = "vendor"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/pthm/hxasset/lib/serve"
)

// DefaultFile is the bundle file looked up when none is given.
const DefaultFile = "hxasset.toml"

// Sentinel errors for config operations.
var (
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	ErrInvalidConfig     = errors.New("config: invalid configuration")
)

// Config is the parsed bundle file.
type Config struct {
	Listen   string    `toml:"listen" yaml:"listen"`
	BaseURL  string    `toml:"base_url" yaml:"base_url"` // URL prefix of the default manager
	Key      string    `toml:"key" yaml:"key"`           // Signing key for URL segments
	Managers []Manager `toml:"manager" yaml:"managers"`
	Bundles  []Bundle  `toml:"bundle" yaml:"bundles"`
}

// Manager declares a named manager.
type Manager struct {
	Name    string `toml:"name" yaml:"name"`
	BaseURL string `toml:"base_url" yaml:"base_url"`
}

// DefaultManagerURL returns the URL prefix of the default manager:
// base_url, or serve.DefaultBaseURL when unset.
func (c *Config) DefaultManagerURL() string {
	if c.BaseURL == "" {
		return serve.DefaultBaseURL
	}
	return c.BaseURL
}

// URL returns the manager's URL prefix: base_url, or "/<name>" when unset.
func (m Manager) URL() string {
	if m.BaseURL == "" {
		return "/" + m.Name
	}
	return m.BaseURL
}

// Bundle declares an asset directory owned by a component.
type Bundle struct {
	Owner   string `toml:"owner" yaml:"owner"`
	Dir     string `toml:"dir" yaml:"dir"`
	Manager string `toml:"manager" yaml:"manager"` // Empty selects the default manager
}

// Load reads and validates the bundle file at path.
// Relative bundle directories are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range cfg.Bundles {
		if !filepath.IsAbs(cfg.Bundles[i].Dir) {
			cfg.Bundles[i].Dir = filepath.Join(base, cfg.Bundles[i].Dir)
		}
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext (".toml", ".yaml", ".yml")
// and validates it.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}

	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidConfig, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks manager names are unique and non-empty, that no two
// managers (the default included) share a URL prefix, and that every
// bundle has a directory and refers to a declared manager.
func (c *Config) Validate() error {
	names := make(map[string]bool, len(c.Managers))
	urls := map[string]string{routePrefix(c.DefaultManagerURL()): "default manager"}
	for i, m := range c.Managers {
		if m.Name == "" {
			return fmt.Errorf("%w: manager #%d has no name", ErrInvalidConfig, i+1)
		}
		if names[m.Name] {
			return fmt.Errorf("%w: duplicate manager %q", ErrInvalidConfig, m.Name)
		}
		names[m.Name] = true

		prefix := routePrefix(m.URL())
		if other, taken := urls[prefix]; taken {
			return fmt.Errorf("%w: manager %q uses base URL %q already used by %s", ErrInvalidConfig, m.Name, m.URL(), other)
		}
		urls[prefix] = fmt.Sprintf("manager %q", m.Name)
	}

	for i, b := range c.Bundles {
		if b.Dir == "" {
			return fmt.Errorf("%w: bundle #%d has no dir", ErrInvalidConfig, i+1)
		}
		if b.Manager != "" && !names[b.Manager] {
			return fmt.Errorf("%w: bundle #%d uses undeclared manager %q", ErrInvalidConfig, i+1, b.Manager)
		}
	}
	return nil
}

// routePrefix normalizes a base URL the way serve.WithBaseURL does.
func routePrefix(base string) string {
	return strings.TrimRight(base, "/")
}

// Save writes the config to path in the format named by its extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(c)
		data = buf.Bytes()
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
