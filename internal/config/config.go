package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName is the application name used for keyring, config and cache paths
const AppName = "perchance"

// Config holds CLI configuration
type Config struct {
	BaseURL        string `yaml:"base_url,omitempty"`
	Model          string `yaml:"model,omitempty"`
	TranslateModel string `yaml:"translate_model,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	UseCache       *bool  `yaml:"use_cache,omitempty"`
	CacheDir       string `yaml:"cache_dir,omitempty"`
	Timeout        string `yaml:"timeout,omitempty"`         // Go duration, e.g. 90s
	KeyringBackend string `yaml:"keyring_backend,omitempty"` // auto, keychain, file
	OutputFormat   string `yaml:"output_format,omitempty"`   // text, json, ndjson, yaml, markdown
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	if xdg.ConfigHome == "" {
		return "", fmt.Errorf("resolving config directory: XDG config home is empty")
	}
	return filepath.Join(xdg.ConfigHome, AppName), nil
}

// CacheDir returns the default directory holding the response cache
func CacheDir() (string, error) {
	if xdg.CacheHome == "" {
		return "", fmt.Errorf("resolving cache directory: XDG cache home is empty")
	}
	return filepath.Join(xdg.CacheHome, AppName), nil
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureKeyringDir ensures the keyring directory exists and returns its path
func EnsureKeyringDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	keyringDir := filepath.Join(dir, "keyring")
	if err := os.MkdirAll(keyringDir, 0o700); err != nil {
		return "", fmt.Errorf("creating keyring directory: %w", err)
	}
	return keyringDir, nil
}

// ReadConfig reads the config file from the default location
func ReadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load loads config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save saves config to the given path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// CacheEnabled reports whether model responses should be cached. Unset means yes.
func (c *Config) CacheEnabled() bool {
	if c == nil || c.UseCache == nil {
		return true
	}
	return *c.UseCache
}

// ResolvedCacheDir returns cache_dir or the XDG default.
func (c *Config) ResolvedCacheDir() (string, error) {
	if c != nil && c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return CacheDir()
}

// TimeoutDuration parses the timeout field. Zero means the client default.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c == nil || c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}
