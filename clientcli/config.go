package clientcli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultServer is the default server URL.
const DefaultServer = "http://localhost:8000"

// Profile holds configuration for a single server profile.
type Profile struct {
	Name    string `yaml:"name"`
	Server  string `yaml:"server"`
	Default bool   `yaml:"default,omitempty"`
}

// ConfigFile holds the full config file structure with multiple profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// GetProfile returns the profile by name.
// If name is empty, returns the default profile.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		return c.GetDefaultProfile()
	}

	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetDefaultProfile returns the default profile.
// If no profile is marked as default, returns the first profile.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	for i := range c.Profiles {
		if c.Profiles[i].Default {
			return &c.Profiles[i], nil
		}
	}

	return &c.Profiles[0], nil
}

// AddProfile adds a new profile. Returns ErrProfileExists if a profile
// with the same name already exists.
func (c *ConfigFile) AddProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
		}
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// RemoveProfile removes a profile by name.
func (c *ConfigFile) RemoveProfile(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// SetDefault marks name as the default profile and clears the flag on all
// others.
func (c *ConfigFile) SetDefault(name string) error {
	found := false
	for i := range c.Profiles {
		c.Profiles[i].Default = c.Profiles[i].Name == name
		if c.Profiles[i].Default {
			found = true
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}

// DefaultName returns the name of the default profile, or "" with no profiles.
func (c *ConfigFile) DefaultName() string {
	p, err := c.GetDefaultProfile()
	if err != nil {
		return ""
	}
	return p.Name
}

// Save writes the config to path, creating the parent directory if needed.
func (c *ConfigFile) Save(path string) error {
	cleanPath := filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// LoadConfigFile loads the config file from the specified path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigPath returns the default config file path (~/.filedrop/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".filedrop", "config.yaml")
}

// Config holds resolved client configuration for a single server.
type Config struct {
	Server string
}

// WithDefaults returns a copy of the config with default values applied.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	return &cfg
}

// Validate checks that Server, when set, is an absolute http(s) URL.
func (c *Config) Validate() error {
	if c.Server == "" {
		return nil
	}
	return ValidateServer(c.Server)
}

// ValidateServer checks that s is an absolute http or https URL.
func ValidateServer(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidServer, s)
	}
	return nil
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{Server: p.Server}
}

// ConfigFromEnv loads config from environment variables.
func ConfigFromEnv() *Config {
	return &Config{Server: os.Getenv("FILEDROP_SERVER")}
}

// ProfileFromEnv returns the profile name from FILEDROP_PROFILE.
func ProfileFromEnv() string {
	return os.Getenv("FILEDROP_PROFILE")
}

// ConfigPathFromEnv returns the config file path from FILEDROP_CLI_CONFIG.
func ConfigPathFromEnv() string {
	return os.Getenv("FILEDROP_CLI_CONFIG")
}

// MergeConfig merges multiple configs, with later configs taking precedence.
// Empty values in later configs do not override earlier ones.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Server != "" {
			result.Server = cfg.Server
		}
	}
	return result
}
