package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the ultralite configuration
type Config struct {
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	FollowRedirects *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // Default headers for all requests
	LogLevel        string            `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	RateLimit       float64           `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"` // requests per second
	RequestIDHeader string            `json:"requestIdHeader,omitempty" yaml:"requestIdHeader,omitempty"`
	Output          string            `json:"output,omitempty" yaml:"output,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// EnvPrefix is the prefix of environment variables read by ApplyEnv
const EnvPrefix = "ULTRALITE_"

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".ultralite.json",
	"ultralite.json",
	".ultralite.yaml",
	".ultralite.yml",
	".ultraliterc",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. YAML is
// chosen by extension, everything else is read as JSON.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	loaded := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, loaded)
	default:
		err = json.Unmarshal(data, loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return DefaultConfig().Merge(loaded), nil
}

// LoadEnvFile loads variables from a .env file into the process environment.
// Variables already set are not overridden.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays ULTRALITE_* environment variables onto a copy of c.
// Headers are read from ULTRALITE_HEADER_<NAME>, with underscores in the
// name turned into dashes.
func (c *Config) ApplyEnv() (*Config, error) {
	env := &Config{}

	if v := os.Getenv(EnvPrefix + "TIMEOUT"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %sTIMEOUT %q: %w", EnvPrefix, v, err)
		}
		env.Timeout = ms
	}
	if v := os.Getenv(EnvPrefix + "MAX_REDIRECTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %sMAX_REDIRECTS %q: %w", EnvPrefix, v, err)
		}
		env.MaxRedirects = n
	}
	if v := os.Getenv(EnvPrefix + "RATE_LIMIT"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %sRATE_LIMIT %q: %w", EnvPrefix, v, err)
		}
		env.RateLimit = rps
	}
	env.FollowRedirects = envBool(EnvPrefix + "FOLLOW_REDIRECTS")
	env.ValidateSSL = envBool(EnvPrefix + "VALIDATE_SSL")
	env.NoColor = envBool(EnvPrefix + "NO_COLOR")
	env.LogLevel = os.Getenv(EnvPrefix + "LOG_LEVEL")
	env.RequestIDHeader = os.Getenv(EnvPrefix + "REQUEST_ID_HEADER")
	env.Output = os.Getenv(EnvPrefix + "OUTPUT")

	headerPrefix := EnvPrefix + "HEADER_"
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok || !strings.HasPrefix(key, headerPrefix) || len(key) == len(headerPrefix) {
			continue
		}
		if env.Headers == nil {
			env.Headers = make(map[string]string)
		}
		name := strings.ReplaceAll(key[len(headerPrefix):], "_", "-")
		env.Headers[name] = value
	}

	return c.Merge(env), nil
}

func envBool(key string) *bool {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	b := val == "true" || val == "1" || val == "yes"
	return &b
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.RequestIDHeader != "" {
		result.RequestIDHeader = other.RequestIDHeader
	}
	if other.Output != "" {
		result.Output = other.Output
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	// Merge headers into a fresh map so neither input is mutated
	if len(c.Headers) > 0 || len(other.Headers) > 0 {
		result.Headers = make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			result.Headers[k] = v
		}
		for k, v := range other.Headers {
			result.Headers[k] = v
		}
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
