package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user preferences loaded from the config file.
// All fields are optional; zero values fall back to built-in defaults.
type Config struct {
	// Engine is the default rendering engine: "dot" or "mmdc".
	Engine string `toml:"engine"`

	// MmdcBinary overrides the mermaid CLI binary path.
	MmdcBinary string `toml:"mmdc_binary"`

	// CacheDir overrides the XDG cache directory.
	CacheDir string `toml:"cache_dir"`

	// Redis enables the Redis cache backend when Addr is set. The file
	// cache is used otherwise.
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig holds Redis cache backend settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// LoadConfig reads the config file, returning defaults when the file is
// missing or malformed. Config problems never block the CLI.
func LoadConfig() *Config {
	cfg := &Config{}

	path, err := configPath()
	if err != nil {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return &Config{}
	}
	return cfg
}

// configPath returns the config file path using XDG standard
// (~/.config/diagramprep/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
