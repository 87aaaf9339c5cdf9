package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the unified application configuration
type Config struct {
	ServerURL    string `yaml:"server_url"`
	SocketURL    string `yaml:"socket_url"`
	Token        string `yaml:"token"`
	DefaultBoard string `yaml:"default_board"`
	LogLevel     string `yaml:"log_level"`
}

// CLIFlags holds parsed CLI flags
type CLIFlags struct {
	ServerURL string
	Token     string
	Board     string
}

// Load loads configuration with priority: CLI flags > env vars > config file > defaults
func Load(flags CLIFlags) (*Config, error) {
	cfg := &Config{
		ServerURL: "http://localhost:4000/api",
		LogLevel:  "info",
	}

	configPath, err := Path()
	if err == nil {
		if fileCfg, err := loadConfigFile(configPath); err == nil {
			if fileCfg.ServerURL != "" {
				cfg.ServerURL = fileCfg.ServerURL
			}
			cfg.SocketURL = fileCfg.SocketURL
			cfg.Token = fileCfg.Token
			cfg.DefaultBoard = fileCfg.DefaultBoard
			if fileCfg.LogLevel != "" {
				cfg.LogLevel = fileCfg.LogLevel
			}
		}
	}

	if v := os.Getenv("EPITRELLO_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("EPITRELLO_TOKEN"); v != "" {
		cfg.Token = v
	}

	if flags.ServerURL != "" {
		cfg.ServerURL = flags.ServerURL
	}
	if flags.Token != "" {
		cfg.Token = flags.Token
	}
	if flags.Board != "" {
		cfg.DefaultBoard = flags.Board
	}

	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.SocketURL == "" {
		cfg.SocketURL = deriveSocketURL(cfg.ServerURL)
	}
	return cfg, nil
}

// Dir returns the directory holding the config file and logs.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "epitrello"), nil
}

// Path returns the path to the configuration file
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// EnsureConfigFile creates the config file with defaults if it doesn't exist
func EnsureConfigFile() error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	defaults := Config{
		ServerURL: "http://localhost:4000/api",
		LogLevel:  "info",
	}
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// deriveSocketURL maps the REST base URL onto the websocket endpoint.
func deriveSocketURL(serverURL string) string {
	ws := serverURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	ws = strings.TrimSuffix(ws, "/api")
	return ws + "/socket"
}
