package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all process-level configuration for chatterdash
type Config struct {
	// Chatlog configuration (the remote chat-log service)
	Chatlog ChatlogConfig `json:"chatlog"`

	// Dashboard configuration (the local web UI)
	Dashboard DashboardConfig `json:"dashboard"`

	// Database configuration for the local cache store
	Database DatabaseConfig `json:"database"`
}

// ChatlogConfig contains settings for the remote chat-log service
type ChatlogConfig struct {
	URL      string            `json:"url"`
	Username string            `json:"username"`
	Password string            `json:"password"`
	Token    string            `json:"token"`
	Headers  map[string]string `json:"headers"`
	Timeout  time.Duration     `json:"timeout"`
}

// DashboardConfig contains settings for the local web UI server
type DashboardConfig struct {
	Listen string `json:"listen"`

	// AllowedOrigins for CORS; the browser front end may be served from
	// a different origin than this API.
	AllowedOrigins []string `json:"allowed_origins"`
}

// DatabaseConfig selects and configures the cache store backend
type DatabaseConfig struct {
	Type       string `json:"type"` // "sqlite" or "postgres"
	SQLitePath string `json:"sqlite_path"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	SSLMode    string `json:"ssl_mode"`
}

func DefaultConfig() *Config {
	return &Config{
		Chatlog: ChatlogConfig{
			URL:     "http://localhost:8000",
			Headers: make(map[string]string),
			Timeout: 10 * time.Second,
		},
		Dashboard: DashboardConfig{
			Listen:         ":8081",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: "./chatterdash.db",
			SSLMode:    "disable",
		},
	}
}

// LoadConfig loads configuration from a file, creating it with defaults if it doesn't exist
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Chatlog.Headers == nil {
		config.Chatlog.Headers = make(map[string]string)
	}
	if config.Chatlog.Timeout <= 0 {
		config.Chatlog.Timeout = 10 * time.Second
	}
	if config.Database.Type == "" {
		config.Database.Type = "sqlite"
	}

	return &config, nil
}

// SaveToFile saves the configuration to a file
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chatterdash.json"
	}

	return filepath.Join(home, ".config", "chatterdash", "config.json")
}

// ParseHeadersFromEnv parses headers from environment variable
// Format: "key1=value1,key2=value2"
func ParseHeadersFromEnv(envVar string) map[string]string {
	headers := make(map[string]string)

	envValue := os.Getenv(envVar)
	if envValue == "" {
		return headers
	}

	pairs := strings.Split(envValue, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if key != "" && value != "" {
				headers[key] = value
			}
		}
	}

	return headers
}

// MergeHeaders merges environment headers with config headers.
// Environment headers take precedence.
func (c *Config) MergeHeaders() {
	envHeaders := ParseHeadersFromEnv("CHATLOG_HEADERS")

	if c.Chatlog.Headers == nil {
		c.Chatlog.Headers = make(map[string]string)
	}

	for key, value := range envHeaders {
		c.Chatlog.Headers[key] = value
	}
}
