package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Inventory InventoryConfig `yaml:"inventory"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// InventoryConfig contains unit inventory settings
type InventoryConfig struct {
	// ProjectID scopes every store read and write.
	ProjectID string `yaml:"project_id"`
	// DeleteConfirmToken is the shared secret required before a cascade
	// deletion resolves its target set.
	DeleteConfirmToken string `yaml:"delete_confirm_token"`
}

// AuthConfig contains the role → module → capability table consumed by the
// permission predicate.
type AuthConfig struct {
	DefaultRole string                                 `yaml:"default_role"`
	Roles       map[string]map[string]ModulePermission `yaml:"roles"`
}

// ModulePermission is one role's access to one module
type ModulePermission struct {
	CanView       bool `yaml:"can_view"`
	CanEnter      bool `yaml:"can_enter"`
	CanEditDelete bool `yaml:"can_edit_delete"`
}

// SchedulerConfig contains reconciliation job settings
type SchedulerConfig struct {
	ReconcileEnabled bool   `yaml:"reconcile_enabled"`
	ReconcileTime    string `yaml:"reconcile_time"`
}

// RateLimitConfig contains mutation rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8084",
			CORSOrigins: []string{"http://localhost:5176"},
		},
		Inventory: InventoryConfig{
			ProjectID:          "default",
			DeleteConfirmToken: "DELETE",
		},
		Auth: AuthConfig{
			DefaultRole: "admin",
			Roles: map[string]map[string]ModulePermission{
				"admin": {
					"unit_inventory": {CanView: true, CanEnter: true, CanEditDelete: true},
				},
				"supervisor": {
					"unit_inventory": {CanView: true, CanEnter: true},
				},
				"viewer": {
					"unit_inventory": {CanView: true},
				},
			},
		},
		Scheduler: SchedulerConfig{
			ReconcileEnabled: false,
			ReconcileTime:    "02:00",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			RequestsPerHour:   300,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
