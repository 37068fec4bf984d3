package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings. BaseURL is the
// externally reachable root used for links embedded in notification
// emails.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// SessionConfig holds login session settings.
type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name" yaml:"cookie_name"`
	TTLHours   int    `mapstructure:"ttl_hours" yaml:"ttl_hours"`
}

// SMTPConfig holds outbound mail settings. The sender password is
// never stored in the config file; it comes from the
// TASKCUR_SMTP_PASSWORD environment variable.
type SMTPConfig struct {
	Addr          string `mapstructure:"addr" yaml:"addr"`
	SenderAddress string `mapstructure:"sender_address" yaml:"sender_address"`
}

// UsersConfig holds user-directory maintenance settings.
type UsersConfig struct {
	// PurgeAfterDays is how long an account with no tasks may sit
	// untouched before purge-inactive-users removes it.
	PurgeAfterDays int `mapstructure:"purge_after_days" yaml:"purge_after_days"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
	SMTP     SMTPConfig     `mapstructure:"smtp" yaml:"smtp"`
	Users    UsersConfig    `mapstructure:"users" yaml:"users"`
}

// SMTPPassword returns the sender password from the environment, or
// empty when the SMTP server needs no authentication.
func (c *AppConfig) SMTPPassword() string {
	return os.Getenv("TASKCUR_SMTP_PASSWORD")
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/taskcur/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskcur", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server:   ServerConfig{ListenAddr: ":8080", BaseURL: "http://localhost:8080"},
		Database: DatabaseConfig{Path: "taskcur.db"},
		Session:  SessionConfig{CookieName: "taskcur_session", TTLHours: 7 * 24},
		SMTP:     SMTPConfig{Addr: "localhost:25", SenderAddress: "taskcur@localhost"},
		Users:    UsersConfig{PurgeAfterDays: 365},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("database.path", "taskcur.db")
	v.SetDefault("session.cookie_name", "taskcur_session")
	v.SetDefault("session.ttl_hours", 7*24)
	v.SetDefault("smtp.addr", "localhost:25")
	v.SetDefault("smtp.sender_address", "taskcur@localhost")
	v.SetDefault("users.purge_after_days", 365)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
