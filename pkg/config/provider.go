// Package config provides configuration loading for brugwacht from YAML
// files or SQLite databases behind a common provider interface.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	App         AppData          `json:"app" yaml:"app"`
	Feed        FeedData         `json:"feed" yaml:"feed"`
	Storage     StorageData      `json:"storage,omitempty" yaml:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty" yaml:"controllers,omitempty"`
}

// AppData holds run-level settings: input/output files and scheduling
type AppData struct {
	BridgesFile   string `json:"bridges_file" yaml:"bridges_file" validate:"required"`
	SnapshotFile  string `json:"snapshot_file" yaml:"snapshot_file" validate:"required"`
	RunLogFile    string `json:"run_log_file,omitempty" yaml:"run_log_file,omitempty"`
	MissingIDFile string `json:"missing_id_file,omitempty" yaml:"missing_id_file,omitempty"`
	PollInterval  int    `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty" validate:"omitempty,min=5"`
}

// FeedData holds the NDW feed endpoint and matching policy settings
type FeedData struct {
	URL             string `json:"url" yaml:"url" validate:"required,url"`
	Timeout         int    `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"omitempty,min=1"`
	MatchingMode    string `json:"matching_mode,omitempty" yaml:"matching_mode,omitempty" validate:"omitempty,oneof=coordinate ndwid"`
	MissingIDPolicy string `json:"missing_id_policy,omitempty" yaml:"missing_id_policy,omitempty" validate:"omitempty,oneof=log ignore"`
}

// StorageData holds the configuration for the transition-history store
type StorageData struct {
	PostgreSQL *PostgreSQLData `json:"postgresql,omitempty" yaml:"postgresql,omitempty"`
}

// PostgreSQLData holds the connection settings for the history database
type PostgreSQLData struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
}

// ControllerData holds the configuration for controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty" yaml:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// RESTServerData holds the configuration for the history REST server
type RESTServerData struct {
	Cert       string `json:"cert,omitempty" yaml:"cert,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
}

// Defaults applied after loading, mirroring the original deployment.
const (
	DefaultFeedURL         = "http://opendata.ndw.nu/brugopeningen.xml.gz"
	DefaultFeedTimeout     = 30
	DefaultMatchingMode    = "coordinate"
	DefaultMissingIDPolicy = "log"
	DefaultPollInterval    = 60
)

// Validate checks a loaded configuration and fills in defaults
func (c *ConfigData) Validate() error {
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = DefaultFeedTimeout
	}
	if c.Feed.MatchingMode == "" {
		c.Feed.MatchingMode = DefaultMatchingMode
	}
	if c.Feed.MissingIDPolicy == "" {
		c.Feed.MissingIDPolicy = DefaultMissingIDPolicy
	}
	if c.App.PollInterval == 0 {
		c.App.PollInterval = DefaultPollInterval
	}

	v := validator.New()
	if err := v.Struct(c.App); err != nil {
		return fmt.Errorf("invalid app configuration: %v", err)
	}
	if err := v.Struct(c.Feed); err != nil {
		return fmt.Errorf("invalid feed configuration: %v", err)
	}
	for i, con := range c.Controllers {
		if con.Type == "" {
			return fmt.Errorf("controller %d has no type", i)
		}
	}
	return nil
}
