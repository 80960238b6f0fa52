package config

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite configuration
// databases. The schema is a flat key/value table for app and feed
// settings plus one row per storage backend and controller, so that a
// deployment can manage configuration with plain SQL.
type SQLiteProvider struct {
	db *sql.DB
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(filename string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("could not open config database %s: %v", filename, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not read config database %s: %v", filename, err)
	}

	return &SQLiteProvider{db: db}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	settings, err := s.loadSettings()
	if err != nil {
		return nil, err
	}

	config.App.BridgesFile = settings["app.bridges_file"]
	config.App.SnapshotFile = settings["app.snapshot_file"]
	config.App.RunLogFile = settings["app.run_log_file"]
	config.App.MissingIDFile = settings["app.missing_id_file"]
	config.App.PollInterval = settingInt(settings, "app.poll_interval")
	config.Feed.URL = settings["feed.url"]
	config.Feed.Timeout = settingInt(settings, "feed.timeout")
	config.Feed.MatchingMode = settings["feed.matching_mode"]
	config.Feed.MissingIDPolicy = settings["feed.missing_id_policy"]

	if err := s.loadStorage(config); err != nil {
		return nil, err
	}
	if err := s.loadControllers(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (s *SQLiteProvider) loadSettings() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("could not load settings: %v", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("could not scan setting: %v", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SQLiteProvider) loadStorage(config *ConfigData) error {
	rows, err := s.db.Query(`SELECT backend, connection_string FROM storage_configs`)
	if err != nil {
		return fmt.Errorf("could not load storage configs: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var backend, connectionString string
		if err := rows.Scan(&backend, &connectionString); err != nil {
			return fmt.Errorf("could not scan storage config: %v", err)
		}
		switch backend {
		case "postgresql":
			config.Storage.PostgreSQL = &PostgreSQLData{ConnectionString: connectionString}
		default:
			return fmt.Errorf("unknown storage backend in config database: %s", backend)
		}
	}
	return rows.Err()
}

func (s *SQLiteProvider) loadControllers(config *ConfigData) error {
	rows, err := s.db.Query(`SELECT type, listen_addr, port, cert, key FROM controller_configs`)
	if err != nil {
		return fmt.Errorf("could not load controller configs: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var controllerType, listenAddr, cert, key string
		var port int
		if err := rows.Scan(&controllerType, &listenAddr, &port, &cert, &key); err != nil {
			return fmt.Errorf("could not scan controller config: %v", err)
		}
		con := ControllerData{Type: controllerType}
		if controllerType == "rest" {
			con.RESTServer = &RESTServerData{
				ListenAddr: listenAddr,
				Port:       port,
				Cert:       cert,
				Key:        key,
			}
		}
		config.Controllers = append(config.Controllers, con)
	}
	return rows.Err()
}

func settingInt(settings map[string]string, key string) int {
	v, ok := settings[key]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// IsReadOnly returns false: SQLite configurations can be managed in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the configuration database
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
