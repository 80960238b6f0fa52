package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/brugmelding/brugwacht/internal/app"
	"github.com/brugmelding/brugwacht/internal/constants"
	"github.com/brugmelding/brugwacht/internal/log"
	"github.com/brugmelding/brugwacht/pkg/config"
	"github.com/joho/godotenv"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	once := flag.Bool("once", false, "Run a single pipeline cycle and exit (for cron-style deployments)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("brugwacht %s\n", constants.Version)
		os.Exit(0)
	}

	// Optional .env next to the binary, handy for database credentials
	godotenv.Load()

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	provider, err := newConfigProvider(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	defer provider.Close()

	application := app.New(provider, log.GetSugaredLogger())

	if *once {
		if err := application.RunOnce(context.Background()); err != nil {
			log.Errorf("Run failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}

// newConfigProvider selects the configuration backend
func newConfigProvider(filename, backend string) (config.ConfigProvider, error) {
	switch backend {
	case "yaml":
		return config.NewYAMLProvider(filename), nil
	case "sqlite":
		return config.NewSQLiteProvider(filename)
	default:
		return nil, fmt.Errorf("unknown config backend: %s (use 'yaml' or 'sqlite')", backend)
	}
}
