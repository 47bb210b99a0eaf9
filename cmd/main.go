// cmd/main.go

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fapiao/pkg/cache"
	"fapiao/pkg/database"
	"fapiao/pkg/logger"
	"fapiao/pkg/models"
	"fapiao/pkg/pipeline"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// errConfigNotFound means no config file exists in any searched location
var errConfigNotFound = errors.New("config file not found in any of the expected locations")

// findConfigFile looks for config.yml in various locations
func findConfigFile() (string, error) {
	// Possible config locations
	locations := []string{
		"config/config.yml",                       // From current directory
		"../config/config.yml",                    // One level up
		filepath.Join("cmd", "config/config.yml"), // From cmd directory
	}

	// Get executable directory
	ex, err := os.Executable()
	if err == nil {
		execDir := filepath.Dir(ex)
		locations = append(locations,
			filepath.Join(execDir, "config/config.yml"),
			filepath.Join(execDir, "../config/config.yml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			absPath, err := filepath.Abs(loc)
			if err != nil {
				continue
			}
			return absPath, nil
		}
	}

	return "", errConfigNotFound
}

// loadConfig reads the config file at path, or the first one found when path
// is empty. Without any config file the defaults are used.
func loadConfig(path string) (*models.Config, string, error) {
	var config models.Config

	if path == "" {
		found, err := findConfigFile()
		switch {
		case errors.Is(err, errConfigNotFound):
		case err != nil:
			return nil, "", fmt.Errorf("failed to find config file: %w", err)
		default:
			path = found
		}
	}

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &config); err != nil {
			return nil, "", fmt.Errorf("error parsing config file: %w", err)
		}
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}

	// Make paths absolute so later chdirs cannot move them
	for _, p := range []*string{
		&config.Input.Dir,
		&config.Cache.Path,
		&config.Database.Path,
		&config.Logging.Path,
	} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return nil, "", fmt.Errorf("invalid path %q: %w", *p, err)
		}
		*p = abs
	}

	return &config, path, nil
}

// app holds what every command needs
type app struct {
	config  *models.Config
	logger  zerolog.Logger
	logFile io.Closer
	db      *database.Database
}

// newApp loads configuration and sets up logging and, when configured, the
// database
func newApp(configPath string) (*app, error) {
	config, loadedFrom, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log, logFile, err := logger.NewWithFile(config.Logging.Path, config.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logger setup error: %w", err)
	}
	if loadedFrom != "" {
		log.Debug().Str("path", loadedFrom).Msg("Loaded config")
	} else {
		log.Debug().Msg("No config file found, using defaults")
	}

	a := &app{config: config, logger: log, logFile: logFile}
	if config.Database.Path != "" {
		db, err := database.InitDB(config.Database.Path)
		if err != nil {
			logFile.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.db = db
	}
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	a.logFile.Close()
}

// store returns the configured cache backend
func (a *app) store() cache.Store {
	if a.config.Cache.Backend == models.CacheBackendSQLite {
		return database.NewCacheStore(a.db)
	}
	return cache.NewJSONStore(a.config.Cache.Path)
}

func (a *app) extractor() *pipeline.FileExtractor {
	return pipeline.NewFileExtractor(a.config, a.logger)
}

func (a *app) scanner() *pipeline.Scanner {
	opts := []pipeline.Option{pipeline.WithWorkers(a.config.Processing.Workers)}
	if a.db != nil {
		opts = append(opts, pipeline.WithJournal(a.db))
	}
	return pipeline.NewScanner(a.store(), a.extractor(), a.logger, opts...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
