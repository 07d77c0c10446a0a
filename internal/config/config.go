package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	development environment = "development"
)

const DEFAULT_DATA_DIR = "./data"
const DEFAULT_PORT = 8787

type Config struct {
	dataDir      string
	logPaths     []string
	sentryDSN    string
	databaseURL  string
	otlpEndpoint string
	port         int
	mockRecords  bool
	env          environment
}

func (c *Config) DataDir() string {
	return c.dataDir
}

// Game log files, or directories containing them, to scan for the record page URL
func (c *Config) LogPaths() []string {
	return slices.Clone(c.logPaths)
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) DatabaseURL() string {
	return c.databaseURL
}

func (c *Config) TelemetryEnabled() bool {
	return c.otlpEndpoint != ""
}

func (c *Config) Port() int {
	return c.port
}

// Serve canned pulls instead of querying the record service. Development only.
func (c *Config) MockRecordService() bool {
	return c.mockRecords
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// WithDataDir returns a copy of the config using the given data dir
func (c Config) WithDataDir(dataDir string) Config {
	if dataDir == "" {
		return c
	}
	c.dataDir = filepath.Clean(dataDir)
	return c
}

// WithLogPaths returns a copy of the config using the given log paths
func (c Config) WithLogPaths(logPaths []string) Config {
	if len(logPaths) == 0 {
		return c
	}
	c.logPaths = slices.Clone(logPaths)
	return c
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, dataDir: %s, logPaths: %d, archive: %t, telemetry: %t, port: %d, ...}",
		string(c.env),
		c.dataDir,
		len(c.logPaths),
		c.databaseURL != "",
		c.TelemetryEnabled(),
		c.port,
	)
}

func splitPathList(raw string) []string {
	paths := []string{}
	for _, path := range filepath.SplitList(raw) {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

func ConfigFromEnv() (Config, error) {
	env := production
	if rawEnv := os.Getenv("GACHARECORD_ENVIRONMENT"); rawEnv != "" {
		switch rawEnv {
		case "production":
			env = production
		case "development":
			env = development
		default:
			return Config{}, fmt.Errorf("%w: GACHARECORD_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
		}
	}

	dataDir := DEFAULT_DATA_DIR
	if rawDataDir := os.Getenv("GACHARECORD_DATA_DIR"); rawDataDir != "" {
		dataDir = filepath.Clean(rawDataDir)
	}

	port := DEFAULT_PORT
	if rawPort := os.Getenv("GACHARECORD_PORT"); rawPort != "" {
		parsed, err := strconv.Atoi(rawPort)
		if err != nil || parsed <= 0 || parsed > 65535 {
			return Config{}, fmt.Errorf("%w: GACHARECORD_PORT (%s)", ErrInvalidValue, rawPort)
		}
		port = parsed
	}

	logPaths := splitPathList(os.Getenv("GACHARECORD_LOG_PATHS"))

	mockRecords := false
	if rawMock := os.Getenv("GACHARECORD_MOCK_RECORDS"); rawMock != "" {
		parsed, err := strconv.ParseBool(rawMock)
		if err != nil || (parsed && env != development) {
			return Config{}, fmt.Errorf("%w: GACHARECORD_MOCK_RECORDS (%s)", ErrInvalidValue, rawMock)
		}
		mockRecords = parsed
	}

	return Config{
		dataDir:      dataDir,
		logPaths:     logPaths,
		sentryDSN:    os.Getenv("SENTRY_DSN"),
		databaseURL:  os.Getenv("DATABASE_URL"),
		otlpEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		port:         port,
		mockRecords:  mockRecords,
		env:          env,
	}, nil
}
