// Package config resolves lifeos settings from <config dir>/.env and
// LIFEOS_* environment variables. Command line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/keyring"
	"github.com/julianstephens/lifeos/internal/utils"
)

type Config struct {
	Dir                string
	Backend            string
	Database           string
	APIURL             string
	APIToken           string
	UserID             string
	Timezone           string
	RevalidateInterval time.Duration
	MetricsAddr        string
	Debug              bool
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Load reads dir/.env, if present, into the process environment without
// overriding variables that are already set, then builds a Config from the
// environment.
func Load(dir string) (Config, error) {
	if dir == "" {
		dir = constants.DefaultConfigDir
	}
	dir, err := ExpandPath(dir)
	if err != nil {
		return Config{}, err
	}

	envFile := filepath.Join(dir, constants.EnvFileName)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg := Config{
		Dir:                dir,
		Backend:            strings.ToLower(GetEnvAsString(constants.EnvBackend, "")),
		Database:           GetEnvAsString(constants.EnvDatabase, filepath.Join(dir, constants.DefaultDBFile)),
		APIURL:             GetEnvAsString(constants.EnvAPIURL, ""),
		APIToken:           GetEnvAsString(constants.EnvAPIToken, ""),
		UserID:             GetEnvAsString(constants.EnvUserID, constants.DefaultUserID),
		Timezone:           GetEnvAsString(constants.EnvTimezone, "Local"),
		RevalidateInterval: GetEnvAsDuration(constants.EnvRevalidateInterval, constants.DefaultRevalidateInterval),
		MetricsAddr:        GetEnvAsString(constants.EnvMetricsAddr, ""),
		Debug:              GetEnvAsBool(constants.EnvDebug, false),
	}
	return cfg, nil
}

// ResolveBackend fills Backend from the other settings when it was not set
// explicitly: an API URL selects http, a postgres connection string selects
// postgres and anything else is a sqlite path.
func (c *Config) ResolveBackend() {
	if c.Backend != "" {
		return
	}
	switch {
	case c.APIURL != "":
		c.Backend = constants.BackendHTTP
	case IsPostgresConnString(c.Database):
		c.Backend = constants.BackendPostgres
	default:
		c.Backend = constants.BackendSQLite
	}
}

// IsPostgresConnString reports whether s looks like a PostgreSQL URL or DSN.
func IsPostgresConnString(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "postgres://") ||
		strings.HasPrefix(s, "postgresql://") ||
		strings.Contains(s, "host=") ||
		strings.Contains(s, "dbname=")
}

// Validate checks the resolved settings.
func (c Config) Validate() error {
	switch c.Backend {
	case constants.BackendSQLite, constants.BackendPostgres:
		if strings.TrimSpace(c.Database) == "" {
			return errors.New("database is required")
		}
	case constants.BackendHTTP:
		if c.APIURL == "" {
			return fmt.Errorf("%s is required for the http backend", constants.EnvAPIURL)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend,
			constants.BackendSQLite, constants.BackendPostgres, constants.BackendHTTP)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user id cannot be empty")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.RevalidateInterval < 0 {
		return errors.New("revalidate interval cannot be negative")
	}
	return nil
}

// Location returns the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// ConnString returns the PostgreSQL connection string, preferring
// LIFEOS_DB_CONNECTION, then the OS keyring, then Database.
func (c Config) ConnString() string {
	if v := GetEnvAsString(constants.EnvDBConnection, ""); v != "" {
		return v
	}
	if v, err := keyring.GetConnectionString(); err == nil {
		return v
	}
	return c.Database
}

// Token returns the API token from the environment or, failing that, the
// OS keyring. An empty token is not an error here.
func (c Config) Token() string {
	if c.APIToken != "" {
		return c.APIToken
	}
	if v, err := keyring.GetAPIToken(); err == nil {
		return v
	}
	return ""
}
