// Package config loads project configuration for the sweep CLI.
//
// Configuration lives in .sweep/config.yaml in the working directory,
// with SWEEP_* environment variables taking precedence (SWEEP_TOKEN is
// the usual way to supply credentials without committing them).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DirName is the per-project state directory. It holds the config file
// and the persistence database; the database is local coordination state
// and must stay out of version control (init writes a .gitignore).
const DirName = ".sweep"

// ConfigFileName is the YAML config inside DirName.
const ConfigFileName = "config.yaml"

// DatabaseFileName is the default persistence file inside DirName.
const DatabaseFileName = "sweep.db"

// Config carries everything the CLI needs to reach the remote server and
// the local store.
type Config struct {
	Server   string `mapstructure:"server"`
	Token    string `mapstructure:"token"`
	Project  string `mapstructure:"project"`
	Database string `mapstructure:"database"`
	Holder   string `mapstructure:"holder"`
}

// Load reads configuration from dir/config.yaml and the environment. A
// missing config file is not an error; env vars alone can carry a full
// configuration.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ConfigFileName))
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SWEEP")
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{"server", "token", "project", "database", "holder"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}
	v.SetDefault("database", filepath.Join(dir, DatabaseFileName))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

const defaultConfigYAML = `# sweep configuration
# Values here can be overridden with SWEEP_* environment variables
# (SWEEP_SERVER, SWEEP_TOKEN, SWEEP_PROJECT, SWEEP_DATABASE, SWEEP_HOLDER).

# Remote analysis server base URL
server: ""

# Auth token; prefer SWEEP_TOKEN over committing it here
token: ""

# Project key on the remote server
project: ""

# Default holder identity for lock/unlock/resolve (any opaque string)
holder: ""
`

// Scaffold creates dir with a commented config file and a .gitignore
// covering the database. Existing files are left alone.
func Scaffold(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", configPath, err)
		}
	}

	gitignorePath := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(gitignorePath); os.IsNotExist(err) {
		// The db and its WAL sidecars are local coordination state.
		content := DatabaseFileName + "\n" + DatabaseFileName + "-wal\n" + DatabaseFileName + "-shm\n"
		if err := os.WriteFile(gitignorePath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", gitignorePath, err)
		}
	}
	return nil
}
