// Package config resolves overrep settings from the config file,
// OVERREP_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the resolved settings for one invocation.
type Config struct {
	// DataDir is the root for libraries/, backgrounds/, gene_lists/
	// and snapshots/.
	DataDir  string `mapstructure:"data_dir"`
	Organism string `mapstructure:"organism"`
	// Workers bounds the per-term fan-out; 0 means one worker per CPU.
	Workers int    `mapstructure:"workers"`
	Method  string `mapstructure:"method"`
	// SnapshotDir defaults to <data_dir>/snapshots when unset.
	SnapshotDir string       `mapstructure:"snapshot_dir"`
	Log         LogConfig    `mapstructure:"log"`
	Server      ServerConfig `mapstructure:"server"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// DBPath defaults to <data_dir>/runs.duckdb when unset.
	DBPath string `mapstructure:"db_path"`
}

// DefaultDataDir returns ~/.overrep, falling back to a relative
// directory when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".overrep"
	}
	return filepath.Join(home, ".overrep")
}

// DefaultConfigFile returns the path of the default config file,
// ~/.overrep.yaml.
func DefaultConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".overrep.yaml"), nil
}

// Load reads cfgFile (or ~/.overrep.yaml when empty) into the global
// viper instance and returns the resolved configuration. Environment
// variables prefixed with OVERREP_ override file values, and a missing
// config file is not an error.
func Load(cfgFile string) (*Config, error) {
	viper.SetDefault("data_dir", DefaultDataDir())
	viper.SetDefault("organism", "Homo sapiens")
	viper.SetDefault("workers", 0)
	viper.SetDefault("method", "fishers_exact")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("snapshot_dir", "")
	viper.SetDefault("server.db_path", "")

	if cfgFile == "" {
		def, err := DefaultConfigFile()
		if err != nil {
			return nil, err
		}
		cfgFile = def
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("OVERREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = filepath.Join(cfg.DataDir, "snapshots")
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = filepath.Join(cfg.DataDir, "runs.duckdb")
	}
	return &cfg, nil
}

// NewLogger builds a JSON logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
