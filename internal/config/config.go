// Package config loads settings from TOML files, the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/storage"
)

const (
	appName         = "todogroups"
	projectFileName = "todogroups.toml"

	DefaultDriver  = storage.DriverFile
	DefaultKey     = "todos"
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"
	DefaultTimeout = "10s"
	DefaultUser    = 1
	DefaultLevel   = "warn"
)

type Config struct {
	// IDs is the id policy for new groups and todos: next or length.
	IDs     string  `toml:"ids"`
	Storage Storage `toml:"storage"`
	Remote  Remote  `toml:"remote"`
	UI      UI      `toml:"ui"`
	Log     Log     `toml:"log"`
}

type Storage struct {
	Driver string `toml:"driver"`
	Dir    string `toml:"dir"`  // file driver; empty is the working directory
	Path   string `toml:"path"` // sqlite database file
	DSN    string `toml:"dsn"`  // postgres
	Key    string `toml:"key"`
	S3     S3     `toml:"s3"`
}

type S3 struct {
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	Endpoint        string `toml:"endpoint"`
	PathStyle       bool   `toml:"path_style"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
}

type Remote struct {
	BaseURL     string `toml:"base_url"`
	Timeout     string `toml:"timeout"`
	DefaultUser int    `toml:"default_user"`
}

type UI struct {
	// Theme forces light, dark or mono. Empty uses the persisted choice.
	Theme string `toml:"theme"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

func setDefaults(cfg *Config) {
	cfg.IDs = string(model.IDNext)
	cfg.Storage.Driver = DefaultDriver
	cfg.Storage.Key = DefaultKey
	cfg.Remote.BaseURL = DefaultBaseURL
	cfg.Remote.Timeout = DefaultTimeout
	cfg.Remote.DefaultUser = DefaultUser
	cfg.Log.Level = DefaultLevel
}

// Load merges, lowest priority first:
// defaults, the user file, ./todogroups.toml, TODOGROUPS_* variables, flags.
// It returns the arguments left after flag parsing.
func Load(fs *flag.FlagSet, args []string) (*Config, []string, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if p := findUserConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}
	if p := findProjectConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, nil, fmt.Errorf("loading project config file %s: %w", p, err)
		}
	}

	loadFromEnv(cfg)

	rest, err := parseFlags(cfg, fs, args)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing flags: %w", err)
	}
	if err := finalizeConfig(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func finalizeConfig(cfg *Config) error {
	cfg.Storage.Dir = expandPath(cfg.Storage.Dir)
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Log.File = expandPath(cfg.Log.File)

	var errs []error
	switch cfg.Storage.Driver {
	case storage.DriverMemory, storage.DriverFile, storage.DriverSQLite, storage.DriverPostgres:
	case storage.DriverS3:
		if cfg.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("storage.s3.bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver))
	}
	if cfg.Storage.Key == "" {
		errs = append(errs, errors.New("storage.key must not be empty"))
	}
	if _, err := model.ParseIDPolicy(cfg.IDs); err != nil {
		errs = append(errs, err)
	}
	if _, err := cfg.Remote.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	switch cfg.UI.Theme {
	case "", "light", "dark", "mono":
	default:
		errs = append(errs, fmt.Errorf("unknown theme %q", cfg.UI.Theme))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IDPolicy returns the parsed id policy. Load has already validated it.
func (c *Config) IDPolicy() model.IDPolicy {
	p, _ := model.ParseIDPolicy(c.IDs)
	return p
}

// TimeoutDuration parses Timeout. Empty means no timeout.
func (r Remote) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("remote.timeout: %w", err)
	}
	return d, nil
}

// userConfigDir is replaced in tests.
var userConfigDir = os.UserConfigDir

func findUserConfigFile() string {
	dir, err := userConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	p := filepath.Join(dir, appName, "config.toml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func findProjectConfigFile() string {
	for _, name := range []string{projectFileName, "." + projectFileName} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
