package config

import (
	"flag"
)

// parseFlags binds root flags onto cfg, so a flag left unset keeps whatever
// the files and environment produced.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) ([]string, error) {
	if fs == nil {
		fs = flag.NewFlagSet(appName, flag.ContinueOnError)
	}

	fs.StringVar(&cfg.IDs, "ids", cfg.IDs, "id policy for new items: next or length")

	fs.StringVar(&cfg.Storage.Driver, "driver", cfg.Storage.Driver, "storage driver: file, memory, sqlite, postgres, s3")
	fs.StringVar(&cfg.Storage.Dir, "dir", cfg.Storage.Dir, "directory for the file driver")
	fs.StringVar(&cfg.Storage.Path, "db", cfg.Storage.Path, "database file for the sqlite driver")
	fs.StringVar(&cfg.Storage.DSN, "dsn", cfg.Storage.DSN, "connection string for the postgres driver")
	fs.StringVar(&cfg.Storage.Key, "key", cfg.Storage.Key, "storage key holding the groups")
	fs.StringVar(&cfg.Storage.S3.Bucket, "bucket", cfg.Storage.S3.Bucket, "bucket for the s3 driver")

	fs.StringVar(&cfg.Remote.BaseURL, "base-url", cfg.Remote.BaseURL, "placeholder API base URL")
	fs.StringVar(&cfg.Remote.Timeout, "timeout", cfg.Remote.Timeout, "placeholder API request timeout")

	fs.StringVar(&cfg.UI.Theme, "theme", cfg.UI.Theme, "force a theme: light, dark or mono")

	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format: text, json, logfmt")
	fs.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "write logs to this file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}
