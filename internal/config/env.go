package config

import (
	"os"
	"strconv"
	"strings"
)

const envPrefix = "TODOGROUPS_"

// loadFromEnv overrides config from TODOGROUPS_* variables.
// Unparsable numbers and booleans are ignored.
func loadFromEnv(cfg *Config) {
	str := func(name string, dst *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	str("IDS", &cfg.IDs)

	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("STORAGE_DIR", &cfg.Storage.Dir)
	str("STORAGE_PATH", &cfg.Storage.Path)
	str("STORAGE_DSN", &cfg.Storage.DSN)
	str("STORAGE_KEY", &cfg.Storage.Key)
	str("S3_REGION", &cfg.Storage.S3.Region)
	str("S3_BUCKET", &cfg.Storage.S3.Bucket)
	str("S3_PREFIX", &cfg.Storage.S3.Prefix)
	str("S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	str("S3_ACCESS_KEY_ID", &cfg.Storage.S3.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &cfg.Storage.S3.SecretAccessKey)
	if v := os.Getenv(envPrefix + "S3_PATH_STYLE"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.Storage.S3.PathStyle = b
		}
	}

	str("REMOTE_BASE_URL", &cfg.Remote.BaseURL)
	str("REMOTE_TIMEOUT", &cfg.Remote.Timeout)
	if v := os.Getenv(envPrefix + "REMOTE_DEFAULT_USER"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Remote.DefaultUser = n
		}
	}

	str("THEME", &cfg.UI.Theme)

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("LOG_FILE", &cfg.Log.File)
}
