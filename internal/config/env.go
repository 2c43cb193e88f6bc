package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Keys are spelled out in full: envconfig falls back to a nested field's bare
// tag, so a nested USER field would pick up the login name from the shell.
type EnvConfig struct {
	// Env: SOURCE_URL
	SourceURL string `envconfig:"SOURCE_URL"`

	// Env: SOURCE_USERNAME
	SourceUsername string `envconfig:"SOURCE_USERNAME"`

	// Env: SOURCE_PASSWORD
	SourcePassword string `envconfig:"SOURCE_PASSWORD"`

	// SourceCacheDir caches source API responses between runs.
	// Env: SOURCE_CACHE_DIR
	SourceCacheDir string `envconfig:"SOURCE_CACHE_DIR"`

	// Env: TARGET_URL
	TargetURL string `envconfig:"TARGET_URL"`

	// Env: TARGET_USERNAME
	TargetUsername string `envconfig:"TARGET_USERNAME"`

	// Env: TARGET_PASSWORD
	TargetPassword string `envconfig:"TARGET_PASSWORD"`

	// TargetMainPage is the page naming the homepage.
	// Env: TARGET_MAIN_PAGE (default: MediaWiki:Mainpage)
	TargetMainPage string `envconfig:"TARGET_MAIN_PAGE" default:"MediaWiki:Mainpage"`

	// StorageDirect writes files straight into the target's storage.
	// Env: STORAGE_DIRECT (default: false)
	StorageDirect bool `envconfig:"STORAGE_DIRECT" default:"false"`

	// StorageDBEnv locates the target database.
	StorageDBEnv

	// Env: STORAGE_TABLE (default: image)
	StorageTable string `envconfig:"STORAGE_TABLE" default:"image"`

	// Env: STORAGE_DATA_ROOT
	StorageDataRoot string `envconfig:"STORAGE_DATA_ROOT"`

	// Env: STORAGE_USER_ID (default: 0)
	StorageUserID int64 `envconfig:"STORAGE_USER_ID" default:"0"`

	// HTTPTimeout is the per-request timeout in seconds.
	// Env: HTTP_TIMEOUT (default: 60)
	HTTPTimeout float64 `envconfig:"HTTP_TIMEOUT" default:"60"`

	// UploadDelay is the pause before each API upload in seconds.
	// Env: UPLOAD_DELAY (default: 1)
	UploadDelay float64 `envconfig:"UPLOAD_DELAY" default:"1"`

	// Env: COPY_PAGES (default: true)
	CopyPages bool `envconfig:"COPY_PAGES" default:"true"`

	// Env: COPY_FILES (default: true)
	CopyFiles bool `envconfig:"COPY_FILES" default:"true"`

	// Env: SHOW_SUBPAGES (default: true)
	ShowSubpages bool `envconfig:"SHOW_SUBPAGES" default:"true"`

	// Env: SHOW_FILES (default: true)
	ShowFiles bool `envconfig:"SHOW_FILES" default:"true"`

	// HierarchicalPaths writes pages under their full source path.
	// Env: HIERARCHICAL_PATHS (default: true)
	HierarchicalPaths bool `envconfig:"HIERARCHICAL_PATHS" default:"true"`

	// SkipPaths is a comma-separated list of page path globs not to write.
	// Env: SKIP_PATHS
	SkipPaths string `envconfig:"SKIP_PATHS"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// LogFile additionally writes logs to a size-rotated file.
	// Env: LOG_FILE
	LogFile string `envconfig:"LOG_FILE"`

	// MetricsFile receives run counters in the node exporter textfile format.
	// Env: METRICS_FILE
	MetricsFile string `envconfig:"METRICS_FILE"`
}

// StorageDBEnv locates the storage database either by URL or by parts.
// It is embedded without a prefix of its own.
type StorageDBEnv struct {
	// Env: STORAGE_DB_URL
	URL string `envconfig:"STORAGE_DB_URL"`

	// Env: STORAGE_DB_HOST
	Host string `envconfig:"STORAGE_DB_HOST"`

	// Env: STORAGE_DB_PORT (default: 5432)
	Port int `envconfig:"STORAGE_DB_PORT" default:"5432"`

	// Env: STORAGE_DB_NAME
	Name string `envconfig:"STORAGE_DB_NAME"`

	// Env: STORAGE_DB_USER
	User string `envconfig:"STORAGE_DB_USER"`

	// Env: STORAGE_DB_PASSWORD
	Password string `envconfig:"STORAGE_DB_PASSWORD"`
}

// ConnectionURL returns the configured URL, or one assembled from the parts
// when only a host is given.
func (d StorageDBEnv) ConnectionURL() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Host == "" {
		return ""
	}
	return PostgresURL(d.Host, d.Port, d.Name, d.User, d.Password)
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix, e.g. MT2MW.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	opts := []AppConfigOption{
		WithSourceURL(e.SourceURL),
		WithSourceCredentials(e.SourceUsername, e.SourcePassword),
		WithSourceCacheDir(e.SourceCacheDir),
		WithTargetURL(e.TargetURL),
		WithTargetCredentials(e.TargetUsername, e.TargetPassword),
		WithDirectStorage(e.StorageDirect),
		WithStorageDBURL(e.StorageDBEnv.ConnectionURL()),
		WithDataRoot(e.StorageDataRoot),
		WithStorageUserID(e.StorageUserID),
		WithCopyPages(e.CopyPages),
		WithCopyFiles(e.CopyFiles),
		WithShowSubpages(e.ShowSubpages),
		WithShowFiles(e.ShowFiles),
		WithHierarchicalPaths(e.HierarchicalPaths),
		WithLogFile(e.LogFile),
		WithMetricsFile(e.MetricsFile),
	}

	if e.TargetMainPage != "" {
		opts = append(opts, WithMainPage(e.TargetMainPage))
	}
	if e.StorageTable != "" {
		opts = append(opts, WithStorageTable(e.StorageTable))
	}
	if e.HTTPTimeout > 0 {
		opts = append(opts, WithHTTPTimeout(seconds(e.HTTPTimeout)))
	}
	if e.UploadDelay >= 0 {
		opts = append(opts, WithUploadDelay(seconds(e.UploadDelay)))
	}
	if e.SkipPaths != "" {
		opts = append(opts, WithSkipPaths(ParseList(e.SkipPaths)))
	}
	if e.LogLevel != "" {
		opts = append(opts, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		opts = append(opts, WithLogFormat(ParseLogFormat(e.LogFormat)))
	}

	return cfg.Apply(opts...)
}

// ParseList splits a comma-separated list, dropping blanks.
func ParseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseLogFormat maps a string to a LogFormat, defaulting to pretty.
func ParseLogFormat(s string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
