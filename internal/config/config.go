// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultLogLevel     = "INFO"
	DefaultHTTPTimeout  = 60 * time.Second
	DefaultUploadDelay  = time.Second
	DefaultMainPage     = "MediaWiki:Mainpage"
	DefaultStorageTable = "image"
	DefaultPostgresPort = 5432
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// SourceConfig describes the source wiki API.
type SourceConfig struct {
	url      string
	username string
	password string
	cacheDir string
}

// URL returns the source wiki base URL.
func (s SourceConfig) URL() string { return s.url }

// Username returns the basic auth user, empty for anonymous access.
func (s SourceConfig) Username() string { return s.username }

// Password returns the basic auth password.
func (s SourceConfig) Password() string { return s.password }

// CacheDir returns the directory caching source responses, empty when disabled.
func (s SourceConfig) CacheDir() string { return s.cacheDir }

// HasCredentials reports whether basic auth is configured.
func (s SourceConfig) HasCredentials() bool { return s.username != "" }

// TargetConfig describes the target wiki API.
type TargetConfig struct {
	url      string
	username string
	password string
	mainPage string
}

// URL returns the target wiki base URL.
func (t TargetConfig) URL() string { return t.url }

// Username returns the target login name.
func (t TargetConfig) Username() string { return t.username }

// Password returns the target login password.
func (t TargetConfig) Password() string { return t.password }

// MainPage returns the title of the homepage marker page.
func (t TargetConfig) MainPage() string { return t.mainPage }

// StorageConfig describes direct access to the target's file storage.
type StorageConfig struct {
	direct   bool
	dbURL    string
	table    string
	dataRoot string
	userID   int64
}

// Direct reports whether files are written straight into storage instead of
// going through the upload API.
func (s StorageConfig) Direct() bool { return s.direct }

// DBURL returns the storage database URL.
func (s StorageConfig) DBURL() string { return s.dbURL }

// Table returns the name of the file table.
func (s StorageConfig) Table() string { return s.table }

// DataRoot returns the directory the target serves uploaded files from.
func (s StorageConfig) DataRoot() string { return s.dataRoot }

// UserID returns the id recorded as uploader, 0 for none.
func (s StorageConfig) UserID() int64 { return s.userID }

// PublishConfig selects what is migrated.
type PublishConfig struct {
	copyPages    bool
	copyFiles    bool
	showSubpages bool
	showFiles    bool
	hierarchical bool
	skipPaths    []string
}

// NewPublishConfig creates a PublishConfig that migrates everything.
func NewPublishConfig() PublishConfig {
	return PublishConfig{
		copyPages:    true,
		copyFiles:    true,
		showSubpages: true,
		showFiles:    true,
		hierarchical: true,
	}
}

// CopyPages reports whether page text is written.
func (p PublishConfig) CopyPages() bool { return p.copyPages }

// CopyFiles reports whether attachments are transferred.
func (p PublishConfig) CopyFiles() bool { return p.copyFiles }

// ShowSubpages reports whether pages get a generated subpage index.
func (p PublishConfig) ShowSubpages() bool { return p.showSubpages }

// ShowFiles reports whether pages get a generated file index.
func (p PublishConfig) ShowFiles() bool { return p.showFiles }

// Hierarchical reports whether pages are written under their full path.
func (p PublishConfig) Hierarchical() bool { return p.hierarchical }

// SkipPaths returns the glob patterns of pages not to write.
func (p PublishConfig) SkipPaths() []string {
	result := make([]string, len(p.skipPaths))
	copy(result, p.skipPaths)
	return result
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	source      SourceConfig
	target      TargetConfig
	storage     StorageConfig
	publish     PublishConfig
	httpTimeout time.Duration
	uploadDelay time.Duration
	logLevel    string
	logFormat   LogFormat
	logFile     string
	metricsFile string
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		target:      TargetConfig{mainPage: DefaultMainPage},
		storage:     StorageConfig{table: DefaultStorageTable},
		publish:     NewPublishConfig(),
		httpTimeout: DefaultHTTPTimeout,
		uploadDelay: DefaultUploadDelay,
		logLevel:    DefaultLogLevel,
		logFormat:   LogFormatPretty,
	}
}

// Source returns the source wiki settings.
func (c AppConfig) Source() SourceConfig { return c.source }

// Target returns the target wiki settings.
func (c AppConfig) Target() TargetConfig { return c.target }

// Storage returns the direct storage settings.
func (c AppConfig) Storage() StorageConfig { return c.storage }

// Publish returns what is migrated.
func (c AppConfig) Publish() PublishConfig { return c.publish }

// HTTPTimeout returns the per-request timeout for both wikis.
func (c AppConfig) HTTPTimeout() time.Duration { return c.httpTimeout }

// UploadDelay returns the pause before each upload through the target API.
func (c AppConfig) UploadDelay() time.Duration { return c.uploadDelay }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// LogFile returns the path of the rotated log file, empty for none.
func (c AppConfig) LogFile() string { return c.logFile }

// MetricsFile returns the path of the metrics textfile, empty for none.
func (c AppConfig) MetricsFile() string { return c.metricsFile }

// Validate checks the configuration before any network activity.
func (c AppConfig) Validate() error {
	var errs []error
	if err := validateURL("source url", c.source.url); err != nil {
		errs = append(errs, err)
	}
	if err := validateURL("target url", c.target.url); err != nil {
		errs = append(errs, err)
	}
	if c.target.username == "" {
		errs = append(errs, errors.New("target username is required"))
	}
	if c.storage.direct {
		if c.storage.dbURL == "" {
			errs = append(errs, errors.New("storage database is required for direct storage"))
		}
		if c.storage.dataRoot == "" {
			errs = append(errs, errors.New("storage data root is required for direct storage"))
		}
	}
	if c.httpTimeout < 0 {
		errs = append(errs, errors.New("http timeout must not be negative"))
	}
	if c.uploadDelay < 0 {
		errs = append(errs, errors.New("upload delay must not be negative"))
	}
	if c.logFormat != LogFormatPretty && c.logFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.logFormat))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be http or https: %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", name, raw)
	}
	return nil
}

// PostgresURL assembles a connection URL from its parts.
func PostgresURL(host string, port int, name, user, password string) string {
	if port == 0 {
		port = DefaultPostgresPort
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   host + ":" + strconv.Itoa(port),
		Path:   "/" + name,
	}
	if user != "" {
		if password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String()
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Apply returns a copy of c with the options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithSourceURL sets the source wiki URL.
func WithSourceURL(u string) AppConfigOption {
	return func(c *AppConfig) { c.source.url = u }
}

// WithSourceCredentials sets the source basic auth credentials.
func WithSourceCredentials(username, password string) AppConfigOption {
	return func(c *AppConfig) {
		c.source.username = username
		c.source.password = password
	}
}

// WithSourceCacheDir enables caching of source responses.
func WithSourceCacheDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.source.cacheDir = dir }
}

// WithTargetURL sets the target wiki URL.
func WithTargetURL(u string) AppConfigOption {
	return func(c *AppConfig) { c.target.url = u }
}

// WithTargetCredentials sets the target login.
func WithTargetCredentials(username, password string) AppConfigOption {
	return func(c *AppConfig) {
		c.target.username = username
		c.target.password = password
	}
}

// WithMainPage sets the homepage marker title.
func WithMainPage(title string) AppConfigOption {
	return func(c *AppConfig) { c.target.mainPage = title }
}

// WithDirectStorage enables or disables direct storage writes.
func WithDirectStorage(direct bool) AppConfigOption {
	return func(c *AppConfig) { c.storage.direct = direct }
}

// WithStorageDBURL sets the storage database URL.
func WithStorageDBURL(u string) AppConfigOption {
	return func(c *AppConfig) { c.storage.dbURL = u }
}

// WithStorageTable sets the file table name.
func WithStorageTable(table string) AppConfigOption {
	return func(c *AppConfig) { c.storage.table = table }
}

// WithDataRoot sets the local directory files are stored under.
func WithDataRoot(dir string) AppConfigOption {
	return func(c *AppConfig) { c.storage.dataRoot = dir }
}

// WithStorageUserID sets the uploader id recorded for stored files.
func WithStorageUserID(id int64) AppConfigOption {
	return func(c *AppConfig) { c.storage.userID = id }
}

// WithCopyPages enables or disables writing pages.
func WithCopyPages(v bool) AppConfigOption {
	return func(c *AppConfig) { c.publish.copyPages = v }
}

// WithCopyFiles enables or disables transferring files.
func WithCopyFiles(v bool) AppConfigOption {
	return func(c *AppConfig) { c.publish.copyFiles = v }
}

// WithShowSubpages enables or disables the subpage index.
func WithShowSubpages(v bool) AppConfigOption {
	return func(c *AppConfig) { c.publish.showSubpages = v }
}

// WithShowFiles enables or disables the file index.
func WithShowFiles(v bool) AppConfigOption {
	return func(c *AppConfig) { c.publish.showFiles = v }
}

// WithHierarchicalPaths selects full-path or flat target titles.
func WithHierarchicalPaths(v bool) AppConfigOption {
	return func(c *AppConfig) { c.publish.hierarchical = v }
}

// WithSkipPaths sets the glob patterns of pages not to write.
func WithSkipPaths(patterns []string) AppConfigOption {
	return func(c *AppConfig) {
		c.publish.skipPaths = make([]string, len(patterns))
		copy(c.publish.skipPaths, patterns)
	}
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.httpTimeout = d }
}

// WithUploadDelay sets the pause before each upload.
func WithUploadDelay(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.uploadDelay = d }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithLogFile sets the rotated log file path.
func WithLogFile(path string) AppConfigOption {
	return func(c *AppConfig) { c.logFile = path }
}

// WithMetricsFile sets the metrics textfile path.
func WithMetricsFile(path string) AppConfigOption {
	return func(c *AppConfig) { c.metricsFile = path }
}
