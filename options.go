package mt2mw

import (
	"io"
	"net/http"
	"time"

	"github.com/helixml/mt2mw/infrastructure/ingest"
	"github.com/helixml/mt2mw/internal/config"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	app       config.AppConfig
	appSet    bool
	logWriter io.Writer
	transport http.RoundTripper
	dumpPath  string
	sleeper   ingest.Sleeper
	now       func() time.Time
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		app: config.NewAppConfig(),
		now: time.Now,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig sets the whole application configuration, typically from
// config.LoadConfig.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.app = cfg
		c.appSet = true
	}
}

// WithConfigOptions applies configuration options on top of the current
// configuration.
func WithConfigOptions(opts ...config.AppConfigOption) Option {
	return func(c *clientConfig) {
		c.app = c.app.Apply(opts...)
		c.appSet = true
	}
}

// WithLogWriter sends log output to w instead of stdout.
func WithLogWriter(w io.Writer) Option {
	return func(c *clientConfig) {
		c.logWriter = w
	}
}

// WithTransport sets the base HTTP transport for both wikis.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// WithDumpTree writes the fetched source tree as YAML to path before
// publishing.
func WithDumpTree(path string) Option {
	return func(c *clientConfig) {
		c.dumpPath = path
	}
}

// WithUploadSleeper replaces the pause taken before each remote upload.
func WithUploadSleeper(s ingest.Sleeper) Option {
	return func(c *clientConfig) {
		c.sleeper = s
	}
}

// WithClock sets the clock used for stored file timestamps and run metrics.
func WithClock(now func() time.Time) Option {
	return func(c *clientConfig) {
		c.now = now
	}
}
