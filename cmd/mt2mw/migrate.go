package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/helixml/mt2mw"
	"github.com/helixml/mt2mw/domain/migration"
	"github.com/helixml/mt2mw/internal/config"
)

type migrateFlags struct {
	envFile     string
	configFile  string
	dumpTree    string
	sourceURL   string
	targetURL   string
	direct      bool
	dataRoot    string
	noPages     bool
	noFiles     bool
	noSubpages  bool
	noFileIndex bool
	flat        bool
	skip        []string
	logLevel    string
	logFormat   string
	logFile     string
	metricsFile string
}

func migrateCmd() *cobra.Command {
	var f migrateFlags

	cmd := &cobra.Command{
		Use:   "mt2mw",
		Short: "Migrate a MindTouch wiki to MediaWiki",
		Long: `Migrate a MindTouch wiki to MediaWiki.

The whole source page tree is fetched first, then every page is written to the
target in pre-order together with its attachments, and finally the target's
main page is pointed at the migrated homepage.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. YAML file given by --config
  5. Command line flags

Environment variables:
  SOURCE_URL                   MindTouch base URL
  SOURCE_USERNAME              Basic auth user for the source (optional)
  SOURCE_PASSWORD              Basic auth password for the source
  SOURCE_CACHE_DIR             Cache source XML responses in this directory
  TARGET_URL                   MediaWiki base URL (api.php lives beneath it)
  TARGET_USERNAME              MediaWiki login name
  TARGET_PASSWORD              MediaWiki login password
  TARGET_MAIN_PAGE             Main page marker title (default: MediaWiki:Mainpage)
  HTTP_TIMEOUT                 Request timeout in seconds (default: 60)
  UPLOAD_DELAY                 Pause before each API upload in seconds (default: 1)

  STORAGE_DIRECT               Write files straight into storage (default: false)
  STORAGE_DB_URL               Storage database URL (postgres:// or sqlite:///)
  STORAGE_DB_HOST/PORT/NAME/USER/PASSWORD
                               Storage database parts, used without STORAGE_DB_URL
  STORAGE_TABLE                File table name (default: image)
  STORAGE_DATA_ROOT            Directory MediaWiki serves uploads from
  STORAGE_USER_ID              Uploader id recorded for stored files (default: none)

  COPY_PAGES                   Write page text (default: true)
  COPY_FILES                   Transfer attachments (default: true)
  SHOW_SUBPAGES                Append a subpage index (default: true)
  SHOW_FILES                   Append a file index (default: true)
  HIERARCHICAL_PATHS           Use full paths as titles (default: true)
  SKIP_PATHS                   Comma-separated globs of pages not to write

  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  LOG_FILE                     Also write JSON logs to this rotated file
  METRICS_FILE                 Write run metrics to this Prometheus textfile

Page and file failures are reported but do not fail the command; only an
unreachable source, a failed target login or unusable storage do.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), cmd.OutOrStdout(), cmd.Flags(), f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	flags.StringVar(&f.configFile, "config", "", "Path to a YAML configuration file")
	flags.StringVar(&f.dumpTree, "dump-tree", "", "Write the fetched source tree as YAML to this file")
	flags.StringVar(&f.sourceURL, "source-url", "", "MindTouch base URL")
	flags.StringVar(&f.targetURL, "target-url", "", "MediaWiki base URL")
	flags.BoolVar(&f.direct, "direct-storage", false, "Write files straight into the target's storage")
	flags.StringVar(&f.dataRoot, "data-root", "", "Directory the target serves uploads from")
	flags.BoolVar(&f.noPages, "no-pages", false, "Do not write page text")
	flags.BoolVar(&f.noFiles, "no-files", false, "Do not transfer attachments")
	flags.BoolVar(&f.noSubpages, "no-subpages", false, "Do not append subpage indexes")
	flags.BoolVar(&f.noFileIndex, "no-file-index", false, "Do not append file indexes")
	flags.BoolVar(&f.flat, "flat", false, "Use page titles instead of full paths as target titles")
	flags.StringSliceVar(&f.skip, "skip", nil, "Glob of page paths not to write (repeatable)")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")
	flags.StringVar(&f.logFormat, "log-format", "", "Log format: pretty, json")
	flags.StringVar(&f.logFile, "log-file", "", "Also write JSON logs to this rotated file")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")

	return cmd
}

func runMigrate(ctx context.Context, out io.Writer, flags *pflag.FlagSet, f migrateFlags) error {
	cfg, err := loadConfig(f.envFile, f.configFile)
	if err != nil {
		return err
	}
	cfg = cfg.Apply(overrides(flags, f)...)

	client, err := mt2mw.New(
		mt2mw.WithConfig(cfg),
		mt2mw.WithDumpTree(f.dumpTree),
	)
	if err != nil {
		return err
	}
	logger := client.Logger()
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close client", slog.Any("error", err))
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mt2mw", slog.String("version", version))
	summary, err := client.Run(ctx)
	if err == nil || summary.PagesVisited > 0 {
		printSummary(out, summary)
	}
	if err != nil {
		if migration.IsFatal(err) {
			return err
		}
		return fmt.Errorf("migration interrupted: %w", err)
	}
	return nil
}

// overrides returns the options for every flag set on the command line.
func overrides(flags *pflag.FlagSet, f migrateFlags) []config.AppConfigOption {
	var opts []config.AppConfigOption
	set := func(name string, opt config.AppConfigOption) {
		if flags.Changed(name) {
			opts = append(opts, opt)
		}
	}
	set("source-url", config.WithSourceURL(f.sourceURL))
	set("target-url", config.WithTargetURL(f.targetURL))
	set("direct-storage", config.WithDirectStorage(f.direct))
	set("data-root", config.WithDataRoot(f.dataRoot))
	set("no-pages", config.WithCopyPages(!f.noPages))
	set("no-files", config.WithCopyFiles(!f.noFiles))
	set("no-subpages", config.WithShowSubpages(!f.noSubpages))
	set("no-file-index", config.WithShowFiles(!f.noFileIndex))
	set("flat", config.WithHierarchicalPaths(!f.flat))
	set("skip", config.WithSkipPaths(f.skip))
	set("log-level", config.WithLogLevel(f.logLevel))
	set("log-format", config.WithLogFormat(config.ParseLogFormat(f.logFormat)))
	set("log-file", config.WithLogFile(f.logFile))
	set("metrics-file", config.WithMetricsFile(f.metricsFile))
	return opts
}

func printSummary(out io.Writer, s migration.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	count := func(n int, paint func(...any) string) string {
		if n == 0 {
			return fmt.Sprint(n)
		}
		return paint(n)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Pages: %s written, %s skipped, %s failed (%d visited, %d titles sanitized)\n",
		count(s.PagesWritten, green), count(s.PagesSkipped, yellow), count(s.PagesFailed, red),
		s.PagesVisited, s.TitlesSanitized)
	fmt.Fprintf(out, "Files: %s uploaded, %s skipped, %s failed (%d pages with files)\n",
		count(s.FilesUploaded, green), count(s.FilesSkipped, yellow), count(s.FilesFailed, red),
		s.NodesWithFiles)
	if s.BodyFetchFailures > 0 || s.ConvertFailures > 0 {
		fmt.Fprintf(out, "Bodies: %s unavailable, %s kept as HTML\n",
			count(s.BodyFetchFailures, yellow), count(s.ConvertFailures, yellow))
	}
	if s.MainPageSet {
		fmt.Fprintf(out, "Main page: %s\n", green("set"))
	} else {
		fmt.Fprintf(out, "Main page: %s\n", yellow("not set"))
	}
}
