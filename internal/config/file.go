package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration file. Absent keys leave the value
// from the environment untouched.
type FileConfig struct {
	Source      *SourceFile  `yaml:"source"`
	Target      *TargetFile  `yaml:"target"`
	Storage     *StorageFile `yaml:"storage"`
	Publish     *PublishFile `yaml:"publish"`
	Log         *LogFile     `yaml:"log"`
	HTTPTimeout *float64     `yaml:"http_timeout"`
	UploadDelay *float64     `yaml:"upload_delay"`
	MetricsFile *string      `yaml:"metrics_file"`
}

// SourceFile is the source section of the configuration file.
type SourceFile struct {
	URL      *string `yaml:"url"`
	Username *string `yaml:"username"`
	Password *string `yaml:"password"`
	CacheDir *string `yaml:"cache_dir"`
}

// TargetFile is the target section of the configuration file.
type TargetFile struct {
	URL      *string `yaml:"url"`
	Username *string `yaml:"username"`
	Password *string `yaml:"password"`
	MainPage *string `yaml:"main_page"`
}

// StorageFile is the storage section of the configuration file.
type StorageFile struct {
	Direct   *bool          `yaml:"direct"`
	DBURL    *string        `yaml:"db_url"`
	DB       *StorageDBFile `yaml:"db"`
	Table    *string        `yaml:"table"`
	DataRoot *string        `yaml:"data_root"`
	UserID   *int64         `yaml:"user_id"`
}

// StorageDBFile gives the storage database by parts.
type StorageDBFile struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// PublishFile is the publish section of the configuration file.
type PublishFile struct {
	CopyPages         *bool    `yaml:"copy_pages"`
	CopyFiles         *bool    `yaml:"copy_files"`
	ShowSubpages      *bool    `yaml:"show_subpages"`
	ShowFiles         *bool    `yaml:"show_files"`
	HierarchicalPaths *bool    `yaml:"hierarchical_paths"`
	SkipPaths         []string `yaml:"skip_paths"`
}

// LogFile is the log section of the configuration file.
type LogFile struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
	File   *string `yaml:"file"`
}

// LoadFile reads and parses a YAML configuration file. Unknown keys are
// rejected so typos do not go unnoticed.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile parses YAML configuration.
func ParseFile(data []byte) (FileConfig, error) {
	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

// Apply overlays the values present in the file on cfg.
func (f FileConfig) Apply(cfg AppConfig) AppConfig {
	var opts []AppConfigOption

	if s := f.Source; s != nil {
		opts = appendString(opts, s.URL, WithSourceURL)
		opts = appendString(opts, s.CacheDir, WithSourceCacheDir)
		if s.Username != nil || s.Password != nil {
			user, pass := cfg.Source().Username(), cfg.Source().Password()
			opts = append(opts, WithSourceCredentials(deref(s.Username, user), deref(s.Password, pass)))
		}
	}

	if t := f.Target; t != nil {
		opts = appendString(opts, t.URL, WithTargetURL)
		opts = appendString(opts, t.MainPage, WithMainPage)
		if t.Username != nil || t.Password != nil {
			user, pass := cfg.Target().Username(), cfg.Target().Password()
			opts = append(opts, WithTargetCredentials(deref(t.Username, user), deref(t.Password, pass)))
		}
	}

	if s := f.Storage; s != nil {
		opts = appendBool(opts, s.Direct, WithDirectStorage)
		opts = appendString(opts, s.DBURL, WithStorageDBURL)
		if s.DBURL == nil && s.DB != nil && s.DB.Host != "" {
			opts = append(opts, WithStorageDBURL(PostgresURL(s.DB.Host, s.DB.Port, s.DB.Name, s.DB.User, s.DB.Password)))
		}
		opts = appendString(opts, s.Table, WithStorageTable)
		opts = appendString(opts, s.DataRoot, WithDataRoot)
		if s.UserID != nil {
			opts = append(opts, WithStorageUserID(*s.UserID))
		}
	}

	if p := f.Publish; p != nil {
		opts = appendBool(opts, p.CopyPages, WithCopyPages)
		opts = appendBool(opts, p.CopyFiles, WithCopyFiles)
		opts = appendBool(opts, p.ShowSubpages, WithShowSubpages)
		opts = appendBool(opts, p.ShowFiles, WithShowFiles)
		opts = appendBool(opts, p.HierarchicalPaths, WithHierarchicalPaths)
		if p.SkipPaths != nil {
			opts = append(opts, WithSkipPaths(p.SkipPaths))
		}
	}

	if l := f.Log; l != nil {
		opts = appendString(opts, l.Level, WithLogLevel)
		opts = appendString(opts, l.File, WithLogFile)
		if l.Format != nil {
			opts = append(opts, WithLogFormat(ParseLogFormat(*l.Format)))
		}
	}

	if f.HTTPTimeout != nil {
		opts = append(opts, WithHTTPTimeout(seconds(*f.HTTPTimeout)))
	}
	if f.UploadDelay != nil {
		opts = append(opts, WithUploadDelay(seconds(*f.UploadDelay)))
	}
	opts = appendString(opts, f.MetricsFile, WithMetricsFile)

	return cfg.Apply(opts...)
}

func appendString(opts []AppConfigOption, v *string, fn func(string) AppConfigOption) []AppConfigOption {
	if v == nil {
		return opts
	}
	return append(opts, fn(*v))
}

func appendBool(opts []AppConfigOption, v *bool, fn func(bool) AppConfigOption) []AppConfigOption {
	if v == nil {
		return opts
	}
	return append(opts, fn(*v))
}

func deref(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
