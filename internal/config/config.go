package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources    SourcesConfig    `yaml:"sources" mapstructure:"sources"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SourcesConfig selects and configures the collectors.
type SourcesConfig struct {
	Enabled   []string        `yaml:"enabled" mapstructure:"enabled"`
	Priority  []string        `yaml:"priority" mapstructure:"priority"`
	RSS       RSSConfig       `yaml:"rss" mapstructure:"rss"`
	Directory DirectoryConfig `yaml:"directory" mapstructure:"directory"`
	Curated   CuratedConfig   `yaml:"curated" mapstructure:"curated"`
	Platform  PlatformConfig  `yaml:"platform" mapstructure:"platform"`
}

// RSSConfig configures the RSS collector.
type RSSConfig struct {
	Websites        []string `yaml:"websites" mapstructure:"websites"`
	MaxFeedsPerSite int      `yaml:"max_feeds_per_site" mapstructure:"max_feeds_per_site"`
}

// DirectoryConfig configures the directory scrape collector.
type DirectoryConfig struct {
	URLs []string `yaml:"urls" mapstructure:"urls"`
}

// CuratedConfig configures the static curated list collector.
type CuratedConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PlatformConfig configures the platform discovery API collector.
type PlatformConfig struct {
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	PublicationHost string `yaml:"publication_host" mapstructure:"publication_host"`
	PageSize        int    `yaml:"page_size" mapstructure:"page_size"`
}

// ProcessingConfig configures merge and filter behavior.
type ProcessingConfig struct {
	CompleteOnly          bool     `yaml:"complete_only" mapstructure:"complete_only"`
	Limit                 int      `yaml:"limit" mapstructure:"limit"`
	Keywords              []string `yaml:"keywords" mapstructure:"keywords"`
	SkipEmailVerification bool     `yaml:"skip_email_verification" mapstructure:"skip_email_verification"`
	VerificationMethod    string   `yaml:"verification_method" mapstructure:"verification_method"`
	VerifyTimeoutSecs     int      `yaml:"verify_timeout_secs" mapstructure:"verify_timeout_secs"`
	Concurrency           int      `yaml:"concurrency" mapstructure:"concurrency"`
	SourceTimeoutSecs     int      `yaml:"source_timeout_secs" mapstructure:"source_timeout_secs"`
}

// OutputConfig configures the sinks.
type OutputConfig struct {
	CSV    FileSinkConfig `yaml:"csv" mapstructure:"csv"`
	JSON   FileSinkConfig `yaml:"json" mapstructure:"json"`
	XLSX   FileSinkConfig `yaml:"xlsx" mapstructure:"xlsx"`
	SQLite FileSinkConfig `yaml:"sqlite" mapstructure:"sqlite"`
}

// FileSinkConfig enables one file-backed sink.
type FileSinkConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// FetchConfig configures the shared HTTP fetcher.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	HostRate    float64 `yaml:"host_rate" mapstructure:"host_rate"`
	HostBurst   int     `yaml:"host_burst" mapstructure:"host_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the configuration for a collection run. Problems are
// collected so the operator sees everything wrong at once.
func (c *Config) Validate() error {
	var problems []string

	if len(c.Sources.Enabled) == 0 {
		problems = append(problems, "sources.enabled must name at least one source")
	}
	if !c.Output.CSV.Enabled && !c.Output.JSON.Enabled && !c.Output.XLSX.Enabled && !c.Output.SQLite.Enabled {
		problems = append(problems, "at least one output sink must be enabled")
	}
	for _, s := range []struct {
		name string
		sink FileSinkConfig
	}{
		{"output.csv", c.Output.CSV},
		{"output.json", c.Output.JSON},
		{"output.xlsx", c.Output.XLSX},
		{"output.sqlite", c.Output.SQLite},
	} {
		if s.sink.Enabled && s.sink.Path == "" {
			problems = append(problems, s.name+".path is required when enabled")
		}
	}
	if c.Processing.Limit < 0 {
		problems = append(problems, "processing.limit must be >= 0")
	}
	if c.Processing.Concurrency < 1 {
		problems = append(problems, "processing.concurrency must be >= 1")
	}
	if c.Processing.SourceTimeoutSecs < 1 {
		problems = append(problems, "processing.source_timeout_secs must be >= 1")
	}
	switch c.Processing.VerificationMethod {
	case "", "syntactic", "mx":
	default:
		problems = append(problems, "processing.verification_method must be syntactic or mx")
	}
	if c.Fetch.HostRate <= 0 {
		problems = append(problems, "fetch.host_rate must be > 0")
	}

	if len(problems) > 0 {
		return eris.New("config: invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NEWSLETTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.enabled", []string{"rss", "directory", "curated", "platform_api"})
	v.SetDefault("sources.rss.max_feeds_per_site", 3)
	v.SetDefault("sources.curated.path", "curated_lists.yaml")
	v.SetDefault("sources.platform.base_url", "https://substack.com")
	v.SetDefault("sources.platform.publication_host", "substack.com")
	v.SetDefault("sources.platform.page_size", 50)
	v.SetDefault("processing.complete_only", false)
	v.SetDefault("processing.keywords", []string{"copywriting", "marketing"})
	v.SetDefault("processing.verification_method", "syntactic")
	v.SetDefault("processing.verify_timeout_secs", 5)
	v.SetDefault("processing.concurrency", 4)
	v.SetDefault("processing.source_timeout_secs", 60)
	v.SetDefault("output.csv.enabled", true)
	v.SetDefault("output.csv.path", "newsletters.csv")
	v.SetDefault("output.json.path", "newsletters.json")
	v.SetDefault("output.xlsx.path", "newsletters.xlsx")
	v.SetDefault("output.sqlite.path", "newsletters.db")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.host_rate", 4)
	v.SetDefault("fetch.host_burst", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
