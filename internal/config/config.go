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
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Serper     SerperConfig     `yaml:"serper" mapstructure:"serper"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Registry   RegistryConfig   `yaml:"registry" mapstructure:"registry"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PerplexityConfig holds Perplexity API settings (directory research).
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// SerperConfig holds Serper.dev search API settings.
type SerperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Results int    `yaml:"results" mapstructure:"results"`
}

// FetchConfig configures the cascading page fetcher.
type FetchConfig struct {
	RenderTimeoutSecs int    `yaml:"render_timeout_secs" mapstructure:"render_timeout_secs"`
	RenderSettleSecs  int    `yaml:"render_settle_secs" mapstructure:"render_settle_secs"`
	HTTPTimeoutSecs   int    `yaml:"http_timeout_secs" mapstructure:"http_timeout_secs"`
	ReaderTimeoutSecs int    `yaml:"reader_timeout_secs" mapstructure:"reader_timeout_secs"`
	MinContentLen     int    `yaml:"min_content_len" mapstructure:"min_content_len"`
	CachePath         string `yaml:"cache_path" mapstructure:"cache_path"`
	CacheTTLHours     int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	DisableRender     bool   `yaml:"disable_render" mapstructure:"disable_render"`
}

// DiscoveryConfig configures directory discovery.
type DiscoveryConfig struct {
	MaxDirectories  int `yaml:"max_directories" mapstructure:"max_directories"`
	ValidateTimeout int `yaml:"validate_timeout_secs" mapstructure:"validate_timeout_secs"`
}

// PipelineConfig configures orchestration.
type PipelineConfig struct {
	Concurrency          int     `yaml:"concurrency" mapstructure:"concurrency"`
	DirectoryTimeoutSecs int     `yaml:"directory_timeout_secs" mapstructure:"directory_timeout_secs"`
	HostRatePerSec       float64 `yaml:"host_rate_per_sec" mapstructure:"host_rate_per_sec"`
	HostBurst            int     `yaml:"host_burst" mapstructure:"host_burst"`
}

// RegistryConfig configures the directory strategy registry.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // optional YAML overrides
}

// OutputConfig configures audit result sinks.
type OutputConfig struct {
	JSONLPath string `yaml:"jsonl_path" mapstructure:"jsonl_path"`
	XLSXPath  string `yaml:"xlsx_path" mapstructure:"xlsx_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CITATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar")
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("serper.results", 5)
	v.SetDefault("fetch.render_timeout_secs", 60)
	v.SetDefault("fetch.render_settle_secs", 6)
	v.SetDefault("fetch.http_timeout_secs", 20)
	v.SetDefault("fetch.reader_timeout_secs", 15)
	v.SetDefault("fetch.min_content_len", 200)
	v.SetDefault("fetch.cache_path", "citation-cache.db")
	v.SetDefault("fetch.cache_ttl_hours", 24)
	v.SetDefault("discovery.max_directories", 40)
	v.SetDefault("discovery.validate_timeout_secs", 5)
	v.SetDefault("pipeline.concurrency", 5)
	v.SetDefault("pipeline.directory_timeout_secs", 180)
	v.SetDefault("pipeline.host_rate_per_sec", 1.0)
	v.SetDefault("pipeline.host_burst", 2)
	v.SetDefault("output.jsonl_path", "citation-audit.jsonl")

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
