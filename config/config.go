package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds stock locator configuration.
type Config struct {
	Directory DirectoryConfig `mapstructure:"directory"`
	Stock     StockConfig     `mapstructure:"stock"`
	Cache     CacheConfig     `mapstructure:"cache"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Render    RenderConfig    `mapstructure:"render"`
	Product   ProductConfig   `mapstructure:"product"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// DirectoryConfig points at the store-directory endpoint.
type DirectoryConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	AddressType string `mapstructure:"address_type"`
	MaxResults  int    `mapstructure:"max_results"`
}

// StockConfig points at the stock-availability endpoint.
type StockConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig locates the persisted store snapshot.
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// HTTPConfig tunes the JSON fetcher.
type HTTPConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	MaxBodySize int           `mapstructure:"max_body_size"`
}

// RenderConfig tunes the headless browser.
type RenderConfig struct {
	StateGlobal string        `mapstructure:"state_global"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Headless    bool          `mapstructure:"headless"`
	ExecPath    string        `mapstructure:"exec_path"`
	NoSandbox   bool          `mapstructure:"no_sandbox"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

// ProductConfig tunes the variant resolver.
type ProductConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// DefaultConfig returns defaults for everything except connection strings.
func DefaultConfig() *Config {
	return &Config{
		Directory: DirectoryConfig{
			AddressType: "address",
			MaxResults:  5000,
		},
		Cache: CacheConfig{Path: "data/stores.json"},
		HTTP: HTTPConfig{
			Timeout:     30 * time.Second,
			UserAgent:   defaultUserAgent,
			MaxBodySize: 32 << 20,
		},
		Render: RenderConfig{
			StateGlobal: "__INITIAL_STATE__",
			Timeout:     45 * time.Second,
			Headless:    true,
			MinInterval: 2 * time.Second,
		},
		Product: ProductConfig{CacheSize: 32},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads configuration from an optional file and STOCKCHECK_* environment
// variables on top of DefaultConfig.
func Load(path string) (*Config, error) {
	def := DefaultConfig()
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("stockcheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STOCKCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Connection strings have no default but must be bound for AutomaticEnv
	// to reach them during Unmarshal.
	v.SetDefault("directory.base_url", "")
	v.SetDefault("directory.api_key", "")
	v.SetDefault("stock.base_url", "")
	v.SetDefault("directory.address_type", def.Directory.AddressType)
	v.SetDefault("directory.max_results", def.Directory.MaxResults)
	v.SetDefault("cache.path", def.Cache.Path)
	v.SetDefault("http.timeout", def.HTTP.Timeout)
	v.SetDefault("http.user_agent", def.HTTP.UserAgent)
	v.SetDefault("http.max_body_size", def.HTTP.MaxBodySize)
	v.SetDefault("render.state_global", def.Render.StateGlobal)
	v.SetDefault("render.timeout", def.Render.Timeout)
	v.SetDefault("render.headless", def.Render.Headless)
	v.SetDefault("render.exec_path", "")
	v.SetDefault("render.no_sandbox", false)
	v.SetDefault("render.min_interval", def.Render.MinInterval)
	v.SetDefault("product.cache_size", def.Product.CacheSize)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("metrics.addr", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateURL("directory base URL", c.Directory.BaseURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Directory.APIKey) == "" {
		return eris.New("directory API key cannot be empty")
	}
	if err := validateURL("stock base URL", c.Stock.BaseURL); err != nil {
		return err
	}
	if c.Directory.AddressType == "" {
		return eris.New("directory address type cannot be empty")
	}
	if c.Directory.MaxResults <= 0 {
		return eris.New("directory max results must be positive")
	}
	if c.Cache.Path == "" {
		return eris.New("cache path cannot be empty")
	}
	if c.HTTP.Timeout <= 0 {
		return eris.New("http timeout must be positive")
	}
	if c.HTTP.UserAgent == "" {
		return eris.New("user agent cannot be empty")
	}
	if c.HTTP.MaxBodySize < 0 {
		return eris.New("max body size cannot be negative")
	}
	if c.Render.StateGlobal == "" {
		return eris.New("render state global cannot be empty")
	}
	if c.Render.Timeout <= 0 {
		return eris.New("render timeout must be positive")
	}
	if c.Render.MinInterval < 0 {
		return eris.New("render min interval cannot be negative")
	}
	if c.Product.CacheSize < 0 {
		return eris.New("product cache size cannot be negative")
	}
	return nil
}

func validateURL(name, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return eris.Errorf("%s cannot be empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return eris.Wrapf(err, "invalid %s", name)
	}
	if parsed.Host == "" {
		return eris.Errorf("%s must include a host", name)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig, verbose bool) error {
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
	if verbose {
		level = zapcore.DebugLevel
	}
	zapCfg.Level.SetLevel(level)
	// stdout belongs to the interactive menu.
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
