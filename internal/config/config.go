package config

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all outbound HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0"

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	// APIBaseURL is where the form controller sends its requests. Empty means
	// the API served by this process.
	APIBaseURL    string `mapstructure:"api_base_url"`
	ClientTimeout string `mapstructure:"client_timeout"` // Go duration string; empty disables the timeout
	UserAgent     string `mapstructure:"user_agent"`
	Server        struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`

	// Source selects the cause-list provider: "demo" or "ecourts".
	Source        string `mapstructure:"source"`
	ECourtsDomain string `mapstructure:"ecourts_domain"`
	OutputDir     string `mapstructure:"output_dir"`

	Retention struct {
		MaxAge   string `mapstructure:"max_age"`  // Go duration string
		Schedule string `mapstructure:"schedule"` // cron spec
	} `mapstructure:"retention"`

	Cache struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
		Size     int    `mapstructure:"size"`
		TTL      string `mapstructure:"ttl"`
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`

	GRPC struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"grpc"`

	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`

	Session struct {
		Size int    `mapstructure:"size"`
		TTL  string `mapstructure:"ttl"`
	} `mapstructure:"session"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "localhost")
	v.SetDefault("server.port", 5000)
	v.SetDefault("source", "demo")
	v.SetDefault("ecourts_domain", "https://services.ecourts.gov.in/ecourtindia_v6")
	v.SetDefault("output_dir", "downloaded_pdfs")
	v.SetDefault("retention.max_age", "168h")
	v.SetDefault("retention.schedule", "@hourly")
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 500)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("grpc.port", 5001)
	v.SetDefault("session.size", 1000)
	v.SetDefault("session.ttl", "12h")

	// Keys without a meaningful default are still registered so that
	// AutomaticEnv can populate them during Unmarshal.
	for _, key := range []string{
		"proxy_connection_string", "api_base_url", "client_timeout", "user_agent",
		"log_level", "cache.redis.address", "cache.redis.password",
		"sentry.dsn", "sentry.environment",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("grpc.enabled", false)
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("sentry.dsn", "SENTRY_DSN")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}
