package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "CineBrain-Releases/1.0 (+https://cinebrain.app)"

type Config struct {
	APIBaseURL            string  `mapstructure:"api_base_url"`
	ProxyConnectionString string  `mapstructure:"proxy_connection_string"`
	ClientTimeout         string  `mapstructure:"client_timeout"`       // Go duration string like "10s"
	LightClientTimeout    string  `mapstructure:"light_client_timeout"` // cheap categories (new movies / tv)
	HeavyClientTimeout    string  `mapstructure:"heavy_client_timeout"` // anime and upcoming
	MaxRetries            int     `mapstructure:"max_retries"`
	RetryBaseDelay        string  `mapstructure:"retry_base_delay"`
	RateLimit             float64 `mapstructure:"rate_limit"` // requests per second, 0 disables pacing
	UserAgent             string  `mapstructure:"user_agent"`
	Region                string  `mapstructure:"region"` // upcoming-release region code
	Server                struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`
	Cache    struct {
		Provider      string `mapstructure:"provider"` // memory, redis or badger
		Size          int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL           string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		RedisAddress  string `mapstructure:"redis_address"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`
		BadgerPath    string `mapstructure:"badger_path"`
	} `mapstructure:"cache"`
	Session struct {
		Path string `mapstructure:"path"` // empty keeps the session in memory
	} `mapstructure:"session"`
	Carousel struct {
		AutoplayInterval string `mapstructure:"autoplay_interval"`
		MaxItems         int    `mapstructure:"max_items"`
	} `mapstructure:"carousel"`
	Refresh struct {
		SoftInterval    string  `mapstructure:"soft_interval"`
		HardInterval    string  `mapstructure:"hard_interval"`
		ChangeThreshold float64 `mapstructure:"change_threshold"`
	} `mapstructure:"refresh"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
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

func LoadConfig() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "http://localhost:5000/api")
	v.SetDefault("client_timeout", "10s")
	v.SetDefault("light_client_timeout", "8s")
	v.SetDefault("heavy_client_timeout", "15s")
	v.SetDefault("max_retries", 2)
	v.SetDefault("retry_base_delay", "1s")
	v.SetDefault("rate_limit", 0)
	v.SetDefault("region", "IN")
	v.SetDefault("server.address", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("carousel.autoplay_interval", "5s")
	v.SetDefault("carousel.max_items", 6)
	v.SetDefault("refresh.soft_interval", "30m")
	v.SetDefault("refresh.hard_interval", "6h")
	v.SetDefault("refresh.change_threshold", 0.7)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
}

// Duration parses a Go duration string, logging a warning and returning def when
// the value is empty or invalid.
func Duration(name, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logger.Warn().Err(err).Str("setting", name).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return parsed
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
