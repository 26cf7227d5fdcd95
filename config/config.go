package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Local gateway the presentation layer talks to.
	GatewayPort string `mapstructure:"GATEWAY_PORT"`

	// Marketplace backend.
	APIBaseURL   string `mapstructure:"API_BASE_URL"`
	SocketURL    string `mapstructure:"SOCKET_URL"`
	SessionToken string `mapstructure:"SESSION_TOKEN"`

	// Sync behaviour.
	PollIntervalSec     int `mapstructure:"POLL_INTERVAL_SEC"`
	ReconnectAttempts   int `mapstructure:"RECONNECT_ATTEMPTS"`
	ReconnectBackoffSec int `mapstructure:"RECONNECT_BACKOFF_SEC"`
	RequestTimeoutSec   int `mapstructure:"REQUEST_TIMEOUT_SEC"`

	// Redis configuration (warm-start snapshot cache).
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("GATEWAY_PORT", "8090")
	viper.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	viper.SetDefault("SOCKET_URL", "ws://localhost:8080/socket")
	viper.SetDefault("SESSION_TOKEN", "")
	viper.SetDefault("POLL_INTERVAL_SEC", 30)
	viper.SetDefault("RECONNECT_ATTEMPTS", 5)
	viper.SetDefault("RECONNECT_BACKOFF_SEC", 3)
	viper.SetDefault("REQUEST_TIMEOUT_SEC", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// PollInterval returns the poll period as a duration.
func PollInterval() time.Duration {
	return time.Duration(AppConfig.PollIntervalSec) * time.Second
}

// ReconnectBackoff returns the fixed delay between socket reconnect attempts.
func ReconnectBackoff() time.Duration {
	return time.Duration(AppConfig.ReconnectBackoffSec) * time.Second
}

// RequestTimeout bounds every outbound API call.
func RequestTimeout() time.Duration {
	return time.Duration(AppConfig.RequestTimeoutSec) * time.Second
}
