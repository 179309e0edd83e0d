package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	Type     string `mapstructure:"type"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LedgerConfig controls the free-tier download metering. FreeDailyLimit is
// the single source of truth for the per-day cap; no route carries its own.
type LedgerConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	FreeDailyLimit int  `mapstructure:"free_daily_limit"`
	CounterTTLHrs  int  `mapstructure:"counter_ttl_hours"`
}

type YouTubeConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	FreeMax     int    `mapstructure:"free_max"`
	PremiumMax  int    `mapstructure:"premium_max"`
	TimeoutSecs int    `mapstructure:"timeout_seconds"`
}

type BillingConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
	KeyID         string `mapstructure:"key_id"`
	KeySecret     string `mapstructure:"key_secret"`
	PlanID        string `mapstructure:"plan_id"`
	BaseURL       string `mapstructure:"base_url"`
	TimeoutSecs   int    `mapstructure:"timeout_seconds"`
}

type Config struct {
	Env      string        `mapstructure:"env"`
	LogLevel string        `mapstructure:"log_level"`
	Server   ServerConfig  `mapstructure:"server"`
	Database DBConfig      `mapstructure:"database"`
	Redis    RedisConfig   `mapstructure:"redis"`
	Ledger   LedgerConfig  `mapstructure:"ledger"`
	YouTube  YouTubeConfig `mapstructure:"youtube"`
	Billing  BillingConfig `mapstructure:"billing"`
}

func New() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if file := os.Getenv("CP_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix("CP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.type", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "commentpull")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ledger.enabled", true)
	v.SetDefault("ledger.free_daily_limit", 5)
	v.SetDefault("ledger.counter_ttl_hours", 48)
	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.free_max", 100)
	v.SetDefault("youtube.premium_max", 10000)
	v.SetDefault("youtube.timeout_seconds", 30)
	v.SetDefault("billing.base_url", "https://api.razorpay.com/v1")
	v.SetDefault("billing.timeout_seconds", 15)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; env vars and defaults cover everything.
		_ = err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return c, nil
}

var Module = fx.Module("config",
	fx.Provide(New),
)
