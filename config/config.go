package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Google Calendar provider.
	CalendarEnabled     bool   `mapstructure:"CALENDAR_ENABLED"`
	CalendarID          string `mapstructure:"CALENDAR_ID"`
	CalendarCredentials string `mapstructure:"CALENDAR_CREDENTIALS_FILE"`

	// CRM provider.
	CrmEnabled bool   `mapstructure:"CRM_ENABLED"`
	CrmBaseURL string `mapstructure:"CRM_BASE_URL"`
	CrmToken   string `mapstructure:"CRM_TOKEN"`

	// Confirmation notification webhook.
	NotifyWebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL"`

	// Business hours for slot generation.
	BusinessHours BusinessHours `mapstructure:"business_hours"`

	// Per-duration booking frequency rules.
	FrequencyRules map[int]FrequencyRule `mapstructure:"frequency_rules"`

	// Outbound call resilience.
	Resilience ResilienceConfig `mapstructure:"resilience"`
}

// BusinessHours describes the bookable window for slot generation.
type BusinessHours struct {
	Weekdays        []int  `mapstructure:"weekdays"` // time.Weekday values, 0=Sunday
	StartHour       int    `mapstructure:"start_hour"`
	EndHour         int    `mapstructure:"end_hour"`
	Timezone        string `mapstructure:"timezone"`
	BufferMinutes   int    `mapstructure:"buffer_minutes"`
	MinAdvanceHours int    `mapstructure:"min_advance_hours"`
	MaxAdvanceHours int    `mapstructure:"max_advance_hours"`
}

// FrequencyRule limits how many bookings of one duration a requester may
// hold with start times inside a symmetric rolling window.
type FrequencyRule struct {
	MaxBookings   int `mapstructure:"max_bookings"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// ResilienceConfig tunes the retry policy and circuit breaker that guard
// every outbound provider call.
type ResilienceConfig struct {
	MaxAttempts         int     `mapstructure:"max_attempts"`
	InitialDelayMs      int     `mapstructure:"initial_delay_ms"`
	MaxDelayMs          int     `mapstructure:"max_delay_ms"`
	BackoffMultiplier   float64 `mapstructure:"backoff_multiplier"`
	FailureThreshold    int     `mapstructure:"failure_threshold"`
	ResetTimeoutSec     int     `mapstructure:"reset_timeout_sec"`
	MonitoringPeriodSec int     `mapstructure:"monitoring_period_sec"`
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
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "consultly")
	viper.SetDefault("CALENDAR_ENABLED", false)
	viper.SetDefault("CALENDAR_ID", "primary")
	viper.SetDefault("CALENDAR_CREDENTIALS_FILE", "")
	viper.SetDefault("CRM_ENABLED", false)
	viper.SetDefault("CRM_BASE_URL", "")
	viper.SetDefault("CRM_TOKEN", "")
	viper.SetDefault("NOTIFY_WEBHOOK_URL", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	applyDomainDefaults(&AppConfig)
}

// applyDomainDefaults fills in the scheduling defaults for anything the
// config file left unset. Viper defaults do not reach into nested maps,
// so the frequency rules are handled here.
func applyDomainDefaults(cfg *Config) {
	bh := &cfg.BusinessHours
	if len(bh.Weekdays) == 0 {
		bh.Weekdays = []int{1, 2, 3, 4, 5} // Monday through Friday
	}
	if bh.StartHour == 0 && bh.EndHour == 0 {
		bh.StartHour = 9
		bh.EndHour = 17
	}
	if bh.Timezone == "" {
		bh.Timezone = "UTC"
	}
	if bh.BufferMinutes == 0 {
		bh.BufferMinutes = 15
	}
	if bh.MinAdvanceHours == 0 {
		bh.MinAdvanceHours = 24
	}
	if bh.MaxAdvanceHours == 0 {
		bh.MaxAdvanceHours = 24 * 30
	}

	if len(cfg.FrequencyRules) == 0 {
		cfg.FrequencyRules = map[int]FrequencyRule{
			15: {MaxBookings: 3, WindowMinutes: 120},
			30: {MaxBookings: 2, WindowMinutes: 180},
			45: {MaxBookings: 2, WindowMinutes: 240},
			60: {MaxBookings: 1, WindowMinutes: 240},
		}
	}

	r := &cfg.Resilience
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 3
	}
	if r.InitialDelayMs == 0 {
		r.InitialDelayMs = 1000
	}
	if r.MaxDelayMs == 0 {
		r.MaxDelayMs = 8000
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2
	}
	if r.FailureThreshold == 0 {
		r.FailureThreshold = 5
	}
	if r.ResetTimeoutSec == 0 {
		r.ResetTimeoutSec = 60
	}
	if r.MonitoringPeriodSec == 0 {
		r.MonitoringPeriodSec = 120
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
