package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowOrigins  string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Scheduling.
	SlotStepMinutes    int           `mapstructure:"SLOT_STEP_MINUTES"`
	SlotCandidateLimit int           `mapstructure:"SLOT_CANDIDATE_LIMIT"`
	DefaultTimezone    string        `mapstructure:"DEFAULT_TIMEZONE"`
	ScheduleLockTTL    time.Duration `mapstructure:"SCHEDULE_LOCK_TTL"`
	ReminderLeadTime   time.Duration `mapstructure:"REMINDER_LEAD_TIME"`

	// Worker.
	WorkerConcurrency int `mapstructure:"WORKER_CONCURRENCY"`

	// Tracing exporter: "none" or "stdout".
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "dentflow")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCK_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("SLOT_STEP_MINUTES", 15)
	v.SetDefault("SLOT_CANDIDATE_LIMIT", 200)
	v.SetDefault("DEFAULT_TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("SCHEDULE_LOCK_TTL", "10s")
	v.SetDefault("REMINDER_LEAD_TIME", "24h")
	v.SetDefault("WORKER_CONCURRENCY", 10)
	v.SetDefault("TRACING_EXPORTER", "none")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(AppConfig.CORSAllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
