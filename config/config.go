package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	Database DBConfig

	Log struct {
		Level  string
		Format string
	}

	// OTPBackend is "memory" (single instance) or "redis".
	OTPBackend string
	Redis      struct {
		Addr     string
		Password string
		DB       int
	}

	Twilio struct {
		AccountSID  string
		AuthToken   string
		PhoneNumber string
		CountryCode string
	}

	Storage struct {
		URL    string
		Key    string
		Bucket string
	}

	CORSOrigins  []string
	ReminderCron string
	CleanupCron  string

	AdminEmail    string
	AdminPassword string
}

type DBConfig struct {
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // minutes
}

// DSN prefers DB_URL and falls back to the discrete settings.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

func Load() *Config {
	cfg := &Config{}
	cfg.Port = getEnv("PORT", "8080")

	cfg.Database = DBConfig{
		URL:             os.Getenv("DB_URL"),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", "postgres"),
		Name:            getEnv("DB_NAME", "spacrm"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifeTime: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.OTPBackend = getEnv("OTP_BACKEND", "memory")
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Twilio.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.Twilio.PhoneNumber = os.Getenv("TWILIO_PHONE_NUMBER")
	cfg.Twilio.CountryCode = getEnv("SMS_COUNTRY_CODE", "84")

	cfg.Storage.URL = os.Getenv("STORAGE_URL")
	cfg.Storage.Key = os.Getenv("STORAGE_KEY")
	cfg.Storage.Bucket = getEnv("STORAGE_BUCKET", "media")

	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	cfg.ReminderCron = getEnv("REMINDER_CRON", "0 9 * * *")
	cfg.CleanupCron = getEnv("CLEANUP_CRON", "*/5 * * * *")

	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	return cfg
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
