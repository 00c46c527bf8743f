package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	GinMode            string
	CORSAllowedOrigins []string

	DBDriver    string
	DatabaseURL string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	LogLevel    string
	LogEncoding string

	Reminder ReminderConfig
	Push     PushConfig
}

// ReminderConfig controls the due-date reminder scheduler.
type ReminderConfig struct {
	ScanInterval   time.Duration
	Window         time.Duration
	Offset         time.Duration
	IncludeOverdue bool
}

// PushConfig selects and configures the push delivery provider.
type PushConfig struct {
	Provider            string // "webpush" or "fcm"
	VAPIDSubject        string
	VAPIDPublicKey      string
	VAPIDPrivateKey     string
	TTL                 time.Duration
	Timeout             time.Duration
	FirebaseCredentials string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "release"),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL:        getEnv("DATABASE_URL", "taskflow.db"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:    getDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		JWTRefreshExpiry:   getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour), // 7 days
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogEncoding:        getEnv("LOG_ENCODING", "json"),
		Reminder: ReminderConfig{
			ScanInterval:   getDuration("REMINDER_SCAN_INTERVAL", time.Minute),
			Window:         getDuration("REMINDER_WINDOW", 30*time.Minute),
			Offset:         getDuration("REMINDER_OFFSET", 30*time.Minute),
			IncludeOverdue: getBool("REMINDER_INCLUDE_OVERDUE", false),
		},
		Push: PushConfig{
			Provider:            strings.ToLower(getEnv("PUSH_PROVIDER", "webpush")),
			VAPIDSubject:        getEnv("VAPID_SUBJECT", "mailto:admin@example.com"),
			VAPIDPublicKey:      getEnv("VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey:     getEnv("VAPID_PRIVATE_KEY", ""),
			TTL:                 getDuration("PUSH_TTL", 24*time.Hour),
			Timeout:             getDuration("PUSH_TIMEOUT", 10*time.Second),
			FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go duration strings ("90s", "30m") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
