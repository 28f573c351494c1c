package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for brief response documents.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds the notification queue settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QueueKey string
}

// MarketplaceConfig holds business settings shared by the services.
type MarketplaceConfig struct {
	FrontendAddress        string
	GenericEmailDomains    []string
	SpecialistMaxResponses int
	DefaultPageSize        int
	BriefCloseSchedule     string
	DefaultBriefOpenDays   int
}

// ABRConfig configures the Australian Business Register lookup client.
type ABRConfig struct {
	Endpoint   string
	GUID       string
	RatePerSec int
	TimeoutSec int
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Env      string
	Level    string
	Timezone string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Redis       RedisConfig
	Marketplace MarketplaceConfig
	ABR         ABRConfig
	Log         LogConfig
}

var defaultGenericEmailDomains = []string{
	"bigpond.com", "digital.gov.au", "gmail.com", "hotmail.com", "icloud.com", "iinet.net.au",
	"internode.on.net", "live.com.au", "me.com", "outlook.com", "optusnet.com.au", "yahoo.com",
	"yahoo.com.au",
}

// Load reads configuration from environment variables.
// A .env file is auto-loaded by cmd/api through github.com/joho/godotenv/autoload;
// real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			QueueKey: getEnv("NOTIFY_QUEUE_KEY", "marketplace:notifications"),
		},
		Marketplace: MarketplaceConfig{
			FrontendAddress:        getEnv("FRONTEND_ADDRESS", "http://localhost"),
			GenericEmailDomains:    getEnvList("GENERIC_EMAIL_DOMAINS", defaultGenericEmailDomains),
			SpecialistMaxResponses: getEnvInt("SPECIALIST_MAX_RESPONSES", 3),
			DefaultPageSize:        getEnvInt("DEFAULT_PAGE_SIZE", 20),
			BriefCloseSchedule:     getEnv("BRIEF_CLOSE_SCHEDULE", "0 */5 * * * *"),
			DefaultBriefOpenDays:   getEnvInt("BRIEF_DEFAULT_OPEN_DAYS", 14),
		},
		ABR: ABRConfig{
			Endpoint:   getEnv("ABR_ENDPOINT", "https://abr.business.gov.au/abrxmlsearch/AbrXmlSearch.asmx/SearchByABNv201205"),
			GUID:       getEnv("ABR_GUID", ""),
			RatePerSec: getEnvInt("ABR_RATE_PER_SEC", 5),
			TimeoutSec: getEnvInt("ABR_TIMEOUT_SEC", 10),
		},
		Log: LogConfig{
			Env:      getEnv("APP_ENV", "development"),
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("TZ", "UTC"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
