// Package config provides centralized default values for the ACE block service
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

// loadEnvFile applies .env overrides without clobbering variables that are
// already set in the environment.
func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err == nil {
			log.Println("Loaded configuration overrides from .env file")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	log.Printf("Config override: %s=%s", key, valStr)
	return values
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	CORSAllowOrigins   []string

	// Database
	DBDriver                 string
	DBDSN                    string
	TursoAuthToken           string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration

	// Identity
	JWTSecret string

	// Analytics service
	AnalyticsBaseURL string
	AnalyticsTimeout time.Duration
	GraphCacheTTL    time.Duration
	CleanupInterval  time.Duration

	// Host
	SiteCourseID        int64
	AssetBaseURL        string
	UserDashboardURL    string
	TeacherDashboardURL string
	PreferenceEndpoint  string
	Language            string

	// Logging
	LogLevel         string
	LogChannelLevels string
	LogJSON          bool
	LogDirectory     string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	CORSAllowOrigins = getEnvList("CORS_ALLOW_ORIGINS", []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://[::1]:3000",
	})

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBDSN = getEnvString("DB_DSN", "db/ace.db")
	TursoAuthToken = getEnvString("TURSO_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = time.Duration(getEnvInt("SLOW_QUERY_THRESHOLD_MS", 50)) * time.Millisecond

	// Identity
	JWTSecret = getEnvString("JWT_SECRET", "")

	// Analytics service
	AnalyticsBaseURL = getEnvString("ANALYTICS_BASE_URL", "http://127.0.0.1:8090")
	AnalyticsTimeout = getEnvDuration("ANALYTICS_TIMEOUT", 5*time.Second)
	GraphCacheTTL = time.Duration(getEnvInt("GRAPH_CACHE_TTL_MINUTES", 10)) * time.Minute
	CleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 5)) * time.Minute

	// Host
	SiteCourseID = getEnvInt64("SITE_COURSE_ID", 1)
	AssetBaseURL = strings.TrimRight(getEnvString("ASSET_BASE_URL", ""), "/")
	UserDashboardURL = getEnvString("USER_DASHBOARD_URL", "/local/ace/user.php")
	TeacherDashboardURL = getEnvString("TEACHER_DASHBOARD_URL", "/local/ace/teacher.php")
	PreferenceEndpoint = getEnvString("PREFERENCE_ENDPOINT", "/api/v1/preferences")
	Language = getEnvString("LANG_PACK", "en")

	// Logging
	LogLevel = getEnvString("LOG_LEVEL", "info")
	LogChannelLevels = getEnvString("LOG_CHANNEL_LEVELS", "")
	LogJSON = getEnvBool("LOG_JSON", true)
	LogDirectory = getEnvString("LOG_DIRECTORY", "")
}
