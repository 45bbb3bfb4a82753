package config

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	Prefix          string
}

type StorageConfig struct {
	// Backend is "local" or "r2".
	Backend  string
	Root     string
	FormsDir string
	CacheDir string
}

// StoreConfig holds the policy switches of the forms store.
type StoreConfig struct {
	// LenientDeleteCount makes delete-by-id report 1 even when nothing existed.
	LenientDeleteCount bool
	// LatestIncludesDeleted keeps soft-deleted rows in the newest-per-form view.
	LatestIncludesDeleted bool
	// WatchBuffer is the per-subscriber notification buffer.
	WatchBuffer int
}

type Config struct {
	DBDriver    string
	DB_URL      string
	Port        string
	JWTSecret   string
	Environment string
	LogLevel    string
	CorsConfig  cors.Options
	Storage     StorageConfig
	R2          R2Config
	Store       StoreConfig
}

// Load reads ENV_FILE (default .env) if present and builds the config from
// the environment.
func Load() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No", envFile, "file found")
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() Config {
	return Config{
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DB_URL:      getEnv("DB_URL", "formstore.db"),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "not-so-secret-now-is-it?"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CorsConfig:  CorsConfig(),
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", "local"),
			Root:     getEnv("STORAGE_ROOT", "storage"),
			FormsDir: getEnv("STORAGE_FORMS_DIR", "forms"),
			CacheDir: getEnv("STORAGE_CACHE_DIR", ".cache"),
		},
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", ""),
			Region:          getEnv("R2_REGION", "auto"),
			Prefix:          getEnv("R2_PREFIX", ""),
		},
		Store: StoreConfig{
			LenientDeleteCount:    getEnvBool("FORMSTORE_LENIENT_DELETE_COUNT", true),
			LatestIncludesDeleted: getEnvBool("FORMSTORE_LATEST_INCLUDES_DELETED", false),
			WatchBuffer:           getEnvInt("FORMSTORE_WATCH_BUFFER", 16),
		},
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid boolean for %s: %q, using %v", key, value, fallback)
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Invalid integer for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
