package config

import (
	"os"
	"strconv"
)

// Directory backend selection values.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Storage backend selection values.
const (
	StorageMinIO = "minio"
	StorageHTTP  = "http"
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

// MongoConfig holds connection settings for the document-oriented backend.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// UploadConfig holds settings for the unsigned HTTP upload endpoint.
// Preset identifies the server-side unsigned upload policy.
type UploadConfig struct {
	Endpoint string
	Preset   string
}

// AuthConfig holds session issuing settings.
// AnonymousEnabled mirrors the project-level switch that can refuse
// anonymous identity issuance entirely.
type AuthConfig struct {
	JWTSecret        string
	SessionTTLSec    int
	AnonymousEnabled bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost          string
	Port             string
	DirectoryBackend string
	StorageBackend   string
	Database         DatabaseConfig
	Mongo            MongoConfig
	MinIO            MinIOConfig
	Upload           UploadConfig
	Auth             AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:          getEnv("APP_HOST", "localhost:8080"),
		Port:             getEnv("PORT", "8080"), // default only for non-sensitive value
		DirectoryBackend: getEnv("DIRECTORY_BACKEND", BackendPostgres),
		StorageBackend:   getEnv("STORAGE_BACKEND", StorageMinIO),
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
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", ""),
			Database:   getEnv("MONGO_DB", "docshare"),
			Collection: getEnv("MONGO_COLLECTION", "documents"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Upload: UploadConfig{
			Endpoint: getEnv("UPLOAD_ENDPOINT", ""),
			Preset:   getEnv("UPLOAD_PRESET", "docs_unsigned"),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("AUTH_JWT_SECRET", ""),
			SessionTTLSec:    getEnvInt("AUTH_SESSION_TTL_SEC", 86400),
			AnonymousEnabled: getEnvBool("AUTH_ANONYMOUS_ENABLED", true),
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
