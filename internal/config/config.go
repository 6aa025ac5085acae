package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort           string
	AppEnv            string
	StorageDriver     string // memory | file | postgres
	StorageDir        string
	DBHost            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBPort            string
	PaystackSecretKey string
	BackendBaseURL    string
	IdleTimeout       time.Duration
	WarningWindow     time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		AppEnv:            os.Getenv("APP_ENV"),
		StorageDriver:     getEnv("STORAGE_DRIVER", "memory"),
		StorageDir:        getEnv("STORAGE_DIR", "./data"),
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            os.Getenv("DB_PORT"),
		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		BackendBaseURL:    os.Getenv("BACKEND_BASE_URL"),
		IdleTimeout:       getDuration("SESSION_IDLE_TIMEOUT", 20*time.Minute),
		WarningWindow:     getDuration("SESSION_WARNING_WINDOW", 2*time.Minute),
	}

	if cfg.StorageDriver == "postgres" && cfg.DBHost == "" {
		log.Fatal("postgres storage selected but DB environment variables not loaded")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %v", key, err)
	}
	return d
}
