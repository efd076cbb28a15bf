package config

import (
	"os"
	"strconv"
)

type Config struct {
	App      AppConfig
	Auth     AuthConfig
	Postgres PostgresConfig
}

type AppConfig struct {
	Name          string
	Port          string
	CORSOrigins   string
	AdminEmail    string
	AdminPassword string
}

type AuthConfig struct {
	SecretKey         string
	Algorithm         string
	AccessTTLSeconds  int
	RefreshTTLSeconds int
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		App: AppConfig{
			Name:          getenv("APP_NAME", "Vector Admin API"),
			Port:          getenv("PORT", "8080"),
			CORSOrigins:   getenv("CORS_ORIGINS", "*"),
			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Auth: AuthConfig{
			SecretKey:         getenv("SECRET_KEY", "change-me-to-a-long-random-string"),
			Algorithm:         getenv("ALGORITHM", "HS256"),
			AccessTTLSeconds:  getint("ACCESS_TOKEN_EXPIRE_SECONDS", 1800),
			RefreshTTLSeconds: getint("REFRESH_TOKEN_EXPIRE_SECONDS", 2592000),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getint(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
