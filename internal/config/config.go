package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config параметры клиента и локального сервера
type Config struct {
	APIBaseURL  string
	StateDir    string
	HTTPTimeout time.Duration

	// настройки cmd/backend
	HTTPAddr  string
	JWTSecret string
	ImageDir  string
}

func Load() Config {
	return Config{
		APIBaseURL:  getenv("API_BASE_URL", "http://localhost:8000"),
		StateDir:    getenv("STATE_DIR", defaultStateDir()),
		HTTPTimeout: getduration("HTTP_TIMEOUT", 15*time.Second),
		HTTPAddr:    getenv("HTTP_ADDR", ":8000"),
		JWTSecret:   getenv("JWT_SECRET", "obuv-dev-secret"),
		ImageDir:    getenv("IMAGE_DIR", "static/images"),
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".obuv"
	}
	return filepath.Join(home, ".obuv")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
