package config

import "os"

// Config gathers the environment the server reads at startup.
type Config struct {
	Port          string
	AppSecret     string
	DBPath        string
	AllowedOrigin string
	GeminiAPIKey  string
	RedisAddr     string
	UploadDir     string
}

func Load() Config {
	return Config{
		Port:          getEnv("PORT", "5000"),
		AppSecret:     os.Getenv("APP_SECRET"),
		DBPath:        getEnv("DB_PATH", "mediverse.db"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
