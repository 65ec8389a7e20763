package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Env holds everything the process reads from the environment.
type Env struct {
	Port        string
	DBURL       string
	AutoMigrate bool
	FrontendURL string
	CORSOrigins string

	JWTSecret string
	JWTTTL    time.Duration

	StorageDriver   string
	GCSBucket       string
	GCPCredentials  string
	UploadDir       string
	PublicBaseURL   string
	MaxUploadBytes  int
	RedisURL        string
	ExploreCacheTTL time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	EmailProvider string
	EmailAPIKey   string
	EmailSender   string

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIModel   string
	GroqAPIKey    string
	GroqBaseURL   string
	GroqModelName string
	GeminiAPIKey  string
	GeminiModelID string

	LogLevel  string
	LogFormat string
}

// LoadEnv reads the environment. godotenv has already been applied by main.
func LoadEnv() Env {
	port := getEnv("PORT", "3000")
	return Env{
		Port:        port,
		DBURL:       os.Getenv("DB_URL"),
		AutoMigrate: getBool("AUTO_MIGRATE", false),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getDuration("JWT_TTL", 7*24*time.Hour),

		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
		GCPCredentials:  os.Getenv("GCP_SERVICE_ACCOUNT_CREDENTIALS"),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		MaxUploadBytes:  getInt("MAX_UPLOAD_BYTES", 10*1024*1024),
		RedisURL:        os.Getenv("REDIS_URL"),
		ExploreCacheTTL: getDuration("EXPLORE_CACHE_TTL", time.Minute),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		EmailProvider: getEnv("EMAIL_PROVIDER", "log"),
		EmailAPIKey:   os.Getenv("EMAIL_API_KEY"),
		EmailSender:   getEnv("EMAIL_SENDER", "Studio Space <hello@studiospace.app>"),

		LLMProvider:   strings.ToLower(os.Getenv("LLM_PROVIDER")),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4.1"),
		GroqAPIKey:    os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:   os.Getenv("GROQ_BASE_URL"),
		GroqModelName: os.Getenv("GROQ_MODEL_NAME"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModelID: os.Getenv("GEMINI_MODEL_ID"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
