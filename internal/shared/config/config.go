package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port                string
	Env                 string
	CORSAllowOrigin     []string
	DatabaseURL         string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	CounterKey          string
	LLMProvider         string
	LLMModel            string
	ExtractorURL        string
	ExtractorTimeoutMS  int
	FreeGenerationLimit int
	QuestionCount       int
	QuestionMaxChars    int
	BillingAPIURL       string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 env,
		CORSAllowOrigin:     splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		DatabaseURL:         dbURL,
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		CounterKey:          getEnv("COUNTER_KEY", "coffeecounter"),
		LLMProvider:         normalizeProvider(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:            getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		ExtractorURL:        getEnv("FIRECRAWL_API_URL", "https://api.firecrawl.dev/v1/scrape"),
		ExtractorTimeoutMS:  getEnvInt("FIRECRAWL_TIMEOUT_MS", 60000),
		FreeGenerationLimit: getEnvInt("FREE_GENERATION_LIMIT", 2),
		QuestionCount:       getEnvInt("QUESTION_COUNT", 3),
		QuestionMaxChars:    getEnvInt("QUESTION_MAX_CHARS", 250),
		BillingAPIURL:       getEnv("BILLING_API_URL", "https://api.stripe.com/v1"),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config env %s invalid int: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "anthropic":
		return "anthropic"
	default:
		return "openai"
	}
}
