package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	// File storage
	LocalStoreDir string
	ReportsDir    string

	// LLM provider
	LLMProvider string
	LLMModel    string
	LLMAPIKey   string

	// External orchestration service
	OrchestrateURL      string
	OrchestrateAPIKey   string
	OrchestrateTeamID   string
	OrchestrateWorkflow string

	// Patent search API
	PatentsAPIURL string
	PatentsAPIKey string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		DatabaseURL:     dbURL,

		LocalStoreDir: getEnv("LOCAL_STORE_DIR", "./data/disclosures"),
		ReportsDir:    getEnv("REPORTS_DIR", "./data/reports"),

		LLMProvider: getEnv("LLM_PROVIDER", "openai"),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:   getEnv("LLM_API_KEY", os.Getenv("OPENAI_API_KEY")),

		OrchestrateURL:      getEnv("ORCHESTRATE_URL", ""),
		OrchestrateAPIKey:   getEnv("ORCHESTRATE_API_KEY", ""),
		OrchestrateTeamID:   getEnv("ORCHESTRATE_TEAM_ID", ""),
		OrchestrateWorkflow: getEnv("ORCHESTRATE_WORKFLOW", "patent-analysis-workflow"),

		PatentsAPIURL: getEnv("PATENTS_API_URL", ""),
		PatentsAPIKey: getEnv("PATENTS_API_KEY", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt reads an integer env var, returning def when unset or invalid.
func GetEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
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
