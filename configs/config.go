// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// AI Provider Configuration
	AI_PROVIDER       string // "openai", "gemini" or "" (generative fallback disabled)
	OPENAI_API_KEY    string
	OPENAI_MODEL_NAME string
	GEMINI_API_KEY    string
	GEMINI_MODEL_NAME string
	AI_TIMEOUT_SEC    int // Per-request budget for a single oracle call

	// AI Pricing Configuration (per 1M tokens in USD)
	AI_INPUT_PRICE_PER_MILLION  float64
	AI_OUTPUT_PRICE_PER_MILLION float64
	USD_TO_TRY                  float64

	// Server Configuration
	PORT            string
	ALLOWED_ORIGINS string

	// Catalog Store (PostgreSQL)
	DATABASE_URL string

	// Analytics Store (MongoDB, optional)
	MONGO_URI     string
	MONGO_DB_NAME string

	// Matching engine tuning
	SEARCH_LIMIT             int     // Result cap for pattern/full-text catalog queries
	AI_CANDIDATE_LIMIT       int     // How many candidates are sent to the oracle
	AI_SAMPLE_LIMIT          int     // Unranked catalog sample size when lexical search is empty
	MULTI_MATCH_GAP          float64 // Confidence gap that still counts two results as "similar"
	EXACT_ACCEPT_THRESHOLD   float64 // Exact stage result is terminal at or above this confidence
	LEXICAL_ACCEPT_THRESHOLD float64 // Lexical stage result is accepted at or above this confidence

	// Image request extraction settings
	ENABLE_IMAGE_PREPROCESSING bool
	MAX_IMAGE_DIMENSION        int
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Required: catalog database
	DATABASE_URL = getEnv("DATABASE_URL", "")
	if DATABASE_URL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// AI provider is optional - without it the engine stops after the lexical stage
	AI_PROVIDER = getEnv("AI_PROVIDER", "")
	OPENAI_API_KEY = getEnv("OPENAI_API_KEY", "")
	OPENAI_MODEL_NAME = getEnv("OPENAI_MODEL_NAME", "gpt-4o-mini")
	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	GEMINI_MODEL_NAME = getEnv("GEMINI_MODEL_NAME", "gemini-2.5-flash")
	AI_TIMEOUT_SEC = getEnvInt("AI_TIMEOUT_SECONDS", 15)

	switch AI_PROVIDER {
	case "openai":
		if OPENAI_API_KEY == "" {
			log.Fatal("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	case "gemini":
		if GEMINI_API_KEY == "" {
			log.Fatal("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case "":
		log.Println("⚠️  AI_PROVIDER not set - generative fallback disabled")
	default:
		log.Fatalf("Unsupported AI_PROVIDER: %s (supported: openai, gemini)", AI_PROVIDER)
	}

	// AI Pricing (default to gpt-4o-mini pricing)
	AI_INPUT_PRICE_PER_MILLION = getEnvFloat("AI_INPUT_PRICE_PER_MILLION", 0.15)
	AI_OUTPUT_PRICE_PER_MILLION = getEnvFloat("AI_OUTPUT_PRICE_PER_MILLION", 0.60)
	USD_TO_TRY = getEnvFloat("USD_TO_TRY", 41.0)

	PORT = getEnv("PORT", "8080")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	// Analytics store (optional - sink degrades to log-only when unset)
	MONGO_URI = getEnv("MONGO_URI", "")
	MONGO_DB_NAME = getEnv("MONGO_DB_NAME", "teklifware")

	// Engine tuning. Defaults mirror the production catalog settings; the gap
	// and candidate caps are the primary precision/recall levers.
	SEARCH_LIMIT = getEnvInt("SEARCH_LIMIT", 10)
	AI_CANDIDATE_LIMIT = getEnvInt("AI_CANDIDATE_LIMIT", 10)
	AI_SAMPLE_LIMIT = getEnvInt("AI_SAMPLE_LIMIT", 100)
	MULTI_MATCH_GAP = getEnvFloat("MULTI_MATCH_GAP", 0.1)
	EXACT_ACCEPT_THRESHOLD = getEnvFloat("EXACT_ACCEPT_THRESHOLD", 0.9)
	LEXICAL_ACCEPT_THRESHOLD = getEnvFloat("LEXICAL_ACCEPT_THRESHOLD", 0.7)

	// Image Processing
	ENABLE_IMAGE_PREPROCESSING = getEnvBool("ENABLE_IMAGE_PREPROCESSING", true)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2000)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
