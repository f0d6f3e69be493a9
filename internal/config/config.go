// ABOUTME: Centralized configuration for the careline dialogue engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the dialogue engine
type Config struct {
	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Knowledge index settings
	VectorDimension int
	TopK            int
	IndexDBPath     string

	// Record service settings
	RecordsDBPath string

	// Safety settings
	EscalationRulesPath string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		ChatModel:           getEnv("CARELINE_OPENAI_MODEL", "gpt-4o-mini"),
		EmbeddingModel:      getEnv("CARELINE_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:             getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:          getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:          getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		VectorDimension:     getEnvInt("CARELINE_VECTOR_DIMENSION", 1536),
		TopK:                getEnvInt("CARELINE_TOP_K", 4),
		IndexDBPath:         getEnv("CARELINE_INDEX_DB", "knowledge.db"),
		RecordsDBPath:       getEnv("CARELINE_RECORDS_DB", "careline.db"),
		EscalationRulesPath: os.Getenv("CARELINE_RULES_FILE"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.TopK < 1 || c.TopK > 50 {
		return fmt.Errorf("CARELINE_TOP_K must be 1-50, got %d", c.TopK)
	}
	if c.VectorDimension < 1 {
		return fmt.Errorf("CARELINE_VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
