// Package config loads service configuration from the environment. main
// loads .env first; everything after that reads from the resulting process
// environment, and components receive what they need through constructors
// instead of reading env themselves.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	MongoURI      string
	MongoDatabase string

	BlobBaseURL        string
	BlobBucket         string
	KnowledgeTableKey  string
	KnowledgeTablePath string // local file override, mainly for dev

	TranscribeURL     string
	TranscribePollMax time.Duration

	LLMGatewayURL string
	LLMAPIKey     string
	LLMModel      string

	EmbeddingURL    string
	EmbeddingAPIKey string
	EmbeddingModel  string

	RetrievalTopN int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "call_audit"),

		BlobBaseURL:        getEnv("BLOB_BASE_URL", ""),
		BlobBucket:         getEnv("BLOB_BUCKET", "recordings"),
		KnowledgeTableKey:  getEnv("KNOWLEDGE_TABLE_KEY", "validation_data/knowledge_chunks.xlsx"),
		KnowledgeTablePath: getEnv("KNOWLEDGE_TABLE_PATH", ""),

		TranscribeURL:     getEnv("TRANSCRIBE_URL", ""),
		TranscribePollMax: getDuration("TRANSCRIBE_POLL_MAX", 3*time.Minute),

		LLMGatewayURL: getEnv("LLM_GATEWAY_URL", ""),
		LLMAPIKey:     getEnv("LLM_API_KEY", ""),
		LLMModel:      getEnv("LLM_MODEL", ""),

		EmbeddingURL:    getEnv("EMBEDDING_URL", ""),
		EmbeddingAPIKey: getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", ""),

		RetrievalTopN: getInt("RETRIEVAL_TOP_N", 5),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
