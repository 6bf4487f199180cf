package server

import (
	"os"
	"strconv"

	"qa/types"
)

func loadConfig() types.Config {
	return types.Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		StorageDir: getEnv("STORAGE_DIR", "./storage"),
		FilesDir:   getEnv("FILES_DIR", "./files"),

		ChunkTokens: getEnvInt("CHUNK_TOKENS", 300),
		ChunkHead:   getEnvInt("CHUNK_HEAD", 1),
		ChunkTail:   getEnvInt("CHUNK_TAIL", 2),

		MatchFraction: getEnvInt("MATCH_FRACTION", 6),
		TextSimWeight: getEnvFloat("TEXT_SIM_WEIGHT", 0.22287),

		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		ChatModel:      getEnv("CHAT_MODEL", "gpt-3.5-turbo"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float32) float32 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
