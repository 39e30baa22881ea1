package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        int
	NatsURL     string
	NatsToken   string
	DatabaseURL string
	LogLevel    string
	GeminiKeys  []string
	GeminiModel string
	ASRURL      string
	APIToken    string
}

func Load() Config {
	return Config{
		Port:        envInt("MINUTED_PORT", 8780),
		NatsURL:     envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:   envStr("NATS_TOKEN", ""),
		DatabaseURL: envStr("DATABASE_URL", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		GeminiKeys:  envKeys("GEMINI_API_KEYS", "GEMINI_API_KEY"),
		GeminiModel: envStr("GEMINI_MODEL", "gemini-2.5-flash"),
		ASRURL:      envStr("ASR_URL", "http://localhost:9000"),
		APIToken:    envStr("MINUTED_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envKeys parses a comma-separated credential list, falling back to a
// single-key variable.
func envKeys(key, singleKey string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		raw = os.Getenv(singleKey)
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
