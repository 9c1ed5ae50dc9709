package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Companion CompanionConfig
	Tracing   TracingConfig
	Keys      APIKeys
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ChatLogFilePath    string
	CorsAllowedOrigins string
	NatsURL            string // empty disables JetStream publishing
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string // empty disables the transcript archive
	LogLevel   string // silent, error, warn or info
}

type SessionConfig struct {
	Store string // "memory" or "redis"
	TTL   time.Duration
}

type CompanionConfig struct {
	KnowledgeBaseDir string // empty uses the embedded knowledge base
	RandomSeed       uint64 // 0 seeds from the clock
	EventsTopic      string
	ThinkingDelay    time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type APIKeys struct {
	JWTSecret string // empty disables auth
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			ChatLogFilePath:    getEnv("CHAT_LOG_FILE_PATH", "chat.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogLevel:   getEnv("DB_LOG_LEVEL", "warn"),
		},
		Session: SessionConfig{
			Store: getEnv("SESSION_STORE", SessionStoreMemory),
			TTL:   time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		},
		Companion: CompanionConfig{
			KnowledgeBaseDir: getEnv("KNOWLEDGE_BASE_DIR", ""),
			RandomSeed:       getEnvAsUint64("RANDOM_SEED", 0),
			EventsTopic:      getEnv("CONVERSATION_EVENTS_TOPIC", "conversation.ended"),
			ThinkingDelay:    time.Duration(getEnvAsInt("THINKING_DELAY_MS", 0)) * time.Millisecond,
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "companion-bot"),
		},
		Keys: APIKeys{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsUint64(key string, fallback uint64) uint64 {
	if value, err := strconv.ParseUint(getEnv(key, ""), 10, 64); err == nil {
		return value
	}
	return fallback
}
