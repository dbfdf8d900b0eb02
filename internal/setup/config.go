package setup

import (
	"os"
	"strconv"
	"time"

	"github.com/neurocosci/neuro-agent/internal/database"
)

type Config struct {
	AWSRegion        string
	ClaudeModelID    string
	ExpanderModelID  string
	EmbedModelID     string
	Postgres         database.Config
	RedisAddr        string
	RedisPassword    string
	RedisTTL         time.Duration
	Port             string
	QuestionBankPath string
	LibraryPath      string
	EvalDelay        time.Duration
	AgentMaxTokens   int
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		ExpanderModelID: getEnv("CLAUDE_MINI_MODEL_ID", ""),
		EmbedModelID:    getEnv("EMBED_MODEL_ID", "amazon.titan-embed-text-v2:0"),
		Postgres: database.Config{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "neuro"),
			SSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
		},
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTTL:         getEnvDuration("REDIS_TTL", 30*time.Minute),
		Port:             getEnv("AGENT_API_PORT", "8081"),
		QuestionBankPath: getEnv("QUESTION_BANK_PATH", "configs/questions.yaml"),
		LibraryPath:      getEnv("LIBRARY_PATH", "library.json"),
		EvalDelay:        getEnvDuration("EVAL_DELAY", 2*time.Second),
		AgentMaxTokens:   getEnvInt("AGENT_MAX_TOKENS", 2000),
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}
