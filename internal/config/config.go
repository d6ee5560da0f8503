// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TopicPolicy selects how a topic is assigned to a new session.
type TopicPolicy string

const (
	TopicRandom   TopicPolicy = "random"
	TopicRotation TopicPolicy = "rotation"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DataDir     string
	DBPath      string

	TopicsTasksFile string
	LLMConfigFile   string
	PersonasFile    string

	TopicPolicy        TopicPolicy
	AllowDuplicateTask bool

	InactivityTimeout       time.Duration
	InactivityCheckInterval time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "./data")

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		FrontendURL:             getEnv("FRONTEND_URL", ""),
		DataDir:                 dataDir,
		DBPath:                  getEnv("DB_PATH", dataDir+"/conversations.db"),
		TopicsTasksFile:         getEnv("TOPICS_TASKS_FILE", dataDir+"/topics_tasks.json"),
		LLMConfigFile:           getEnv("LLM_CONFIG_FILE", dataDir+"/llm_config.json"),
		PersonasFile:            getEnv("PERSONAS_FILE", dataDir+"/personas.json"),
		TopicPolicy:             TopicPolicy(getEnv("TOPIC_POLICY", string(TopicRandom))),
		AllowDuplicateTask:      getEnvBool("PAIRING_ALLOW_DUPLICATE_TASK", true),
		InactivityTimeout:       getEnvDuration("INACTIVITY_TIMEOUT", 30*time.Minute),
		InactivityCheckInterval: getEnvDuration("INACTIVITY_CHECK_INTERVAL", time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.TopicPolicy != TopicRandom && c.TopicPolicy != TopicRotation {
		return fmt.Errorf("TOPIC_POLICY must be %q or %q", TopicRandom, TopicRotation)
	}
	if c.InactivityTimeout <= 0 {
		return fmt.Errorf("INACTIVITY_TIMEOUT must be > 0")
	}
	if c.InactivityCheckInterval <= 0 {
		return fmt.Errorf("INACTIVITY_CHECK_INTERVAL must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(value)
	if d, err := time.ParseDuration(trimmed); err == nil {
		return d
	}
	// Bare numbers are treated as seconds.
	if n, err := strconv.Atoi(trimmed); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
