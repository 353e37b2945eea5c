package ollama

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServerURL = "http://localhost:11434"
	// ModelAuto picks a random locally installed model
	ModelAuto = "auto"
)

type OllamaConfig struct {
	ServerURL string
	Model     string
	MaxTokens int
	Logger    *logrus.Logger
}

// NewOllamaConfig creates a new OllamaConfig from environment variables
func NewOllamaConfig() (*OllamaConfig, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	maxTokens := 0
	if raw := os.Getenv("OLLAMA_MAX_TOKENS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid OLLAMA_MAX_TOKENS: %w", err)
		}
		maxTokens = parsed
	}

	config := &OllamaConfig{
		ServerURL: os.Getenv("OLLAMA_SERVER_URL"),
		Model:     os.Getenv("OLLAMA_MODEL"),
		MaxTokens: maxTokens,
		Logger:    logrus.New(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *OllamaConfig) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens cannot be negative")
	}
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.Model == "" {
		c.Model = ModelAuto
	}
	return nil
}
