package openai

import (
	"context"
	"fmt"

	"github.com/lisanmuaddib/blog-agent/pkg/llm"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type Client struct {
	logger *logrus.Logger
	llm    llms.Model
	config *OpenAIConfig
}

func NewOpenAIClient(config *OpenAIConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opts := []openai.Option{
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI: %w", err)
	}

	return &Client{
		logger: config.Logger,
		llm:    model,
		config: config,
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.config.Model
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{
		Temperature: 0.7,
		MaxTokens:   c.config.MaxTokens,
		Model:       c.config.Model,
	}, opts...)

	c.logger.WithFields(logrus.Fields{
		"temperature": options.Temperature,
		"top_p":       options.TopP,
		"maxTokens":   options.MaxTokens,
		"model":       options.Model,
	}).Debug("Generating completion")

	callOpts := []llms.CallOption{
		llms.WithModel(options.Model),
		llms.WithTemperature(options.Temperature),
		llms.WithMaxTokens(options.MaxTokens),
	}
	if options.TopP > 0 {
		callOpts = append(callOpts, llms.WithTopP(options.TopP))
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, callOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	return completion, nil
}
