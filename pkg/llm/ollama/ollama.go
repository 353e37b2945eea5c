package ollama

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/lisanmuaddib/blog-agent/pkg/llm"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

type Client struct {
	logger *logrus.Logger
	llm    llms.Model
	config *OllamaConfig
}

// NewOllamaClient creates a client for the configured model, resolving
// ModelAuto to a random installed model first.
func NewOllamaClient(ctx context.Context, config *OllamaConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if config.Model == ModelAuto {
		models, err := ListModels(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		model, err := PickModel(models, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		if err != nil {
			return nil, err
		}
		config.Model = model
		config.Logger.WithFields(logrus.Fields{
			"model":     model,
			"installed": len(models),
		}).Info("Selected model")
	}

	model, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.ServerURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Ollama: %w", err)
	}

	return &Client{
		logger: config.Logger,
		llm:    model,
		config: config,
	}, nil
}

// Model returns the resolved model name
func (c *Client) Model() string {
	return c.config.Model
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{
		Temperature: 1.0,
		MaxTokens:   c.config.MaxTokens,
		Model:       c.config.Model,
	}, opts...)

	c.logger.WithFields(logrus.Fields{
		"temperature": options.Temperature,
		"top_p":       options.TopP,
		"model":       options.Model,
	}).Debug("Generating completion")

	callOpts := []llms.CallOption{
		llms.WithTemperature(options.Temperature),
	}
	if options.Model != "" {
		callOpts = append(callOpts, llms.WithModel(options.Model))
	}
	if options.TopP > 0 {
		callOpts = append(callOpts, llms.WithTopP(options.TopP))
	}
	if options.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(options.MaxTokens))
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, callOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	return completion, nil
}
