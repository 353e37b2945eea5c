package llm

import (
	"context"
)

// LLM defines the interface for language model interactions
type LLM interface {
	Generate(ctx context.Context, prompt string, opts ...Option) (string, error)
}

// Option defines functional options for LLM configuration
type Option func(*Options)

// Options holds configuration for LLM calls
type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Model       string
}

// WithTemperature sets the temperature for generation
func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

// WithTopP sets the nucleus sampling threshold
func WithTopP(topP float64) Option {
	return func(o *Options) {
		o.TopP = topP
	}
}

// WithMaxTokens sets the maximum tokens for generation
func WithMaxTokens(tokens int) Option {
	return func(o *Options) {
		o.MaxTokens = tokens
	}
}

// WithModel sets the model to use
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Apply resolves opts over defaults
func Apply(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}
