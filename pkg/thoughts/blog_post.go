package thoughts

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lisanmuaddib/blog-agent/pkg/llm"
	"github.com/sirupsen/logrus"
	langchainprompts "github.com/tmc/langchaingo/prompts"
)

var postPattern = regexp.MustCompile(`(?s)<post>(.*?)</post>`)

// BlogPostConfig holds configuration for post generation
type BlogPostConfig struct {
	Template    langchainprompts.PromptTemplate
	Context     string
	Mood        string
	Model       string
	TopP        float64
	MaxAttempts int
}

// BlogPostGenerator defines the interface for generating posts
type BlogPostGenerator interface {
	GenerateBlogPost(ctx context.Context, config BlogPostConfig) (*BlogPost, error)
}

// DefaultBlogPostGenerator implements the BlogPostGenerator interface
type DefaultBlogPostGenerator struct {
	llm    llm.LLM
	rng    *rand.Rand
	logger *logrus.Logger
}

// NewBlogPostGenerator creates a new generator. A nil rng seeds one from the clock.
func NewBlogPostGenerator(model llm.LLM, rng *rand.Rand, logger *logrus.Logger) BlogPostGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &DefaultBlogPostGenerator{
		llm:    model,
		rng:    rng,
		logger: logger,
	}
}

// GenerateBlogPost formats the prompt and asks the model for a post, drawing
// a new temperature in [0, 2) for every attempt. Output without the sentinel
// tags counts as a failed attempt.
func (g *DefaultBlogPostGenerator) GenerateBlogPost(ctx context.Context, config BlogPostConfig) (*BlogPost, error) {
	prompt, err := config.Template.Format(map[string]any{
		"context": config.Context,
		"mood":    config.Mood,
	})
	if err != nil {
		return nil, fmt.Errorf("error formatting post prompt: %w", err)
	}

	g.logger.WithField("prompt", prompt).Debug("Formatted generation prompt")

	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastOutput string
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		temperature := g.rng.Float64() * 2.0

		opts := []llm.Option{llm.WithTemperature(temperature)}
		if config.TopP > 0 {
			opts = append(opts, llm.WithTopP(config.TopP))
		}

		start := time.Now()
		output, err := g.llm.Generate(ctx, prompt, opts...)
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("error generating post: %w", err)
		}

		log := g.logger.WithFields(logrus.Fields{
			"attempt":     attempt,
			"temperature": temperature,
			"elapsed":     elapsed.String(),
		})
		log.WithField("output", output).Debug("Model output")

		body, ok := ExtractPost(output)
		if !ok {
			lastOutput = output
			log.Warn("Model output has no tagged post")
			continue
		}

		return &BlogPost{
			ID:          uuid.New().String(),
			Content:     body,
			Model:       config.Model,
			Temperature: temperature,
			TopP:        config.TopP,
			Elapsed:     elapsed,
			Attempts:    attempt,
			CreatedAt:   time.Now(),
		}, nil
	}

	return nil, &GenerationParseError{Attempts: maxAttempts, Output: lastOutput}
}

// ExtractPost returns the trimmed text between the first <post> and </post>
func ExtractPost(output string) (string, bool) {
	match := postPattern.FindStringSubmatch(output)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}
