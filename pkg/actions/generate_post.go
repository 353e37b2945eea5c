package actions

import (
	"context"
	"fmt"
	"sync"

	"github.com/lisanmuaddib/blog-agent/internal/prompts"
	"github.com/lisanmuaddib/blog-agent/pkg/corpus"
	"github.com/lisanmuaddib/blog-agent/pkg/interfaces/tumblr"
	"github.com/lisanmuaddib/blog-agent/pkg/thoughts"
	"github.com/sirupsen/logrus"
	langchainprompts "github.com/tmc/langchaingo/prompts"
)

const (
	DefaultContextSize = 5
	DefaultMinSize     = 300
	DefaultTopP        = 0.9
)

// GeneratePostConfig holds configuration for one generated post
type GeneratePostConfig struct {
	// Source is the blog the context posts are sampled from
	Source string
	// Blog is the blog the generated post is published to
	Blog        string
	Model       string
	ContextSize int
	Filters     corpus.Filters
	Mood        string
	TopP        float64
	DryRun      bool
	Template    langchainprompts.PromptTemplate
}

// GeneratePostAction samples a source blog, generates a post from the sample
// and publishes it. It runs once to completion.
type GeneratePostAction struct {
	reader    BlogReader
	sampler   ContextSampler
	generator thoughts.BlogPostGenerator
	publisher *Publisher
	config    GeneratePostConfig
	logger    *logrus.Logger

	stopOnce sync.Once
	stopChan chan struct{}

	result *tumblr.CreatedPost
}

func NewGeneratePostAction(
	client interface {
		BlogReader
		PostCreator
	},
	sampler ContextSampler,
	generator thoughts.BlogPostGenerator,
	config GeneratePostConfig,
	logger *logrus.Logger,
) *GeneratePostAction {
	if logger == nil {
		logger = logrus.New()
	}
	if config.ContextSize <= 0 {
		config.ContextSize = DefaultContextSize
	}
	if config.TopP <= 0 {
		config.TopP = DefaultTopP
	}
	if config.Blog == "" {
		config.Blog = config.Source
	}

	return &GeneratePostAction{
		reader:    client,
		sampler:   sampler,
		generator: generator,
		publisher: NewPublisher(client, logger),
		config:    config,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

func (a *GeneratePostAction) Name() string {
	return "generate_post"
}

func (a *GeneratePostAction) Execute(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-a.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	log := a.logger.WithFields(logrus.Fields{
		"source": a.config.Source,
		"blog":   a.config.Blog,
		"model":  a.config.Model,
	})

	user, err := a.reader.GetUserInfo(ctx)
	if err != nil {
		return fmt.Errorf("error checking credentials: %w", err)
	}
	log.WithField("user", user.User.Name).Info("Authenticated")

	source, err := a.reader.GetBlogInfo(ctx, a.config.Source)
	if err != nil {
		return fmt.Errorf("error reading source blog: %w", err)
	}

	set, err := a.sampler.Sample(ctx, a.config.Source, source.Posts, a.config.ContextSize, a.config.Filters)
	if err != nil {
		return fmt.Errorf("error sampling source blog: %w", err)
	}
	log.WithFields(logrus.Fields{
		"total_posts": source.Posts,
		"context_ids": set.IDs(),
	}).Info("Context sampled")

	post, err := a.generator.GenerateBlogPost(ctx, thoughts.BlogPostConfig{
		Template: a.config.Template,
		Context:  prompts.FormatContext(set.Texts()),
		Mood:     a.config.Mood,
		Model:    a.config.Model,
		TopP:     a.config.TopP,
	})
	if err != nil {
		return fmt.Errorf("error generating post: %w", err)
	}
	log.WithFields(logrus.Fields{
		"attempts":    post.Attempts,
		"temperature": post.Temperature,
		"elapsed":     post.Elapsed.String(),
	}).Info("Post generated")

	created, err := a.publisher.Publish(ctx, post, set, PublishConfig{
		Blog:   a.config.Blog,
		Mood:   a.config.Mood,
		DryRun: a.config.DryRun,
	})
	if err != nil {
		return err
	}

	a.result = created
	return nil
}

// Result returns the created post after a successful non dry run Execute
func (a *GeneratePostAction) Result() *tumblr.CreatedPost {
	return a.result
}

func (a *GeneratePostAction) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopChan)
	})
}
