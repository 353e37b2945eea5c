package agentconfig

import (
	"fmt"

	"github.com/lisanmuaddib/blog-agent/pkg/actions"
	"github.com/lisanmuaddib/blog-agent/pkg/corpus"
	"github.com/lisanmuaddib/blog-agent/pkg/interfaces/tumblr"
	"github.com/lisanmuaddib/blog-agent/pkg/llm"
	"github.com/lisanmuaddib/blog-agent/pkg/thoughts"
	"github.com/sirupsen/logrus"
)

type ActionConfig struct {
	TumblrClient *tumblr.TumblrClient
	LLM          llm.LLM
	Logger       *logrus.Logger
	Post         actions.GeneratePostConfig
}

// ConfigureActions sets up all agent actions
func ConfigureActions(config ActionConfig) ([]actions.Action, error) {
	if config.TumblrClient == nil {
		return nil, fmt.Errorf("tumblr client is required")
	}
	if config.LLM == nil {
		return nil, fmt.Errorf("LLM is required")
	}
	if config.Post.Source == "" {
		return nil, fmt.Errorf("source blog is required")
	}

	sampler := corpus.NewSampler(config.TumblrClient, config.Logger)
	generator := thoughts.NewBlogPostGenerator(config.LLM, nil, config.Logger)

	generatePost := actions.NewGeneratePostAction(
		config.TumblrClient,
		sampler,
		generator,
		config.Post,
		config.Logger,
	)

	return []actions.Action{generatePost}, nil
}
