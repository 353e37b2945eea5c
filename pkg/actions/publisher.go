package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/lisanmuaddib/blog-agent/pkg/corpus"
	"github.com/lisanmuaddib/blog-agent/pkg/interfaces/tumblr"
	"github.com/lisanmuaddib/blog-agent/pkg/thoughts"
	"github.com/sirupsen/logrus"
)

// FormattingLink is the formatting type of a hyperlink range
const FormattingLink = "link"

// PublishConfig holds what a single publish needs besides the post itself
type PublishConfig struct {
	Blog   string
	Mood   string
	DryRun bool
}

// Publisher turns generated posts into create requests and submits them
type Publisher struct {
	poster PostCreator
	logger *logrus.Logger
}

// NewPublisher creates a new publisher instance
func NewPublisher(poster PostCreator, logger *logrus.Logger) *Publisher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Publisher{
		poster: poster,
		logger: logger,
	}
}

// Publish formats post and submits it once. In dry run mode the request is
// only logged and a nil post is returned.
func (p *Publisher) Publish(ctx context.Context, post *thoughts.BlogPost, set *corpus.ContextSet, config PublishConfig) (*tumblr.CreatedPost, error) {
	request := FormatPost(post, set, config.Mood)

	log := p.logger.WithFields(logrus.Fields{
		"blog":    config.Blog,
		"blocks":  len(request.Content),
		"tags":    request.Tags,
		"dry_run": config.DryRun,
	})

	if config.DryRun {
		log.WithField("content", post.Content).Info("Dry run, post not submitted")
		return nil, nil
	}

	created, err := p.poster.CreatePost(ctx, config.Blog, request)
	if err != nil {
		return nil, fmt.Errorf("error publishing post: %w", err)
	}

	log.WithField("post_id", created.ID).Info("Successfully published post")
	return created, nil
}

// FormatPost builds the create request: one text block per non-empty line of
// the generated text, then one linked provenance block per context post.
func FormatPost(post *thoughts.BlogPost, set *corpus.ContextSet, mood string) tumblr.CreatePostRequest {
	var blocks []tumblr.ContentBlock

	for _, line := range strings.Split(post.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, tumblr.ContentBlock{
			Type: tumblr.ContentTypeText,
			Text: line,
		})
	}

	if set != nil {
		for i, id := range set.IDs() {
			blocks = append(blocks, provenanceBlock(i+1, id, set.Link(id)))
		}
	}

	return tumblr.CreatePostRequest{
		Content: blocks,
		Tags:    strings.Join(postTags(post, mood), ","),
	}
}

// provenanceBlock renders "[index] id" with the id linked to its source
func provenanceBlock(index int, id, link string) tumblr.ContentBlock {
	text := fmt.Sprintf("[%d] %s", index, id)
	return tumblr.ContentBlock{
		Type: tumblr.ContentTypeText,
		Text: text,
		Formatting: []tumblr.Formatting{{
			Start: strings.Index(text, "]") + 2,
			End:   len(text),
			Type:  FormattingLink,
			URL:   link,
		}},
	}
}

func postTags(post *thoughts.BlogPost, mood string) []string {
	var tags []string
	if mood != "" {
		tags = append(tags, "mood: "+mood)
	}
	if post.Model != "" {
		tags = append(tags, "model: "+post.Model)
	}
	return append(tags,
		fmt.Sprintf("duration: %.2fs", post.Elapsed.Seconds()),
		fmt.Sprintf("temperature: %.2f", post.Temperature),
		fmt.Sprintf("top_p: %.2f", post.TopP),
	)
}
