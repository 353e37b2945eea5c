package actions

import (
	"context"

	"github.com/lisanmuaddib/blog-agent/pkg/corpus"
	"github.com/lisanmuaddib/blog-agent/pkg/interfaces/tumblr"
)

// Action represents a single action that can be performed by the agent
type Action interface {
	// Name returns the unique identifier for this action
	Name() string
	// Execute runs the action with the given context
	Execute(ctx context.Context) error
	// Stop cleanly stops the action
	Stop()
}

// PostCreator submits a post to a blog
type PostCreator interface {
	CreatePost(ctx context.Context, blog string, request tumblr.CreatePostRequest) (*tumblr.CreatedPost, error)
}

// BlogReader is the read side of the API used before generating a post
type BlogReader interface {
	GetUserInfo(ctx context.Context) (*tumblr.UserInfo, error)
	GetBlogInfo(ctx context.Context, blog string) (*tumblr.Blog, error)
}

// ContextSampler draws the context posts a generation is based on
type ContextSampler interface {
	Sample(ctx context.Context, blog string, totalPosts, targetSize int, filters corpus.Filters) (*corpus.ContextSet, error)
}
