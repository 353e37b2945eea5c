package tumblr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// GetBlogInfo fetches a blog's metadata, including its total post count
func (c *TumblrClient) GetBlogInfo(ctx context.Context, blog string) (*Blog, error) {
	var resp Envelope[BlogInfo]
	err := c.Execute(ctx, RequestDescriptor{
		Method: http.MethodGet,
		Path:   blogPath(blog, "/info"),
	}, c.config.RetryAttempts, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blog info for %s: %w", blog, err)
	}

	c.logger.WithFields(logrus.Fields{
		"blog":  blog,
		"posts": resp.Response.Blog.Posts,
	}).Debug("Fetched blog info")

	return &resp.Response.Blog, nil
}
