package tumblr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// CreatePost submits a new post to blog. The call succeeds only once the
// API has acknowledged the write.
func (c *TumblrClient) CreatePost(ctx context.Context, blog string, request CreatePostRequest) (*CreatedPost, error) {
	c.logger.WithFields(logrus.Fields{
		"blog":   blog,
		"blocks": len(request.Content),
		"tags":   request.Tags,
	}).Debug("Sending create post request")

	var resp Envelope[CreatedPost]
	err := c.Execute(ctx, RequestDescriptor{
		Method: http.MethodPost,
		Path:   blogPath(blog, "/posts"),
		Body:   request,
	}, c.config.RetryAttempts, &resp)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create post")
		return nil, fmt.Errorf("failed to create post on %s: %w", blog, err)
	}

	c.logger.WithFields(logrus.Fields{
		"blog":    blog,
		"post_id": resp.Response.ID,
	}).Info("Post created")

	return &resp.Response, nil
}
