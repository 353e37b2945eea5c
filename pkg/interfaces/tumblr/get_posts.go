package tumblr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

// GetPosts fetches one page of a blog's posts starting at offset.
// Posts are requested in the Neue Post Format so content arrives as blocks.
// Rate limit: 300/min per client
func (c *TumblrClient) GetPosts(ctx context.Context, blog string, offset int) ([]Post, error) {
	log := c.logger.WithFields(logrus.Fields{
		"method": "GetPosts",
		"blog":   blog,
		"offset": offset,
	})

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(PageSize))
	query.Set("npf", "true")

	var resp Envelope[Posts]
	err := c.Execute(ctx, RequestDescriptor{
		Method: http.MethodGet,
		Path:   blogPath(blog, "/posts"),
		Query:  query,
	}, c.config.RetryAttempts, &resp)
	if err != nil {
		log.WithError(err).Error("Failed to fetch posts")
		return nil, fmt.Errorf("failed to fetch posts at offset %d: %w", offset, err)
	}

	log.WithField("result_count", len(resp.Response.Posts)).Debug("Fetched posts page")

	return resp.Response.Posts, nil
}
