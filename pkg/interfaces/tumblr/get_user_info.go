package tumblr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// GetUserInfo fetches the authenticated user's account, which doubles as a
// credential check before any real work starts.
func (c *TumblrClient) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	var resp Envelope[UserInfo]
	err := c.Execute(ctx, RequestDescriptor{
		Method: http.MethodGet,
		Path:   "/user/info",
	}, c.config.RetryAttempts, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"user":  resp.Response.User.Name,
		"blogs": len(resp.Response.User.Blogs),
	}).Debug("Fetched user info")

	return &resp.Response, nil
}
