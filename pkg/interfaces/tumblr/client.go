package tumblr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientOption allows for customization of the client
type ClientOption func(*TumblrClient)

// WithSleepFunc replaces the backoff wait, used by tests
func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *TumblrClient) {
		c.sleep = fn
	}
}

// WithHTTPClient replaces the HTTP client used for API calls
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *TumblrClient) {
		c.httpClient = client
	}
}

// WithAuthenticator replaces the token source
func WithAuthenticator(auth *Authenticator) ClientOption {
	return func(c *TumblrClient) {
		c.auth = auth
	}
}

// RequestDescriptor describes one logical API call. It is not modified across
// retries; headers are derived again for every attempt.
type RequestDescriptor struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

func (d RequestDescriptor) isWrite() bool {
	return d.Method != http.MethodGet && d.Method != http.MethodHead
}

type TumblrClient struct {
	config     *TumblrConfig
	auth       *Authenticator
	httpClient *http.Client
	limiter    *rate.Limiter
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *logrus.Logger
}

// NewTumblrClient creates a new Tumblr API client
func NewTumblrClient(config *TumblrConfig, opts ...ClientOption) (*TumblrClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := &TumblrClient{
		config: config,
		auth:   NewAuthenticator(config),
		httpClient: &http.Client{
			Timeout:   config.RequestTimeout,
			Transport: newUserAgentTransport(config.UserAgent, nil),
		},
		limiter: rate.NewLimiter(rate.Every(config.RateInterval()), 1),
		sleep:   sleepContext,
		logger:  config.Logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Execute performs one logical call with the given retry budget. On success
// the response body, if any, is decoded into out when out is non-nil.
//
// 200 and 201 resolve the call. A 200 on a write is resent once after the
// auth backoff when ReconfirmWrites is set and budget remains for the resend. A 401 invalidates the token and
// waits the auth backoff. Any other status or transport error waits the retry
// backoff. Every attempt consumes one unit of budget.
func (c *TumblrClient) Execute(ctx context.Context, desc RequestDescriptor, budget int, out interface{}) error {
	log := c.logger.WithFields(logrus.Fields{
		"method": desc.Method,
		"path":   desc.Path,
	})

	var (
		lastErr      error
		attempts     int
		reconfirming bool
	)

	for budget > 0 {
		token, err := c.auth.Token(ctx)
		if err != nil {
			return err
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		attempts++
		budget--

		status, body, err := c.send(ctx, desc, token)

		var wait time.Duration
		warn := true
		switch {
		case err != nil:
			lastErr = &TransportError{Method: desc.Method, Path: desc.Path, Err: err}
			wait = c.config.RetryBackoff

		// With no budget left for the resend the 200 stands as the acknowledgement
		case status == http.StatusOK && desc.isWrite() && c.config.ReconfirmWrites && !reconfirming && budget > 0:
			reconfirming = true
			lastErr = &StatusError{Method: desc.Method, Path: desc.Path, StatusCode: status}
			wait = c.config.AuthBackoff
			warn = false
			log.WithField("attempt", attempts).Warn("Write acknowledged with 200, reconfirming")

		case status == http.StatusOK || status == http.StatusCreated:
			if out == nil || len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				lastErr = &TransportError{Method: desc.Method, Path: desc.Path, Err: fmt.Errorf("failed to decode response: %w", err)}
				wait = c.config.RetryBackoff
				break
			}
			log.WithFields(logrus.Fields{
				"status_code": status,
				"attempt":     attempts,
			}).Debug("Request completed")
			return nil

		case status == http.StatusUnauthorized:
			c.auth.Invalidate()
			lastErr = &StatusError{Method: desc.Method, Path: desc.Path, StatusCode: status, Body: string(body)}
			wait = c.config.AuthBackoff

		default:
			lastErr = &StatusError{Method: desc.Method, Path: desc.Path, StatusCode: status, Body: string(body)}
			wait = c.config.RetryBackoff
		}

		if budget == 0 {
			break
		}

		if warn {
			log.WithError(lastErr).WithFields(logrus.Fields{
				"attempt":   attempts,
				"remaining": budget,
				"backoff":   wait.String(),
			}).Warn("Request failed, retrying")
		}

		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}

	exhausted := &RequestExhaustedError{
		Method:   desc.Method,
		Path:     desc.Path,
		Attempts: attempts,
		Last:     lastErr,
	}
	log.WithError(exhausted).Error("Request retry budget exhausted")
	return exhausted
}

// send issues a single attempt and returns the status and the full body
func (c *TumblrClient) send(ctx context.Context, desc RequestDescriptor, token *Token) (int, []byte, error) {
	var bodyReader io.Reader
	if desc.Body != nil {
		jsonBody, err := json.Marshal(desc.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
		c.logger.WithField("request_body", string(jsonBody)).Debug("Request payload")
	}

	fullURL := c.config.BaseURL + desc.Path
	if len(desc.Query) > 0 {
		fullURL += "?" + desc.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, desc.Method, fullURL, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")
	if desc.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"endpoint":    desc.Path,
		"bytes":       len(body),
	}).Debug("Received Tumblr API response")

	return resp.StatusCode, body, nil
}

func blogPath(blog, suffix string) string {
	return "/blog/" + url.PathEscape(strings.TrimSpace(blog)) + suffix
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
