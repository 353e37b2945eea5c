package tumblr

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL        = "https://api.tumblr.com/v2"
	DefaultTokenPath      = "token.json"
	DefaultUserAgent      = "Gustavo/1.0.0"
	DefaultRetryAttempts  = 5
	DefaultRequestTimeout = 10 * time.Second
	DefaultRetryBackoff   = 5 * time.Second
	DefaultAuthBackoff    = 10 * time.Second
)

type TumblrConfig struct {
	// OAuth2 application credentials
	ClientID     string
	ClientSecret string
	// Authorization code and redirect URI, only used when no token was ever stored
	Code        string
	RedirectURI string

	// API Endpoints
	BaseURL       string
	TokenEndpoint string
	UserAgent     string

	// TokenPath is the file holding the cached token record
	TokenPath string

	// Retry policy
	RetryAttempts  int
	RequestTimeout time.Duration
	RetryBackoff   time.Duration
	AuthBackoff    time.Duration
	// ReconfirmWrites resends a write once after a 200 instead of treating it as done
	ReconfirmWrites bool

	// Rate Limiting: at most RateLimit calls per RateWindow seconds
	RateLimit  int
	RateWindow int

	// General Config
	Logger *logrus.Logger
}

func NewTumblrConfig() (*TumblrConfig, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	retryAttempts, _ := strconv.Atoi(getEnvOrDefault("TUMBLR_RETRY_ATTEMPTS", strconv.Itoa(DefaultRetryAttempts)))
	rateLimit, _ := strconv.Atoi(getEnvOrDefault("TUMBLR_RATE_LIMIT", "300"))
	rateWindow, _ := strconv.Atoi(getEnvOrDefault("TUMBLR_RATE_WINDOW", "60"))
	reconfirm, err := strconv.ParseBool(getEnvOrDefault("TUMBLR_RECONFIRM_WRITES", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid TUMBLR_RECONFIRM_WRITES: %w", err)
	}

	baseURL := getEnvOrDefault("TUMBLR_API_BASE_URL", DefaultBaseURL)

	config := &TumblrConfig{
		ClientID:     os.Getenv("TUMBLR_CLIENT_ID"),
		ClientSecret: os.Getenv("TUMBLR_CLIENT_SECRET"),
		Code:         os.Getenv("TUMBLR_CODE"),
		RedirectURI:  os.Getenv("TUMBLR_REDIRECT_URI"),

		BaseURL:       baseURL,
		TokenEndpoint: getEnvOrDefault("TUMBLR_TOKEN_URL", baseURL+"/oauth2/token"),
		UserAgent:     getEnvOrDefault("TUMBLR_USER_AGENT", DefaultUserAgent),
		TokenPath:     getEnvOrDefault("TUMBLR_TOKEN_PATH", DefaultTokenPath),

		RetryAttempts:   retryAttempts,
		RequestTimeout:  DefaultRequestTimeout,
		RetryBackoff:    DefaultRetryBackoff,
		AuthBackoff:     DefaultAuthBackoff,
		ReconfirmWrites: reconfirm,

		RateLimit:  rateLimit,
		RateWindow: rateWindow,

		Logger: func() *logrus.Logger {
			log := logrus.New()
			if level := os.Getenv("LOG_LEVEL"); level != "" {
				if parsedLevel, err := logrus.ParseLevel(level); err == nil {
					log.SetLevel(parsedLevel)
				}
			}
			return log
		}(),
	}

	config.Logger.WithFields(logrus.Fields{
		"client_id_exists": config.ClientID != "",
		"base_url":         config.BaseURL,
		"token_path":       config.TokenPath,
		"retry_attempts":   config.RetryAttempts,
	}).Debug("Tumblr config initialized")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *TumblrConfig) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	c.Logger.Debug("Validating Tumblr configuration")

	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("client id and client secret must be provided")
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.RateWindow < 1 {
		return fmt.Errorf("rate window must be positive")
	}

	// Set defaults for anything left empty
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.TokenEndpoint == "" {
		c.TokenEndpoint = c.BaseURL + "/oauth2/token"
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.TokenPath == "" {
		c.TokenPath = DefaultTokenPath
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.AuthBackoff == 0 {
		c.AuthBackoff = DefaultAuthBackoff
	}

	c.Logger.Debug("Tumblr configuration validation completed successfully")
	return nil
}

// RateInterval is the minimum spacing between two calls
func (c *TumblrConfig) RateInterval() time.Duration {
	return time.Duration(c.RateWindow) * time.Second / time.Duration(c.RateLimit)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
