package tumblr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

// Authenticator owns the process' OAuth2 token. It loads the cached record at
// most once, hands it out while fresh, and otherwise performs exactly one
// token exchange per call without retrying it.
type Authenticator struct {
	mu sync.Mutex

	oauth      *oauth2.Config
	code       string
	store      *TokenStore
	httpClient *http.Client
	logger     *logrus.Logger

	token       *Token
	loaded      bool
	invalidated bool

	nowFunc func() time.Time
}

// AuthenticatorOption configures an Authenticator
type AuthenticatorOption func(*Authenticator)

// WithNowFunc sets a custom clock, used by tests
func WithNowFunc(fn func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) {
		a.nowFunc = fn
	}
}

// WithTokenHTTPClient sets the HTTP client used for token exchanges
func WithTokenHTTPClient(client *http.Client) AuthenticatorOption {
	return func(a *Authenticator) {
		a.httpClient = client
	}
}

func NewAuthenticator(config *TumblrConfig, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURI,
			Endpoint: oauth2.Endpoint{
				TokenURL:  config.TokenEndpoint,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		code:  config.Code,
		store: NewTokenStore(config.TokenPath),
		httpClient: &http.Client{
			Timeout:   config.RequestTimeout,
			Transport: newUserAgentTransport(config.UserAgent, nil),
		},
		logger:  config.Logger,
		nowFunc: time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Token returns a usable token, exchanging credentials with the token
// endpoint when none is held or the held one is stale.
func (a *Authenticator) Token(ctx context.Context) (*Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == nil && !a.loaded {
		a.loaded = true
		token, err := a.store.Load()
		if err != nil {
			a.logger.WithError(err).WithField("token_path", a.store.Path()).Debug("No usable cached token")
		} else {
			a.token = token
		}
	}

	now := a.nowFunc()
	if a.token != nil && !a.invalidated && a.token.Fresh(now) {
		held := *a.token
		return &held, nil
	}

	var (
		exchanged *oauth2.Token
		grant     string
		err       error
	)
	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	if a.token == nil {
		grant = GrantAuthorizationCode
		if a.code == "" {
			return nil, &AuthError{GrantType: grant, Err: errors.New("no authorization code configured")}
		}
		a.logger.Info("No token available, requesting authorization")
		exchanged, err = a.oauth.Exchange(exchangeCtx, a.code)
	} else {
		grant = GrantRefreshToken
		a.logger.WithFields(logrus.Fields{
			"requested_at": a.token.RequestedAt,
			"expires_in":   a.token.ExpiresIn,
			"invalidated":  a.invalidated,
		}).Warn("Token expired, refreshing")
		exchanged, err = a.oauth.TokenSource(exchangeCtx, &oauth2.Token{RefreshToken: a.token.RefreshToken}).Token()
	}
	if err != nil {
		a.logger.WithError(err).WithField("grant_type", grant).Error("Token exchange failed")
		return nil, &AuthError{GrantType: grant, Err: err}
	}

	a.token = fromOAuth2Token(exchanged, a.nowFunc())
	a.invalidated = false

	if err := a.store.Save(a.token); err != nil {
		a.logger.WithError(err).WithField("token_path", a.store.Path()).Warn("Failed to persist token")
	}

	a.logger.WithFields(logrus.Fields{
		"grant_type": grant,
		"expires_in": a.token.ExpiresIn,
		"scope":      a.token.Scope,
	}).Debug("Token exchange completed")

	held := *a.token
	return &held, nil
}

// Invalidate marks the held token unusable so the next Token call refreshes it
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != nil {
		a.invalidated = true
	}
}

func fromOAuth2Token(tok *oauth2.Token, now time.Time) *Token {
	token := &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RequestedAt:  now.Unix(),
		ExpiresIn:    expiresIn(tok, now),
		RefreshToken: tok.RefreshToken,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		token.Scope = scope
	}
	return token
}

// expiresIn prefers the raw expires_in field over the computed expiry,
// which is relative to the library's own clock.
func expiresIn(tok *oauth2.Token, now time.Time) int64 {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if !tok.Expiry.IsZero() {
		return int64(tok.Expiry.Sub(now) / time.Second)
	}
	return 0
}

// userAgentTransport stamps every outgoing request with the configured User-Agent
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func newUserAgentTransport(userAgent string, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &userAgentTransport{userAgent: userAgent, base: base}
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}
