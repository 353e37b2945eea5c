package tumblr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TokenFreshnessMargin is how long past its nominal expiry a token is still used
const TokenFreshnessMargin = 30 * time.Second

// Token is the OAuth2 token record persisted between runs
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RequestedAt  int64  `json:"requested_at"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// Fresh reports whether requested_at + expires_in >= now - 30s
func (t *Token) Fresh(now time.Time) bool {
	if t == nil {
		return false
	}
	return t.RequestedAt+t.ExpiresIn >= now.Unix()-int64(TokenFreshnessMargin/time.Second)
}

// TokenStore persists a single token record as a JSON file. Writes replace
// the whole file and there is no locking between processes.
type TokenStore struct {
	path string
}

// NewTokenStore returns a store backed by the file at path
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Path returns the backing file
func (s *TokenStore) Path() string {
	return s.path
}

// Load reads the stored token
func (s *TokenStore) Load() (*Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token file %s has no access token", s.path)
	}

	return &token, nil
}

// Save overwrites the stored token
func (s *TokenStore) Save(token *Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
