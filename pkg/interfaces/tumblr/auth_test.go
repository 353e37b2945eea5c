package tumblr_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/lisanmuaddib/blog-agent/pkg/interfaces/tumblr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// tokenEndpoint is a fake OAuth2 token endpoint recording every exchange
type tokenEndpoint struct {
	mu       sync.Mutex
	requests []url.Values
	status   int
	body     string
}

func (e *tokenEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	e.mu.Lock()
	e.requests = append(e.requests, r.PostForm)
	status, body := e.status, e.body
	e.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (e *tokenEndpoint) Requests() []url.Values {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]url.Values{}, e.requests...)
}

var _ = Describe("Authenticator", func() {
	var (
		endpoint  *tokenEndpoint
		server    *httptest.Server
		config    *tumblr.TumblrConfig
		tokenPath string
		ctx       context.Context
	)

	BeforeEach(func() {
		endpoint = &tokenEndpoint{
			status: http.StatusOK,
			body:   `{"access_token":"a","token_type":"bearer","expires_in":3600,"refresh_token":"r","scope":"s"}`,
		}
		mux := http.NewServeMux()
		mux.Handle("/oauth2/token", endpoint)
		server = httptest.NewServer(mux)

		tokenPath = filepath.Join(GinkgoT().TempDir(), "token.json")
		config = newTestConfig(server.URL, tokenPath)
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	Context("when no token file exists", func() {
		It("performs the authorization code grant and persists the token", func() {
			auth := tumblr.NewAuthenticator(config, tumblr.WithNowFunc(fixedClock))

			token, err := auth.Token(ctx)
			Expect(err).NotTo(HaveOccurred())

			expected := &tumblr.Token{
				AccessToken:  "a",
				TokenType:    "bearer",
				RequestedAt:  testNow.Unix(),
				ExpiresIn:    3600,
				RefreshToken: "r",
				Scope:        "s",
			}
			Expect(token).To(Equal(expected))

			requests := endpoint.Requests()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Get("grant_type")).To(Equal("authorization_code"))
			Expect(requests[0].Get("code")).To(Equal("auth-code"))
			Expect(requests[0].Get("redirect_uri")).To(Equal("https://example.com/callback"))
			Expect(requests[0].Get("client_id")).To(Equal("client-id"))
			Expect(requests[0].Get("client_secret")).To(Equal("client-secret"))

			persisted, err := tumblr.NewTokenStore(tokenPath).Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(persisted).To(Equal(expected))
		})

		It("fails without a network call when no authorization code is configured", func() {
			config.Code = ""
			auth := tumblr.NewAuthenticator(config, tumblr.WithNowFunc(fixedClock))

			_, err := auth.Token(ctx)
			Expect(tumblr.IsAuthError(err)).To(BeTrue())
			Expect(endpoint.Requests()).To(BeEmpty())
		})
	})

	Context("when a fresh token is cached", func() {
		BeforeEach(func() {
			Expect(tumblr.NewTokenStore(tokenPath).Save(&tumblr.Token{
				AccessToken:  "cached",
				TokenType:    "bearer",
				RequestedAt:  testNow.Unix() - 600,
				ExpiresIn:    3600,
				RefreshToken: "cached-refresh",
			})).To(Succeed())
		})

		It("returns it without any exchange", func() {
			auth := tumblr.NewAuthenticator(config, tumblr.WithNowFunc(fixedClock))

			for i := 0; i < 3; i++ {
				token, err := auth.Token(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(token.AccessToken).To(Equal("cached"))
			}
			Expect(endpoint.Requests()).To(BeEmpty())
		})

		It("refreshes after being invalidated", func() {
			auth := tumblr.NewAuthenticator(config, tumblr.WithNowFunc(fixedClock))
			_, err := auth.Token(ctx)
			Expect(err).NotTo(HaveOccurred())

			auth.Invalidate()

			token, err := auth.Token(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(token.AccessToken).To(Equal("a"))

			requests := endpoint.Requests()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Get("grant_type")).To(Equal("refresh_token"))
		})
	})

	Context("when the cached token is stale", func() {
		BeforeEach(func() {
			Expect(tumblr.NewTokenStore(tokenPath).Save(&tumblr.Token{
				AccessToken:  "old",
				TokenType:    "bearer",
				RequestedAt:  testNow.Unix() - 7200,
				ExpiresIn:    3600,
				RefreshToken: "old-refresh",
			})).To(Succeed())
		})

		It("performs exactly one refresh exchange stamped with the exchange time", func() {
			exchangeTime := testNow.Add(5 * time.Minute)
			calls := 0
			clock := func() time.Time {
				calls++
				if calls == 1 {
					return testNow
				}
				return exchangeTime
			}
			auth := tumblr.NewAuthenticator(config, tumblr.WithNowFunc(clock))

			token, err := auth.Token(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(token.AccessToken).To(Equal("a"))
			Expect(token.RequestedAt).To(Equal(exchangeTime.Unix()))

			requests := endpoint.Requests()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Get("grant_type")).To(Equal("refresh_token"))
			Expect(requests[0].Get("refresh_token")).To(Equal("old-refresh"))
			Expect(requests[0].Get("client_id")).To(Equal("client-id"))
		})

		It("returns an AuthError without retrying on a non-200 response", func() {
			endpoint.status = http.StatusBadRequest
			endpoint.body = `{"error":"invalid_grant"}`
			auth := tumblr.NewAuthenticator(config, tumblr.WithNowFunc(fixedClock))

			_, err := auth.Token(ctx)
			Expect(tumblr.IsAuthError(err)).To(BeTrue())
			Expect(endpoint.Requests()).To(HaveLen(1))
		})

		It("returns an AuthError on an empty response body", func() {
			endpoint.body = ""
			auth := tumblr.NewAuthenticator(config, tumblr.WithNowFunc(fixedClock))

			_, err := auth.Token(ctx)
			Expect(tumblr.IsAuthError(err)).To(BeTrue())
		})
	})
})
