package actions_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lisanmuaddib/blog-agent/pkg/corpus"
	"github.com/lisanmuaddib/blog-agent/pkg/interfaces/tumblr"
	"github.com/lisanmuaddib/blog-agent/pkg/thoughts"
	. "github.com/onsi/ginkgo/v2"
	"github.com/sirupsen/logrus"
)

// fakeBlog serves a single page of long text posts and records created posts
type fakeBlog struct {
	posts     []tumblr.Post
	userErr   error
	createErr error
	created   []tumblr.CreatePostRequest
	calls     []string
}

func newFakeBlog(n int) *fakeBlog {
	blog := &fakeBlog{}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("%d", 1000+i)
		blog.posts = append(blog.posts, tumblr.Post{
			ID:  id,
			URL: "https://source.example.com/post/" + id,
			Content: []tumblr.ContentBlock{{
				Type: tumblr.ContentTypeText,
				Text: strings.Repeat("word ", 100),
			}},
		})
	}
	return blog
}

func (f *fakeBlog) GetUserInfo(context.Context) (*tumblr.UserInfo, error) {
	f.calls = append(f.calls, "user_info")
	if f.userErr != nil {
		return nil, f.userErr
	}
	info := &tumblr.UserInfo{}
	info.User.Name = "writer"
	return info, nil
}

func (f *fakeBlog) GetBlogInfo(_ context.Context, blog string) (*tumblr.Blog, error) {
	f.calls = append(f.calls, "blog_info:"+blog)
	return &tumblr.Blog{Name: blog, Posts: len(f.posts)}, nil
}

func (f *fakeBlog) GetPosts(_ context.Context, _ string, offset int) ([]tumblr.Post, error) {
	f.calls = append(f.calls, fmt.Sprintf("posts:%d", offset))
	end := min(offset+tumblr.PageSize, len(f.posts))
	return f.posts[offset:end], nil
}

func (f *fakeBlog) CreatePost(_ context.Context, blog string, request tumblr.CreatePostRequest) (*tumblr.CreatedPost, error) {
	f.calls = append(f.calls, "create:"+blog)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, request)
	return &tumblr.CreatedPost{ID: "9001"}, nil
}

// fakeGenerator returns a fixed post and records the config it was given
type fakeGenerator struct {
	post    *thoughts.BlogPost
	err     error
	configs []thoughts.BlogPostConfig
}

func (g *fakeGenerator) GenerateBlogPost(_ context.Context, config thoughts.BlogPostConfig) (*thoughts.BlogPost, error) {
	g.configs = append(g.configs, config)
	if g.err != nil {
		return nil, g.err
	}
	post := *g.post
	post.Model = config.Model
	post.TopP = config.TopP
	return &post, nil
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(GinkgoWriter)
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

func newTestSampler(blog *fakeBlog) *corpus.Sampler {
	return corpus.NewSampler(blog, newTestLogger(), corpus.WithRand(rand.New(rand.NewPCG(1, 2))))
}

// sampleAll draws every post of blog into a context set
func sampleAll(blog *fakeBlog) *corpus.ContextSet {
	set, err := newTestSampler(blog).Sample(context.Background(), "source", len(blog.posts), len(blog.posts), corpus.Filters{})
	if err != nil {
		Fail(err.Error())
	}
	return set
}
