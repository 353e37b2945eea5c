package actions_test

import (
	"context"
	"errors"
	"strings"

	"github.com/lisanmuaddib/blog-agent/internal/prompts"
	"github.com/lisanmuaddib/blog-agent/pkg/actions"
	"github.com/lisanmuaddib/blog-agent/pkg/corpus"
	"github.com/lisanmuaddib/blog-agent/pkg/thoughts"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("GeneratePostAction", func() {
	var (
		blog      *fakeBlog
		generator *fakeGenerator
		config    actions.GeneratePostConfig
	)

	newAction := func() *actions.GeneratePostAction {
		return actions.NewGeneratePostAction(blog, newTestSampler(blog), generator, config, newTestLogger())
	}

	BeforeEach(func() {
		template, err := prompts.Load("", "")
		Expect(err).NotTo(HaveOccurred())

		blog = newFakeBlog(30)
		generator = &fakeGenerator{post: &thoughts.BlogPost{ID: "generated", Content: "a fresh post", Attempts: 1}}
		config = actions.GeneratePostConfig{
			Source:   "source",
			Blog:     "target",
			Model:    "mistral:7b",
			Filters:  corpus.Filters{MinSize: 300},
			Template: template,
		}
	})

	It("checks credentials, samples, generates and publishes in order", func() {
		action := newAction()
		Expect(action.Name()).To(Equal("generate_post"))

		Expect(action.Execute(context.Background())).To(Succeed())

		Expect(blog.calls[0]).To(Equal("user_info"))
		Expect(blog.calls[1]).To(Equal("blog_info:source"))
		Expect(blog.calls[len(blog.calls)-1]).To(Equal("create:target"))

		Expect(generator.configs).To(HaveLen(1))
		Expect(generator.configs[0].Model).To(Equal("mistral:7b"))
		Expect(generator.configs[0].TopP).To(Equal(actions.DefaultTopP))
		Expect(strings.Count(generator.configs[0].Context, "POST ")).To(Equal(actions.DefaultContextSize))

		Expect(blog.created).To(HaveLen(1))
		Expect(blog.created[0].Content[0].Text).To(Equal("a fresh post"))
		Expect(blog.created[0].Content).To(HaveLen(1 + actions.DefaultContextSize))
		Expect(action.Result().ID).To(Equal("9001"))
	})

	It("publishes to the source blog when no target is set", func() {
		config.Blog = ""
		Expect(newAction().Execute(context.Background())).To(Succeed())
		Expect(blog.calls[len(blog.calls)-1]).To(Equal("create:source"))
	})

	It("stops before sampling when the credential check fails", func() {
		blog.userErr = errors.New("unauthorized")

		err := newAction().Execute(context.Background())
		Expect(err).To(MatchError(ContainSubstring("unauthorized")))
		Expect(blog.calls).To(Equal([]string{"user_info"}))
		Expect(generator.configs).To(BeEmpty())
	})

	It("ends without publishing when the source has too few usable posts", func() {
		config.ContextSize = 31

		err := newAction().Execute(context.Background())
		var insufficient *corpus.InsufficientPostsError
		Expect(errors.As(err, &insufficient)).To(BeTrue())
		Expect(generator.configs).To(BeEmpty())
		Expect(blog.created).To(BeEmpty())
	})

	It("ends without publishing when generation fails", func() {
		generator.err = &thoughts.GenerationParseError{Attempts: 5}

		err := newAction().Execute(context.Background())
		var parseErr *thoughts.GenerationParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
		Expect(blog.created).To(BeEmpty())
	})

	It("formats but does not submit on a dry run", func() {
		config.DryRun = true
		action := newAction()

		Expect(action.Execute(context.Background())).To(Succeed())
		Expect(blog.created).To(BeEmpty())
		Expect(action.Result()).To(BeNil())
	})

	It("can be stopped more than once", func() {
		action := newAction()
		action.Stop()
		action.Stop()
	})
})
