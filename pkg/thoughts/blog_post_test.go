package thoughts_test

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/lisanmuaddib/blog-agent/internal/prompts"
	"github.com/lisanmuaddib/blog-agent/pkg/llm"
	"github.com/lisanmuaddib/blog-agent/pkg/thoughts"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

// scriptedLLM replays outputs and records the options of every call
type scriptedLLM struct {
	outputs []string
	err     error
	prompts []string
	options []llm.Options
}

func (s *scriptedLLM) Generate(_ context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.options = append(s.options, llm.Apply(llm.Options{}, opts...))
	if s.err != nil {
		return "", s.err
	}
	output := s.outputs[len(s.outputs)-1]
	if len(s.prompts) <= len(s.outputs) {
		output = s.outputs[len(s.prompts)-1]
	}
	return output, nil
}

var _ = Describe("BlogPostGenerator", func() {
	var (
		model  *scriptedLLM
		config thoughts.BlogPostConfig
	)

	newGenerator := func() thoughts.BlogPostGenerator {
		logger := logrus.New()
		logger.SetOutput(GinkgoWriter)
		return thoughts.NewBlogPostGenerator(model, rand.New(rand.NewPCG(3, 4)), logger)
	}

	BeforeEach(func() {
		template, err := prompts.Load("", "")
		Expect(err).NotTo(HaveOccurred())

		model = &scriptedLLM{}
		config = thoughts.BlogPostConfig{
			Template: template,
			Context:  prompts.FormatContext([]string{"first sample", "second sample"}),
			Mood:     "melancholic",
			Model:    "llama3.1:8b",
			TopP:     0.9,
		}
	})

	It("returns the tagged text of the first parseable output", func() {
		model.outputs = []string{"Sure! <post>\n  line one\nline two  \n</post> hope you like it"}

		post, err := newGenerator().GenerateBlogPost(context.Background(), config)
		Expect(err).NotTo(HaveOccurred())
		Expect(post.Content).To(Equal("line one\nline two"))
		Expect(post.Attempts).To(Equal(1))
		Expect(post.Model).To(Equal("llama3.1:8b"))
		Expect(post.ID).NotTo(BeEmpty())
		Expect(post.Temperature).To(BeNumerically(">=", 0))
		Expect(post.Temperature).To(BeNumerically("<", 2))

		Expect(model.prompts[0]).To(ContainSubstring("POST 2:\nsecond sample"))
		Expect(model.prompts[0]).To(ContainSubstring("melancholic"))
		Expect(model.options[0].TopP).To(Equal(0.9))
		Expect(model.options[0].Temperature).To(Equal(post.Temperature))
	})

	It("retries untagged output with a new temperature", func() {
		model.outputs = []string{"no tags here", "<post>finally</post>"}

		post, err := newGenerator().GenerateBlogPost(context.Background(), config)
		Expect(err).NotTo(HaveOccurred())
		Expect(post.Content).To(Equal("finally"))
		Expect(post.Attempts).To(Equal(2))
		Expect(model.prompts).To(HaveLen(2))
	})

	It("gives up after the maximum number of attempts", func() {
		model.outputs = []string{"never tagged"}
		config.MaxAttempts = 3

		_, err := newGenerator().GenerateBlogPost(context.Background(), config)
		var parseErr *thoughts.GenerationParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
		Expect(parseErr.Attempts).To(Equal(3))
		Expect(model.prompts).To(HaveLen(3))
	})

	It("uses five attempts by default", func() {
		model.outputs = []string{"never tagged"}

		_, err := newGenerator().GenerateBlogPost(context.Background(), config)
		Expect(err).To(HaveOccurred())
		Expect(model.prompts).To(HaveLen(thoughts.DefaultMaxAttempts))
	})

	It("stops on a model failure", func() {
		model.err = errors.New("connection refused")

		_, err := newGenerator().GenerateBlogPost(context.Background(), config)
		Expect(err).To(MatchError(ContainSubstring("connection refused")))
		Expect(model.prompts).To(HaveLen(1))
	})
})

var _ = Describe("ExtractPost", func() {
	It("spans multiple lines and stops at the first closing tag", func() {
		body, ok := thoughts.ExtractPost("<post>a\nb</post><post>c</post>")
		Expect(ok).To(BeTrue())
		Expect(body).To(Equal("a\nb"))
	})

	It("reports untagged output", func() {
		_, ok := thoughts.ExtractPost("<post>unterminated")
		Expect(ok).To(BeFalse())
	})
})
