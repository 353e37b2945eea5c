package agent_test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/lisanmuaddib/blog-agent/pkg/agent"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

type stubAction struct {
	name    string
	err     error
	block   bool
	stopped atomic.Int32
	ran     atomic.Int32
	stop    chan struct{}
}

func newStubAction(name string) *stubAction {
	return &stubAction{name: name, stop: make(chan struct{})}
}

func (s *stubAction) Name() string { return s.name }

func (s *stubAction) Execute(ctx context.Context) error {
	s.ran.Add(1)
	if s.block {
		select {
		case <-s.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func (s *stubAction) Stop() {
	if s.stopped.Add(1) == 1 {
		close(s.stop)
	}
}

var _ = Describe("Agent", func() {
	var a *agent.Agent

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetOutput(GinkgoWriter)
		a = agent.New(agent.Config{Logger: logger})
	})

	It("rejects duplicate action names", func() {
		Expect(a.RegisterAction(newStubAction("generate_post"))).To(Succeed())
		Expect(a.RegisterAction(newStubAction("generate_post"))).To(MatchError(ContainSubstring("already registered")))
	})

	It("fails without actions", func() {
		Expect(a.Run(context.Background())).To(HaveOccurred())
	})

	It("returns once every action has completed", func() {
		first, second := newStubAction("first"), newStubAction("second")
		Expect(a.RegisterAction(first)).To(Succeed())
		Expect(a.RegisterAction(second)).To(Succeed())

		Expect(a.Run(context.Background())).To(Succeed())
		Expect(first.ran.Load()).To(BeEquivalentTo(1))
		Expect(second.ran.Load()).To(BeEquivalentTo(1))
	})

	It("stops the remaining actions on the first failure", func() {
		failing := newStubAction("failing")
		failing.err = errors.New("boom")
		waiting := newStubAction("waiting")
		waiting.block = true
		Expect(a.RegisterAction(failing)).To(Succeed())
		Expect(a.RegisterAction(waiting)).To(Succeed())

		err := a.Run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("boom")))
		Expect(errors.Is(err, failing.err)).To(BeTrue())
		Expect(waiting.stopped.Load()).To(BeNumerically(">=", 1))
	})

	It("stops on cancellation", func() {
		waiting := newStubAction("waiting")
		waiting.block = true
		Expect(a.RegisterAction(waiting)).To(Succeed())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(a.Run(ctx)).To(MatchError(context.Canceled))
	})
})
