// Package corpus samples a fixed number of usable posts from a blog's paged
// listing while fetching as few pages as possible.
package corpus

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/lisanmuaddib/blog-agent/pkg/interfaces/tumblr"
	"github.com/sirupsen/logrus"
)

// PageFetcher returns the posts of one listing page
type PageFetcher interface {
	GetPosts(ctx context.Context, blog string, offset int) ([]tumblr.Post, error)
}

// Filters decide which posts may enter the sample
type Filters struct {
	// SkipAsks rejects answers to questions
	SkipAsks bool
	// SkipTags rejects posts carrying any of these tags
	SkipTags []string
	// MinSize is the length the post text must strictly exceed
	MinSize int
}

type rejection string

const (
	rejectNoText    rejection = "no_text"
	rejectAsk       rejection = "ask"
	rejectTag       rejection = "skip_tag"
	rejectTooShort  rejection = "too_short"
	rejectDuplicate rejection = "duplicate"
)

// page is a fetched listing page and the posts not yet evaluated
type page struct {
	offset    int
	remaining []tumblr.Post
}

type Sampler struct {
	fetcher PageFetcher
	rng     *rand.Rand
	logger  *logrus.Logger
}

// SamplerOption configures a Sampler
type SamplerOption func(*Sampler)

// WithRand sets the random source used for page order and post picks
func WithRand(rng *rand.Rand) SamplerOption {
	return func(s *Sampler) {
		s.rng = rng
	}
}

func NewSampler(fetcher PageFetcher, logger *logrus.Logger, opts ...SamplerOption) *Sampler {
	if logger == nil {
		logger = logrus.New()
	}

	s := &Sampler{
		fetcher: fetcher,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sample collects targetSize accepted posts from blog, whose listing holds
// totalPosts posts.
//
// Pages are fetched in random order, one new page per evaluated post, until
// none are left; afterwards the fetched pages are visited round-robin. Every
// post is evaluated at most once, so the loop ends either with a full sample
// or with an InsufficientPostsError once all pages are drained.
func (s *Sampler) Sample(ctx context.Context, blog string, totalPosts, targetSize int, filters Filters) (*ContextSet, error) {
	log := s.logger.WithFields(logrus.Fields{
		"blog":        blog,
		"total_posts": totalPosts,
		"target_size": targetSize,
	})

	offsets := pageOffsets(totalPosts)
	s.rng.Shuffle(len(offsets), func(i, j int) {
		offsets[i], offsets[j] = offsets[j], offsets[i]
	})

	skipTags := make(map[string]struct{}, len(filters.SkipTags))
	for _, tag := range filters.SkipTags {
		skipTags[tag] = struct{}{}
	}

	set := newContextSet(targetSize)
	var (
		pool      []*page
		cursor    int
		fetched   int
		evaluated int
	)

	for set.Len() < targetSize {
		var current *page

		switch {
		case len(offsets) > 0:
			offset := offsets[0]
			offsets = offsets[1:]

			posts, err := s.fetcher.GetPosts(ctx, blog, offset)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch page at offset %d: %w", offset, err)
			}
			fetched++

			current = &page{
				offset:    offset,
				remaining: append([]tumblr.Post(nil), posts...),
			}
			pool = append(pool, current)

		case len(pool) > 0:
			i := cursor % len(pool)
			cursor++
			if len(pool[i].remaining) == 0 {
				// cursor already advanced, so the page after a dropped one is skipped this round
				pool = append(pool[:i], pool[i+1:]...)
				continue
			}
			current = pool[i]

		default:
			log.WithFields(logrus.Fields{
				"accepted":      set.Len(),
				"pages_fetched": fetched,
				"evaluated":     evaluated,
			}).Warn("Source exhausted before the sample was complete")
			return nil, &InsufficientPostsError{Blog: blog, Wanted: targetSize, Accepted: set.Len()}
		}

		if len(current.remaining) == 0 {
			continue
		}

		k := s.rng.IntN(len(current.remaining))
		post := current.remaining[k]
		current.remaining = append(current.remaining[:k], current.remaining[k+1:]...)
		evaluated++

		text, reason := evaluate(post, filters, skipTags, set)
		if reason != "" {
			log.WithFields(logrus.Fields{
				"post_id": post.ID,
				"offset":  current.offset,
				"reason":  reason,
			}).Debug("Post rejected")
			continue
		}

		set.add(post.ID, text, post.URL)
		log.WithFields(logrus.Fields{
			"post_id":  post.ID,
			"offset":   current.offset,
			"accepted": set.Len(),
		}).Debug("Post accepted")
	}

	log.WithFields(logrus.Fields{
		"pages_fetched": fetched,
		"evaluated":     evaluated,
	}).Info("Corpus sample complete")

	return set, nil
}

// evaluate applies the filters in order and returns the post text when accepted
func evaluate(post tumblr.Post, filters Filters, skipTags map[string]struct{}, set *ContextSet) (string, rejection) {
	if set.Has(post.ID) {
		return "", rejectDuplicate
	}

	text := post.Text()
	if len(post.Content) == 0 || text == "" {
		return "", rejectNoText
	}
	if filters.SkipAsks && post.IsAsk() {
		return "", rejectAsk
	}
	if len(skipTags) > 0 && post.HasTag(skipTags) {
		return "", rejectTag
	}
	if utf8.RuneCountInString(text) <= filters.MinSize {
		return "", rejectTooShort
	}

	return text, ""
}

// pageOffsets lists the start offset of every page covering totalPosts
func pageOffsets(totalPosts int) []int {
	if totalPosts <= 0 {
		return nil
	}

	pages := (totalPosts + tumblr.PageSize - 1) / tumblr.PageSize
	offsets := make([]int, pages)
	for i := range offsets {
		offsets[i] = i * tumblr.PageSize
	}
	return offsets
}
