package corpus

import "fmt"

// InsufficientPostsError is returned when every page has been consumed
// before the sample reached its target size.
type InsufficientPostsError struct {
	Blog     string
	Wanted   int
	Accepted int
}

func (e *InsufficientPostsError) Error() string {
	return fmt.Sprintf("not enough posts found for source blog %s: wanted %d, accepted %d", e.Blog, e.Wanted, e.Accepted)
}
