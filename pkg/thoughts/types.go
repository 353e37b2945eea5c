package thoughts

import (
	"fmt"
	"time"
)

// DefaultMaxAttempts is how many generations are tried before giving up
const DefaultMaxAttempts = 5

// BlogPost is a generated post body together with how it was produced
type BlogPost struct {
	ID          string
	Content     string
	Model       string
	Temperature float64
	TopP        float64
	Elapsed     time.Duration
	Attempts    int
	CreatedAt   time.Time
}

// GenerationParseError reports model output lacking the <post> sentinel tags
type GenerationParseError struct {
	Attempts int
	Output   string
}

func (e *GenerationParseError) Error() string {
	return fmt.Sprintf("no tagged post in model output after %d attempts", e.Attempts)
}
