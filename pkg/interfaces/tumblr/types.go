package tumblr

import (
	"encoding/json"
	"strings"
)

// PageSize is the number of posts returned by one page of the posts listing
const PageSize = 20

// ContentTypeText is the NPF block type carrying plain text
const ContentTypeText = "text"

// Envelope wraps every API response
type Envelope[T any] struct {
	Meta     Meta `json:"meta"`
	Response T    `json:"response"`
}

// Meta carries the status echoed by the API
type Meta struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

// Blog holds the blog metadata returned by the info endpoint
type Blog struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Posts       int    `json:"posts"`
	Followers   int    `json:"followers"`
	Updated     int64  `json:"updated"`
}

// BlogInfo is the payload of GET /blog/{blog}/info
type BlogInfo struct {
	Blog Blog `json:"blog"`
}

// UserInfo is the payload of GET /user/info
type UserInfo struct {
	User struct {
		Name  string `json:"name"`
		Blogs []Blog `json:"blogs"`
	} `json:"user"`
}

// Formatting annotates a range of a text block
type Formatting struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
}

// ContentBlock is one NPF content block. Only text blocks are interpreted,
// other block types round-trip through Text and Formatting as empty values.
type ContentBlock struct {
	Type       string       `json:"type"`
	Text       string       `json:"text,omitempty"`
	Formatting []Formatting `json:"formatting,omitempty"`
}

// Post is one item of a blog's posts listing
type Post struct {
	ID         string            `json:"id_string"`
	URL        string            `json:"post_url"`
	Timestamp  int64             `json:"timestamp"`
	Tags       []string          `json:"tags"`
	AskingName string            `json:"asking_name,omitempty"`
	Content    []ContentBlock    `json:"content"`
	Trail      []json.RawMessage `json:"trail,omitempty"`
}

// Posts is the payload of GET /blog/{blog}/posts
type Posts struct {
	TotalPosts int    `json:"total_posts"`
	Posts      []Post `json:"posts"`
}

// IsAsk reports whether the post answers a question from another user
func (p Post) IsAsk() bool {
	return p.AskingName != ""
}

// HasTag reports whether any of the post's tags is in the given set
func (p Post) HasTag(tags map[string]struct{}) bool {
	for _, tag := range p.Tags {
		if _, ok := tags[tag]; ok {
			return true
		}
	}
	return false
}

// Text joins the non-empty text blocks of the post with blank lines
func (p Post) Text() string {
	parts := make([]string, 0, len(p.Content))
	for _, block := range p.Content {
		if block.Type != ContentTypeText || block.Text == "" {
			continue
		}
		parts = append(parts, block.Text)
	}
	return strings.Join(parts, "\n\n")
}

// CreatePostRequest is the body of POST /blog/{blog}/posts
type CreatePostRequest struct {
	Content []ContentBlock `json:"content"`
	Tags    string         `json:"tags"`
}

// CreatedPost is the payload returned after a post is created
type CreatedPost struct {
	ID string `json:"id_string"`
}
