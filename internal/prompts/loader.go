// Package prompts selects and formats the generation prompt.
package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	langchainprompts "github.com/tmc/langchaingo/prompts"
)

// DefaultTemplate is used when no template file matches the model family
const DefaultTemplate = `You write short blog posts in the voice of the posts below.

{{.context}}

Write one new post in the same voice{{if .mood}}, in a {{.mood}} mood{{end}}.
Do not copy sentences from the examples.
Put the post, and nothing else, between <post> and </post>.`

// InputVariables are the values every template is formatted with
var InputVariables = []string{"context", "mood"}

// Load returns the template for a model family from dir, or the default
// template when dir is empty or holds no file for the family.
func Load(dir, family string) (langchainprompts.PromptTemplate, error) {
	text := DefaultTemplate

	if dir != "" && family != "" {
		data, err := os.ReadFile(filepath.Join(dir, family))
		switch {
		case err == nil:
			text = string(data)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return langchainprompts.PromptTemplate{}, fmt.Errorf("failed to read prompt for %s: %w", family, err)
		}
	}

	return langchainprompts.NewPromptTemplate(text, InputVariables), nil
}

// FormatContext numbers the sample texts the way templates expect them
func FormatContext(texts []string) string {
	parts := make([]string, len(texts))
	for i, text := range texts {
		parts[i] = fmt.Sprintf("POST %d:\n%s", i+1, text)
	}
	return strings.Join(parts, "\n\n")
}
