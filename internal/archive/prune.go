// Package archive cleans a local dump of blog posts down to the ones usable
// as generation context.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/lisanmuaddib/blog-agent/pkg/interfaces/tumblr"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/yargevad/filepathx"
)

const DefaultMinSize = 300

// Reasons a dumped post is removed
const (
	ReasonNoContent = "no_content"
	ReasonReblog    = "reblog"
	ReasonTooShort  = "too_short"
)

type PruneConfig struct {
	// Dir is searched recursively for *.json post dumps
	Dir string
	// MinSize is the shortest text length kept
	MinSize int
	// DryRun reports what would be removed without deleting anything
	DryRun bool
	Logger *logrus.Logger
}

// PruneResult counts what a prune pass did
type PruneResult struct {
	Scanned int
	Kept    int
	Removed map[string]int
}

// TotalRemoved sums the removals over all reasons
func (r *PruneResult) TotalRemoved() int {
	total := 0
	for _, n := range r.Removed {
		total += n
	}
	return total
}

// Prune removes every dumped post that has no content, is a reblog, or whose
// text is shorter than MinSize. Files that cannot be read or parsed are left
// in place and reported in the returned error.
func Prune(config PruneConfig) (*PruneResult, error) {
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}
	if config.MinSize <= 0 {
		config.MinSize = DefaultMinSize
	}

	files, err := filepathx.Glob(filepath.Join(config.Dir, "**", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", config.Dir, err)
	}

	result := &PruneResult{Removed: make(map[string]int)}
	var errs *multierror.Error

	for i, file := range files {
		result.Scanned++
		log := logger.WithFields(logrus.Fields{
			"file":     file,
			"progress": fmt.Sprintf("%d/%d", i+1, len(files)),
		})

		data, err := os.ReadFile(file)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to read %s: %w", file, err))
			continue
		}
		if !gjson.ValidBytes(data) {
			errs = multierror.Append(errs, fmt.Errorf("invalid JSON in %s", file))
			continue
		}

		reason := classify(data, config.MinSize)
		if reason == "" {
			result.Kept++
			log.Debug("Keeping post")
			continue
		}

		log.WithField("reason", reason).Info("Removing post")
		if !config.DryRun {
			if err := os.Remove(file); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("failed to remove %s: %w", file, err))
				continue
			}
		}
		result.Removed[reason]++
	}

	logger.WithFields(logrus.Fields{
		"dir":     config.Dir,
		"scanned": result.Scanned,
		"kept":    result.Kept,
		"removed": result.TotalRemoved(),
		"dry_run": config.DryRun,
	}).Info("Prune complete")

	return result, errs.ErrorOrNil()
}

// classify returns the removal reason for a dumped post, or "" to keep it
func classify(data []byte, minSize int) string {
	doc := gjson.ParseBytes(data)

	content := doc.Get("content")
	if !content.Exists() {
		return ReasonNoContent
	}
	if doc.Get("trail.#").Int() > 0 {
		return ReasonReblog
	}

	var parts []string
	content.ForEach(func(_, block gjson.Result) bool {
		if block.Get("type").String() != tumblr.ContentTypeText {
			return true
		}
		if text := block.Get("text").String(); text != "" {
			parts = append(parts, text)
		}
		return true
	})

	if utf8.RuneCountInString(strings.Join(parts, "\n\n")) < minSize {
		return ReasonTooShort
	}
	return ""
}
