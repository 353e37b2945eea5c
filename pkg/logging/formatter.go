package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// DefaultPriorityFields are printed first, in this order, before the
// remaining fields sorted by name.
var DefaultPriorityFields = []string{"run_id", "action", "blog", "post_id", "error"}

// DefaultHighlightFields are printed in a distinct key color
var DefaultHighlightFields = []string{"action", "blog", "post_id", "error"}

// ColoredJSONFormatter renders one line per entry: time, level, message and
// then the fields as key=value pairs, identifiers first.
type ColoredJSONFormatter struct {
	TimestampFormat string
	// PriorityFields lead the field list in the given order
	PriorityFields []string
	// HighlightFields get the highlight key color
	HighlightFields []string
	// Disable colors when not in terminal
	DisableColors bool
}

func NewColoredJSONFormatter() *ColoredJSONFormatter {
	return &ColoredJSONFormatter{
		TimestampFormat: time.RFC3339,
		PriorityFields:  DefaultPriorityFields,
		HighlightFields: DefaultHighlightFields,
	}
}

func (f *ColoredJSONFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = time.RFC3339
	}

	levelColor := f.paint(levelColor(entry.Level))
	fmt.Fprintf(b, "%s %s %s",
		f.paint(color.New(color.FgYellow)).Sprint(entry.Time.Format(timestampFormat)),
		levelColor.Sprintf("%-7s", strings.ToUpper(entry.Level.String())),
		levelColor.Sprint(entry.Message),
	)

	keyColor := f.paint(color.New(color.FgCyan))
	highlightColor := f.paint(color.New(color.FgGreen))
	valueColor := f.paint(color.New(color.FgWhite))
	highlight := toSet(f.HighlightFields)

	for _, k := range f.orderKeys(entry.Data) {
		c := keyColor
		if _, ok := highlight[k]; ok {
			c = highlightColor
		}
		b.WriteByte(' ')
		b.WriteString(c.Sprintf("%s=", k))
		b.WriteString(valueColor.Sprint(formatValue(entry.Data[k])))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// orderKeys puts priority fields first and sorts the rest by name
func (f *ColoredJSONFormatter) orderKeys(data logrus.Fields) []string {
	rank := make(map[string]int, len(f.PriorityFields))
	for i, k := range f.PriorityFields {
		rank[k] = i + 1
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank[keys[i]], rank[keys[j]]
		switch {
		case ri != 0 && rj != 0:
			return ri < rj
		case ri != 0 || rj != 0:
			return ri != 0
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case error:
		return fmt.Sprintf("%q", v.Error())
	case fmt.Stringer:
		return fmt.Sprintf("%q", v.String())
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}

func (f *ColoredJSONFormatter) paint(c *color.Color) *color.Color {
	if f.DisableColors {
		c.DisableColor()
	}
	return c
}

func levelColor(level logrus.Level) *color.Color {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return color.New(color.FgBlue)
	case logrus.InfoLevel:
		return color.New(color.FgGreen)
	case logrus.WarnLevel:
		return color.New(color.FgYellow)
	case logrus.ErrorLevel:
		return color.New(color.FgRed)
	case logrus.FatalLevel, logrus.PanicLevel:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
