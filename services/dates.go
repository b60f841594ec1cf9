package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var explicitDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"02.01.2006 15:04",
	"02/01/2006 15:04",
	"2006-01-02",
	"02.01.2006",
}

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseEventDate accepts explicit layouts ("2025-04-12 20:00", "12.04.2025 20:00")
// and natural phrases ("next friday 8pm", "tomorrow at 19:30") relative to now in loc.
// An empty input means the date is not set yet.
func ParseEventDate(input string, now time.Time, loc *time.Location) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range explicitDateLayouts {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}

	r, err := dateParser.Parse(strings.ToLower(input), now.In(loc))
	if err != nil || r == nil {
		return nil, &ValidationError{Fields: map[string]string{
			"date": fmt.Sprintf("could not understand %q, use YYYY-MM-DD HH:MM", input),
		}}
	}
	utc := r.Time.Truncate(time.Minute).UTC()
	return &utc, nil
}
