package tasks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var inDaysRe = regexp.MustCompile(`in (\d+) days?`)

// ParseDate parses an ISO date (YYYY-MM-DD) or datetime
// (YYYY-MM-DDTHH:MM:SS, optional Z). Bare dates resolve to midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &ValidationError{Field: "due_date", Reason: "empty date"}
	}

	if strings.Contains(s, "T") {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return t, nil
		}
	} else if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}

	return time.Time{}, &ValidationError{
		Field:  "due_date",
		Reason: fmt.Sprintf("invalid date %q: use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS", s),
	}
}

// ParseNaturalDate parses relative phrases ("today", "tomorrow", "in 3 days")
// in addition to ISO formats. Relative dates resolve to end of day.
func ParseNaturalDate(s string, now time.Time) (time.Time, error) {
	lowered := strings.ToLower(strings.TrimSpace(s))

	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
	}

	switch {
	case strings.Contains(lowered, "today"):
		return endOfDay(now), nil
	case strings.Contains(lowered, "tomorrow"):
		return endOfDay(now.AddDate(0, 0, 1)), nil
	}

	if m := inDaysRe.FindStringSubmatch(lowered); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil {
			return endOfDay(now.AddDate(0, 0, days)), nil
		}
	}

	return ParseDate(s)
}

// PriorityFromText guesses a priority from free text. Defaults to medium.
func PriorityFromText(s string) Priority {
	lowered := strings.ToLower(s)
	for _, w := range []string{"urgent", "critical", "asap", "important", "high"} {
		if strings.Contains(lowered, w) {
			return PriorityHigh
		}
	}
	for _, w := range []string{"low", "minor", "sometime", "eventually"} {
		if strings.Contains(lowered, w) {
			return PriorityLow
		}
	}
	return PriorityMedium
}

// StatusFromText guesses a status change from free text. Returns "" when no
// status phrase is present.
func StatusFromText(s string) Status {
	lowered := strings.ToLower(s)
	for _, w := range []string{"mark as done", "complete", "finished", "mark done", "set to done"} {
		if strings.Contains(lowered, w) {
			return StatusDone
		}
	}
	for _, w := range []string{"start", "begin", "working on", "in progress", "mark as started"} {
		if strings.Contains(lowered, w) {
			return StatusInProgress
		}
	}
	for _, w := range []string{"pending", "todo", "not started", "mark as pending"} {
		if strings.Contains(lowered, w) {
			return StatusPending
		}
	}
	return ""
}
