// Package timeframe turns free-text time expressions into a date window and
// a bar interval.
package timeframe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"equity-analyst/internal/types"
)

// DateLayout is the wire format for window dates.
const DateLayout = "2006-01-02"

// DefaultMonths is the lookback used when nothing else is given.
const DefaultMonths = 6

var (
	fromToRe  = regexp.MustCompile(`\b(?:(?:from|between)\s+)?(\d{4}-\d{2}-\d{2})\s*(?:to|and|until|through|-|–)\s*(\d{4}-\d{2}-\d{2})\b`)
	sinceRe   = regexp.MustCompile(`\b(?:since|from)\s+(\d{4}-\d{2}-\d{2})\b`)
	untilRe   = regexp.MustCompile(`\b(?:until|through|till)\s+(\d{4}-\d{2}-\d{2})\b`)
	ytdRe     = regexp.MustCompile(`\b(?:ytd|year\s+to\s+date)\b`)
	relRe     = regexp.MustCompile(`\b(?:last|past)\s+(?:(\d{1,3})\s*)?(days?|weeks?|months?|years?)\b`)
	compactRe = regexp.MustCompile(`\b(1d|5d|1w|1m|3m|6m|9m|1y|2y|3y|5y)\b`)
)

type offset struct {
	days, months int
}

var compactOffsets = map[string]offset{
	"1d": {days: 1},
	"5d": {days: 5},
	"1w": {days: 7},
	"1m": {months: 1},
	"3m": {months: 3},
	"6m": {months: 6},
	"9m": {months: 9},
	"1y": {months: 12},
	"2y": {months: 24},
	"3y": {months: 36},
	"5y": {months: 60},
}

// Window is a resolved date range.
type Window struct {
	Start    time.Time
	End      time.Time
	Interval types.Interval
}

// StartString formats the start date.
func (w Window) StartString() string { return w.Start.Format(DateLayout) }

// EndString formats the end date.
func (w Window) EndString() string { return w.End.Format(DateLayout) }

// Days is the window length in whole days.
func (w Window) Days() int { return int(w.End.Sub(w.Start).Hours() / 24) }

// ParseAnchor parses a YYYY-MM-DD anchor. An empty string yields the zero
// time, which Resolve treats as today.
func ParseAnchor(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid anchor date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Resolve reads the first matching time expression in text. Absolute
// ranges win over year-to-date, which wins over relative phrases, which win
// over compact tokens. With no match the window is the six months before the
// anchor. A zero anchor means today.
func Resolve(text string, anchor time.Time) Window {
	if anchor.IsZero() {
		anchor = time.Now()
	}
	today := midnight(anchor)
	lower := strings.ToLower(strings.TrimSpace(text))

	var start, end *time.Time
	switch {
	case matchAbsolute(lower, &start, &end):
	case ytdRe.MatchString(lower):
		s := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		start, end = &s, &today
	case matchRelative(lower, today, &start, &end):
	case matchCompact(lower, today, &start, &end):
	}

	if end == nil {
		end = &today
	}
	if start == nil {
		s := AddMonths(*end, -DefaultMonths)
		start = &s
	}
	s, e := *start, *end
	if s.After(e) {
		s, e = e, s
	}

	w := Window{Start: s, End: e}
	w.Interval = IntervalFor(w.Days())
	return w
}

// IntervalFor picks the bar spacing for a window of the given length.
func IntervalFor(days int) types.Interval {
	switch {
	case days > 365*5:
		return types.Monthly
	case days > 365*2:
		return types.Weekly
	default:
		return types.Daily
	}
}

func matchAbsolute(text string, start, end **time.Time) bool {
	if m := fromToRe.FindStringSubmatch(text); m != nil {
		s, okS := parseDate(m[1])
		e, okE := parseDate(m[2])
		if okS {
			*start = &s
		}
		if okE {
			*end = &e
		}
		return okS || okE
	}
	if m := sinceRe.FindStringSubmatch(text); m != nil {
		if s, ok := parseDate(m[1]); ok {
			*start = &s
			return true
		}
	}
	if m := untilRe.FindStringSubmatch(text); m != nil {
		if e, ok := parseDate(m[1]); ok {
			*end = &e
			return true
		}
	}
	return false
}

func matchRelative(text string, today time.Time, start, end **time.Time) bool {
	m := relRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	n := 1
	if m[1] != "" {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return false
		}
		n = v
	}
	var s time.Time
	switch unit := strings.TrimSuffix(m[2], "s"); unit {
	case "day":
		s = today.AddDate(0, 0, -n)
	case "week":
		s = today.AddDate(0, 0, -7*n)
	case "month":
		s = AddMonths(today, -n)
	case "year":
		s = AddMonths(today, -12*n)
	}
	*start, *end = &s, &today
	return true
}

func matchCompact(text string, today time.Time, start, end **time.Time) bool {
	m := compactRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	off := compactOffsets[m[1]]
	s := AddMonths(today, -off.months).AddDate(0, 0, -off.days)
	*start, *end = &s, &today
	return true
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts by whole months, clamping the day to the target month's
// length (Mar 31 - 1 month = Feb 28 or 29).
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
