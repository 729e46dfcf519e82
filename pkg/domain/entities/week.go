package entities

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	canonicalWeekPattern = regexp.MustCompile(`^W(\d{1,2})-(\d{2}|\d{4})$`)
	dottedWeekPattern    = regexp.MustCompile(`^(\d{1,2})\.(\d{4})$`)
	weekTokenPattern     = regexp.MustCompile(`W(\d{2})-(\d{2})`)
)

// WeekCode identifies a planning week. Years are stored with four digits and
// limited to 2000-2099 so the two-digit canonical form round-trips.
type WeekCode struct {
	Week int
	Year int
}

// NewWeekCode creates a validated WeekCode. Two-digit years are read as 20yy.
func NewWeekCode(week, year int) (WeekCode, error) {
	if year >= 0 && year < 100 {
		year += 2000
	}
	if week < 1 || week > 53 {
		return WeekCode{}, fmt.Errorf("week number must be between 1 and 53, got %d", week)
	}
	if year < 2000 || year > 2099 {
		return WeekCode{}, fmt.Errorf("year must be between 2000 and 2099, got %d", year)
	}
	return WeekCode{Week: week, Year: year}, nil
}

// ParseWeekCode accepts "W05-24" (canonical), "W05-2024" and the ingestion-only
// dotted form "05.2024".
func ParseWeekCode(s string) (WeekCode, error) {
	s = strings.TrimSpace(s)
	if m := canonicalWeekPattern.FindStringSubmatch(s); m != nil {
		week, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return NewWeekCode(week, year)
	}
	if m := dottedWeekPattern.FindStringSubmatch(s); m != nil {
		week, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return NewWeekCode(week, year)
	}
	return WeekCode{}, fmt.Errorf("invalid week code %q (expected Www-yy or ww.yyyy)", s)
}

// String returns the canonical "W<ww>-<yy>" form.
func (w WeekCode) String() string {
	return fmt.Sprintf("W%02d-%02d", w.Week, w.Year%100)
}

// Compare orders weeks chronologically: -1, 0 or +1.
func (w WeekCode) Compare(other WeekCode) int {
	switch {
	case w.Year < other.Year:
		return -1
	case w.Year > other.Year:
		return 1
	case w.Week < other.Week:
		return -1
	case w.Week > other.Week:
		return 1
	default:
		return 0
	}
}

// Before reports whether w is chronologically earlier than other.
func (w WeekCode) Before(other WeekCode) bool {
	return w.Compare(other) < 0
}

// Monday returns the first day of the ISO week.
func (w WeekCode) Monday() time.Time {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := int(jan4.Weekday())
	if offset == 0 {
		offset = 7
	}
	firstMonday := jan4.AddDate(0, 0, 1-offset)
	return firstMonday.AddDate(0, 0, 7*(w.Week-1))
}

// ParseWeekToken finds the "W<ww>-<yy>" token in an extract identifier such as
// "YPPMPL W10-24.xlsx". Only the base name is searched.
func ParseWeekToken(identifier string) (string, WeekCode, error) {
	base := filepath.Base(identifier)
	m := weekTokenPattern.FindStringSubmatch(base)
	if m == nil {
		return "", WeekCode{}, &UnparsableWeekTokenError{Identifier: identifier}
	}
	week, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	code, err := NewWeekCode(week, year)
	if err != nil {
		return "", WeekCode{}, &UnparsableWeekTokenError{Identifier: identifier, Err: err}
	}
	return m[0], code, nil
}

// NormalizeWeekLabel converts a dotted "ww.yyyy" week into "Www-yy" and passes
// every other value through unchanged. Years that lost trailing zeros on a
// numeric round trip ("10.202") are padded back to four digits first.
func NormalizeWeekLabel(raw string) string {
	if !strings.Contains(raw, ".") {
		return raw
	}
	parts := strings.Split(strings.TrimSpace(raw), ".")
	week := parts[0]
	for len(week) < 2 {
		week = "0" + week
	}
	year := parts[1]
	if len(year) > 0 && len(year) < 4 {
		year += strings.Repeat("0", 4-len(year))
	}
	if len(year) > 2 {
		year = year[len(year)-2:]
	}
	return "W" + week + "-" + year
}

// CompareWeekLabels orders two week labels chronologically when both parse
// and falls back to string order otherwise.
func CompareWeekLabels(a, b string) int {
	wa, errA := ParseWeekCode(a)
	wb, errB := ParseWeekCode(b)
	if errA == nil && errB == nil {
		if c := wa.Compare(wb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}
