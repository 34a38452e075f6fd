package registration

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrBadDate = errors.New("unparseable birth date")
	ErrBadTime = errors.New("unparseable birth time")
)

var birthDateLayouts = []string{"02.01.2006", "02/01/2006", "02-01-2006", "2006-01-02"}

var birthTimeLayouts = []string{"15:04", "15.04", "15-04"}

// unknownTimeAnswers are accepted in place of an exact birth time.
var unknownTimeAnswers = map[string]bool{
	"не знаю":    true,
	"незнаю":     true,
	"нет":        true,
	"неизвестно": true,
	"skip":       true,
	"-":          true,
}

// ParseBirthDate parses a calendar date in one of the accepted layouts.
// Dates in the future or before 1900 are rejected.
func ParseBirthDate(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range birthDateLayouts {
		d, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		if d.Year() < 1900 || d.After(now) {
			return time.Time{}, ErrBadDate
		}
		return d, nil
	}
	return time.Time{}, ErrBadDate
}

// ParseBirthTime parses a 24-hour time and normalizes it to HH:MM.
func ParseBirthTime(text string) (string, error) {
	text = strings.TrimSpace(text)
	for _, layout := range birthTimeLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", ErrBadTime
}

// IsUnknownTime reports whether the answer means the user does not know
// their birth time.
func IsUnknownTime(text string) bool {
	return unknownTimeAnswers[strings.ToLower(strings.TrimSpace(text))]
}
