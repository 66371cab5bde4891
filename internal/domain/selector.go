package domain

import (
	"time"
	"unicode/utf8"
)

// MinSearchTermLength is the shortest fragment accepted by substring search.
const MinSearchTermLength = 3

const secondsPerDay = 24 * 60 * 60

// EpochDay returns the number of days between 1970-01-01 and the calendar
// date of t. Only the year, month and day of t in its own location are used,
// so the result does not depend on time of day or zone offset.
func EpochDay(t time.Time) int64 {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	// Midnight UTC is an exact multiple of a day, so truncating division
	// is exact for dates before the epoch too.
	return midnight.Unix() / secondsPerDay
}

// DayOffset maps a calendar date onto an ordinal in [0, count).
// It fails with an EmptyCollectionError when count is not positive.
func DayOffset(date time.Time, count int64) (int64, error) {
	if count <= 0 {
		return 0, NewEmptyCollectionError("quote")
	}

	day := EpochDay(date)

	return ((day % count) + count) % count, nil
}

// ValidateSearchTerm rejects fragments shorter than MinSearchTermLength runes.
func ValidateSearchTerm(fragment string) error {
	if utf8.RuneCountInString(fragment) < MinSearchTermLength {
		return NewSearchTermTooShortError(fragment, MinSearchTermLength)
	}

	return nil
}
