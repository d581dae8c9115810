package card

import (
	"time"

	"cardbook/internal/common/errors"
)

// Date is a birthday or anniversary value. Either Time is set or Text holds
// a free-form value (vCard 4.0 VALUE=text). The zero Date means "no value".
type Date struct {
	Time time.Time
	Text string
}

// IsZero reports whether the date carries no value at all.
func (d Date) IsZero() bool {
	return d.Text == "" && d.Time.IsZero()
}

// sentinelYear marks a date without a year. A date whose year is 1900 with a
// non-zero month and day and an all-zero time of day is treated as year-less
// on output.
const sentinelYear = 1900

// noYear reports whether t encodes the year-less sentinel.
func noYear(t time.Time) bool {
	return t.Year() == sentinelYear && t.Month() != 0 && t.Day() != 0 &&
		t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}

var yearlessLayouts = []string{"--0102", "--01-02"}

var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	"20060102T150405",
	"2006-01-02T15:04:05",
	"20060102T150405Z0700",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate converts a date string into a time value. It accepts the
// year-less forms --mmdd and --mm-dd (mapped onto the sentinel year), plain
// dates in basic and extended format, and date-times with an optional Z or
// numeric zone suffix.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(sentinelYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.ValidationError("date", "unrecognized date format")
}

// FormatDate renders a date for display. Free-text values pass through
// untouched and the year-less sentinel becomes --mm-dd. With localize set
// the output uses a verbose locale-style layout, otherwise ISO forms.
func FormatDate(d Date, localize bool) string {
	if d.IsZero() {
		return ""
	}
	if d.Text != "" {
		return d.Text
	}
	t := d.Time
	if noYear(t) {
		return t.Format("--01-02")
	}
	_, offset := t.Zone()
	if offset != 0 || t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
		if localize {
			return t.Format("Mon Jan 2 15:04:05 2006")
		}
		return t.Format("2006-01-02T15:04:05-07:00")
	}
	if localize {
		return t.Format("Monday, January 2, 2006")
	}
	return t.Format("2006-01-02")
}

// wireDateValue prepares the value stored in a BDAY or ANNIVERSARY field for
// the given vCard version. The second result marks a free-text value and the
// third reports whether the date can be represented at all (free text and
// year-less dates need version 4.0).
func wireDateValue(d Date, version string) (value string, isText, ok bool) {
	if d.Text != "" {
		if version == Version4 {
			return d.Text, true, true
		}
		return "", false, false
	}
	t := d.Time
	_, offset := t.Zone()
	switch {
	case noYear(t) && version == Version4:
		return t.Format("--0102"), false, true
	case offset != 0:
		if version == Version4 {
			return t.Format("20060102T150405-07:00"), false, true
		}
		return t.Format("2006-01-02T15:04:05-07:00"), false, true
	case t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0:
		if version == Version4 {
			return t.Format("20060102T150405Z"), false, true
		}
		return t.Format("2006-01-02T15:04:05Z"), false, true
	default:
		if version == Version4 {
			return t.Format("20060102"), false, true
		}
		return t.Format("2006-01-02"), false, true
	}
}
