// Package calendar turns the localized publication dates of the source site
// into timestamps and calendar fields.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Layout is the English form a date takes once names are substituted and
// hyphens stripped: weekday, day, month, year, then hour:minute.
const Layout = "Monday 2 January 2006 15:04"

// ErrParse reports a date that does not match Layout after substitution.
var ErrParse = errors.New("unparseable date")

// ParseError carries the offending input.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Stamp holds the calendar fields extracted from a date. MonthName and
// DayName are Arabic.
type Stamp struct {
	Time      time.Time
	Year      int
	Month     int
	MonthName string
	Day       int
	DayName   string
	Hour      int
	Minute    int
}

// Translate rewrites Arabic month and day names to English, strips hyphens
// and collapses whitespace. Unknown words pass through untouched.
func Translate(raw string) string {
	s := norm.NFC.String(raw)
	for _, m := range months {
		s = strings.ReplaceAll(s, m.arabic, m.english)
	}
	for _, d := range days {
		s = strings.ReplaceAll(s, d.arabic, d.english)
	}
	s = strings.ReplaceAll(s, "-", "")
	return strings.Join(strings.Fields(s), " ")
}

// Parse converts a localized date such as "الإثنين 15 يناير 2024 - 14:30".
// The weekday in the input is not checked against the date; DayName is
// derived from the parsed date itself.
func Parse(raw string) (Stamp, error) {
	ts, err := time.Parse(Layout, Translate(raw))
	if err != nil {
		return Stamp{}, &ParseError{Input: raw, Err: err}
	}
	return NewStamp(ts), nil
}

// NewStamp extracts calendar fields from ts.
func NewStamp(ts time.Time) Stamp {
	return Stamp{
		Time:      ts,
		Year:      ts.Year(),
		Month:     int(ts.Month()),
		MonthName: MonthName(ts.Month()),
		Day:       ts.Day(),
		DayName:   DayName(ts.Weekday()),
		Hour:      ts.Hour(),
		Minute:    ts.Minute(),
	}
}

// Format renders ts back into the source site's Arabic form.
func Format(ts time.Time) string {
	return fmt.Sprintf("%s %d %s %d - %02d:%02d",
		DayName(ts.Weekday()), ts.Day(), MonthName(ts.Month()), ts.Year(), ts.Hour(), ts.Minute())
}
