package calendar_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/hespress-digest/internal/calendar"
)

func TestParse(t *testing.T) {
	stamp, err := calendar.Parse("الإثنين 15 يناير 2024 - 14:30")
	require.NoError(t, err)

	require.Equal(t, 2024, stamp.Year)
	require.Equal(t, 1, stamp.Month)
	require.Equal(t, "يناير", stamp.MonthName)
	require.Equal(t, 15, stamp.Day)
	require.Equal(t, "الإثنين", stamp.DayName)
	require.Equal(t, 14, stamp.Hour)
	require.Equal(t, 30, stamp.Minute)
	require.Equal(t, time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC), stamp.Time)
}

func TestParseVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "single digit day", input: "الجمعة 5 يوليوز 2024 - 09:05", want: time.Date(2024, 7, 5, 9, 5, 0, 0, time.UTC)},
		{name: "extra spaces", input: "  السبت   30   دجنبر 2023  -  23:59 ", want: time.Date(2023, 12, 30, 23, 59, 0, 0, time.UTC)},
		{name: "no hyphen", input: "الأحد 1 شتنبر 2024 00:00", want: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)},
		{name: "decomposed hamza", input: "الخميس 3 \u0627\u0654كتوبر 2024 - 10:15", want: time.Date(2024, 10, 3, 10, 15, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp, err := calendar.Parse(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, stamp.Time)
		})
	}
}

func TestParseDayNameFollowsDate(t *testing.T) {
	// 15 January 2024 is a Monday even though the input says Friday.
	stamp, err := calendar.Parse("الجمعة 15 يناير 2024 - 14:30")
	require.NoError(t, err)
	require.Equal(t, "الإثنين", stamp.DayName)
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"الإثنين 15 Janvier 2024 - 14:30",
		"الإثنين 15 يناير 2024",
		"الإثنين 32 يناير 2024 - 14:30",
		"الإثنين 15 يناير 2024 - 25:30",
		"yesterday",
	}

	for _, in := range inputs {
		_, err := calendar.Parse(in)
		require.Error(t, err, in)
		require.True(t, errors.Is(err, calendar.ErrParse), in)

		var perr *calendar.ParseError
		require.True(t, errors.As(err, &perr))
		require.Equal(t, in, perr.Input)
	}
}

func TestTranslate(t *testing.T) {
	require.Equal(t, "Monday 15 January 2024 14:30", calendar.Translate("الإثنين 15 يناير 2024 - 14:30"))
	require.Equal(t, "Unknown 15 May", calendar.Translate("Unknown 15 ماي"))
}

func TestMonthRoundTrip(t *testing.T) {
	names := calendar.MonthNames()
	require.Len(t, names, 12)

	for i, arabic := range names {
		english, ok := calendar.MonthToEnglish(arabic)
		require.True(t, ok, arabic)
		require.Equal(t, time.Month(i+1).String(), english)

		back, ok := calendar.MonthFromEnglish(english)
		require.True(t, ok, english)
		require.Equal(t, arabic, back)
		require.Equal(t, arabic, calendar.MonthName(time.Month(i+1)))
	}
}

func TestDayRoundTrip(t *testing.T) {
	names := calendar.DayNames()
	require.Len(t, names, 7)

	seen := make(map[string]bool)
	for _, arabic := range names {
		english, ok := calendar.DayToEnglish(arabic)
		require.True(t, ok, arabic)
		seen[english] = true

		back, ok := calendar.DayFromEnglish(english)
		require.True(t, ok, english)
		require.Equal(t, arabic, back)
	}
	require.Len(t, seen, 7)
}

func TestParseRoundTripEveryMonthAndDay(t *testing.T) {
	// 2024-01-01 is a Monday; walking a full year covers every month and weekday.
	start := time.Date(2024, 1, 1, 8, 45, 0, 0, time.UTC)
	for d := 0; d < 366; d += 11 {
		ts := start.AddDate(0, 0, d)
		stamp, err := calendar.Parse(calendar.Format(ts))
		require.NoError(t, err)
		require.Equal(t, ts, stamp.Time)
		require.Equal(t, calendar.MonthName(ts.Month()), stamp.MonthName)
		require.Equal(t, calendar.DayName(ts.Weekday()), stamp.DayName)
	}
}

func TestWeekOrder(t *testing.T) {
	require.Equal(t, []string{"الإثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت", "الأحد"}, calendar.WeekOrder())
}

func TestMonthNameOutOfRange(t *testing.T) {
	require.Empty(t, calendar.MonthName(0))
	require.Empty(t, calendar.MonthName(13))
}
