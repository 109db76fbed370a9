package calendar

import "time"

type pair struct {
	arabic  string
	english string
}

// Moroccan month names as published by the source site, in calendar order.
var months = []pair{
	{"يناير", "January"},
	{"فبراير", "February"},
	{"مارس", "March"},
	{"أبريل", "April"},
	{"ماي", "May"},
	{"يونيو", "June"},
	{"يوليوز", "July"},
	{"غشت", "August"},
	{"شتنبر", "September"},
	{"أكتوبر", "October"},
	{"نونبر", "November"},
	{"دجنبر", "December"},
}

// Week starts on Saturday on the source site.
var days = []pair{
	{"السبت", "Saturday"},
	{"الأحد", "Sunday"},
	{"الإثنين", "Monday"},
	{"الثلاثاء", "Tuesday"},
	{"الأربعاء", "Wednesday"},
	{"الخميس", "Thursday"},
	{"الجمعة", "Friday"},
}

var (
	monthToEnglish   = index(months, false)
	monthFromEnglish = index(months, true)
	dayToEnglish     = index(days, false)
	dayFromEnglish   = index(days, true)
)

func index(pairs []pair, reverse bool) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if reverse {
			m[p.english] = p.arabic
		} else {
			m[p.arabic] = p.english
		}
	}
	return m
}

// MonthToEnglish maps an Arabic month name to its English name.
func MonthToEnglish(arabic string) (string, bool) {
	v, ok := monthToEnglish[arabic]
	return v, ok
}

// MonthFromEnglish maps an English month name to its Arabic name.
func MonthFromEnglish(english string) (string, bool) {
	v, ok := monthFromEnglish[english]
	return v, ok
}

// DayToEnglish maps an Arabic weekday name to its English name.
func DayToEnglish(arabic string) (string, bool) {
	v, ok := dayToEnglish[arabic]
	return v, ok
}

// DayFromEnglish maps an English weekday name to its Arabic name.
func DayFromEnglish(english string) (string, bool) {
	v, ok := dayFromEnglish[english]
	return v, ok
}

// MonthName returns the Arabic name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return months[m-1].arabic
}

// DayName returns the Arabic name of d.
func DayName(d time.Weekday) string {
	name, _ := DayFromEnglish(d.String())
	return name
}

// WeekOrder lists the Arabic weekday names Monday first, the order the
// dashboard displays them in.
func WeekOrder() []string {
	out := make([]string, 0, len(days))
	for i := 0; i < 7; i++ {
		out = append(out, DayName(time.Weekday((i+1)%7)))
	}
	return out
}

// MonthNames returns the Arabic month names in calendar order.
func MonthNames() []string {
	out := make([]string, len(months))
	for i, p := range months {
		out[i] = p.arabic
	}
	return out
}

// DayNames returns the Arabic weekday names, Saturday first.
func DayNames() []string {
	out := make([]string, len(days))
	for i, p := range days {
		out[i] = p.arabic
	}
	return out
}
