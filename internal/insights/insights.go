// Package insights computes the dashboard aggregations over dataset
// records: keyword and publisher rankings, category shares and the
// monthly, daily and hourly timelines.
package insights

import (
	"sort"
	"strings"

	"github.com/DeafMist/hespress-digest/internal/calendar"
	"github.com/DeafMist/hespress-digest/internal/models"
)

// Count is one labeled bucket.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MonthCount is one point of the monthly timeline.
type MonthCount struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
	Count     int    `json:"count"`
}

// Day periods, six hours each, ending at 6, 12, 18 and 24.
var periods = []string{"الصباح", "الظهيرة", "المساء", "الليل"}

// Report bundles every aggregation.
type Report struct {
	Total      int          `json:"total"`
	Keywords   []Count      `json:"top_keywords"`
	Sources    []Count      `json:"top_sources"`
	Categories []Count      `json:"categories"`
	Monthly    []MonthCount `json:"monthly"`
	Daily      []Count      `json:"daily"`
	Hourly     []Count      `json:"hourly"`
}

// Build computes a Report, ranking at most top keywords and sources.
func Build(records []models.Record, top int) Report {
	return Report{
		Total:      len(records),
		Keywords:   TopKeywords(records, top),
		Sources:    TopSources(records, top),
		Categories: Categories(records),
		Monthly:    Monthly(records),
		Daily:      Daily(records),
		Hourly:     Hourly(records),
	}
}

// TopKeywords splits every key_words field on commas and ranks the trimmed
// keywords. Empty segments are split artifacts and are ignored.
func TopKeywords(records []models.Record, top int) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		for _, k := range strings.Split(r.KeyWords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				counts[k]++
			}
		}
	}
	return rank(counts, top)
}

// TopSources ranks publishers by article count.
func TopSources(records []models.Record, top int) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Source]++
	}
	return rank(counts, top)
}

// Categories counts articles per category, largest first.
func Categories(records []models.Record) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	return rank(counts, 0)
}

// Monthly counts articles per calendar month in chronological order.
func Monthly(records []models.Record) []MonthCount {
	type key struct{ year, month int }
	counts := make(map[key]*MonthCount)
	for _, r := range records {
		k := key{r.Year, r.Month}
		mc, ok := counts[k]
		if !ok {
			mc = &MonthCount{Year: r.Year, Month: r.Month, MonthName: r.MonthName}
			counts[k] = mc
		}
		mc.Count++
	}

	out := make([]MonthCount, 0, len(counts))
	for _, mc := range counts {
		out = append(out, *mc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// Daily counts articles per weekday, Monday first, every weekday present.
// Unknown day names are ignored.
func Daily(records []models.Record) []Count {
	order := calendar.WeekOrder()
	pos := make(map[string]int, len(order))
	out := make([]Count, len(order))
	for i, name := range order {
		pos[name] = i
		out[i] = Count{Label: name}
	}
	for _, r := range records {
		if i, ok := pos[r.DayName]; ok {
			out[i].Count++
		}
	}
	return out
}

// Hourly buckets articles into four six-hour periods closed on the right:
// (0,6] (6,12] (12,18] (18,24]. Hour 0 and hours outside 1-23 are ignored.
func Hourly(records []models.Record) []Count {
	out := make([]Count, len(periods))
	for i, name := range periods {
		out[i] = Count{Label: name}
	}
	for _, r := range records {
		if r.Hour < 1 || r.Hour > 23 {
			continue
		}
		out[(r.Hour-1)/6].Count++
	}
	return out
}

// rank sorts counts descending, ties by label, and keeps the first top
// entries (all when top <= 0).
func rank(counts map[string]int, top int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Label < out[j].Label
		}
		return out[i].Count > out[j].Count
	})
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}
