package insights

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// WriteMarkdown renders the report as markdown tables padded to display
// width, so Arabic and Latin columns line up in a terminal.
func WriteMarkdown(w io.Writer, r Report) error {
	sections := []struct {
		title string
		rows  [][]string
	}{
		{"Top keywords", countRows("Keyword", r.Keywords)},
		{"Top publishers", countRows("Publisher", r.Sources)},
		{"Categories", countRows("Category", r.Categories)},
		{"Monthly timeline", monthRows(r.Monthly)},
		{"Daily timeline", countRows("Day", r.Daily)},
		{"Hourly timeline", countRows("Period", r.Hourly)},
	}

	if _, err := fmt.Fprintf(w, "Articles: %d\n", r.Total); err != nil {
		return err
	}
	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "\n## %s\n\n", s.title); err != nil {
			return err
		}
		for _, line := range Table(s.rows) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func countRows(header string, counts []Count) [][]string {
	rows := [][]string{{header, "Count"}}
	for _, c := range counts {
		rows = append(rows, []string{c.Label, strconv.Itoa(c.Count)})
	}
	return rows
}

func monthRows(months []MonthCount) [][]string {
	rows := [][]string{{"Month", "Year", "Count"}}
	for _, m := range months {
		rows = append(rows, []string{m.MonthName, strconv.Itoa(m.Year), strconv.Itoa(m.Count)})
	}
	return rows
}

// Table renders rows as a markdown table; the first row is the header.
// Columns are at least three wide so the separator stays valid.
func Table(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}

	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	colWidths := make([]int, colCount)
	for i := range colWidths {
		colWidths[i] = 3
	}
	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	line := func(row []string) string {
		var sb strings.Builder
		sb.WriteString("|")
		for j := 0; j < colCount; j++ {
			content := ""
			if j < len(row) {
				content = row[j]
			}
			sb.WriteString(" ")
			sb.WriteString(content)
			if padding := colWidths[j] - runewidth.StringWidth(content); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}
			sb.WriteString(" |")
		}
		return sb.String()
	}

	result := []string{line(rows[0])}

	var sep strings.Builder
	sep.WriteString("|")
	for _, width := range colWidths {
		sep.WriteString(" ")
		sep.WriteString(strings.Repeat("-", width))
		sep.WriteString(" |")
	}
	result = append(result, sep.String())

	for _, row := range rows[1:] {
		result = append(result, line(row))
	}
	return result
}
