package models

import (
	"encoding/json"
	"fmt"
)

// Columns is the columnar dataset layout: column name -> values, one entry
// per record, all columns of equal length.
type Columns struct {
	Title     []string `json:"title"`
	Category  []string `json:"category"`
	KeyWords  []string `json:"key_words"`
	Source    []string `json:"source"`
	Year      []int    `json:"year"`
	Month     []int    `json:"month"`
	MonthName []string `json:"month_name"`
	Day       []int    `json:"day"`
	DayName   []string `json:"day_name"`
	Hour      []int    `json:"hour"`
	Minute    []int    `json:"minute"`
	KeyPoint  []string `json:"key_point"`
}

// ToColumns pivots records into the columnar layout. Empty input yields
// empty (not null) columns.
func ToColumns(records []Record) Columns {
	n := len(records)
	c := Columns{
		Title:     make([]string, 0, n),
		Category:  make([]string, 0, n),
		KeyWords:  make([]string, 0, n),
		Source:    make([]string, 0, n),
		Year:      make([]int, 0, n),
		Month:     make([]int, 0, n),
		MonthName: make([]string, 0, n),
		Day:       make([]int, 0, n),
		DayName:   make([]string, 0, n),
		Hour:      make([]int, 0, n),
		Minute:    make([]int, 0, n),
		KeyPoint:  make([]string, 0, n),
	}
	for _, r := range records {
		c.Title = append(c.Title, r.Title)
		c.Category = append(c.Category, r.Category)
		c.KeyWords = append(c.KeyWords, r.KeyWords)
		c.Source = append(c.Source, r.Source)
		c.Year = append(c.Year, r.Year)
		c.Month = append(c.Month, r.Month)
		c.MonthName = append(c.MonthName, r.MonthName)
		c.Day = append(c.Day, r.Day)
		c.DayName = append(c.DayName, r.DayName)
		c.Hour = append(c.Hour, r.Hour)
		c.Minute = append(c.Minute, r.Minute)
		c.KeyPoint = append(c.KeyPoint, r.KeyPoint)
	}
	return c
}

// Len returns the row count, or an error when columns disagree.
func (c Columns) Len() (int, error) {
	n := len(c.Title)
	lengths := map[string]int{
		"category":   len(c.Category),
		"key_words":  len(c.KeyWords),
		"source":     len(c.Source),
		"year":       len(c.Year),
		"month":      len(c.Month),
		"month_name": len(c.MonthName),
		"day":        len(c.Day),
		"day_name":   len(c.DayName),
		"hour":       len(c.Hour),
		"minute":     len(c.Minute),
		"key_point":  len(c.KeyPoint),
	}
	for name, l := range lengths {
		if l != n {
			return 0, fmt.Errorf("column %s has %d values, title has %d", name, l, n)
		}
	}
	return n, nil
}

// Records pivots the columnar layout back into rows.
func (c Columns) Records() ([]Record, error) {
	n, err := c.Len()
	if err != nil {
		return nil, err
	}
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{
			Title:     c.Title[i],
			Category:  c.Category[i],
			KeyWords:  c.KeyWords[i],
			Source:    c.Source[i],
			Year:      c.Year[i],
			Month:     c.Month[i],
			MonthName: c.MonthName[i],
			Day:       c.Day[i],
			DayName:   c.DayName[i],
			Hour:      c.Hour[i],
			Minute:    c.Minute[i],
			KeyPoint:  c.KeyPoint[i],
		}
	}
	return out, nil
}

// DecodeColumns parses a columnar dataset.
func DecodeColumns(data []byte) (Columns, error) {
	var c Columns
	if err := json.Unmarshal(data, &c); err != nil {
		return Columns{}, fmt.Errorf("decode dataset: %w", err)
	}
	if _, err := c.Len(); err != nil {
		return Columns{}, err
	}
	return c, nil
}
