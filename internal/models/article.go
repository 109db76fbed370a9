package models

import "time"

// Article is one scraped news item as it appears in the raw input.
type Article struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
	Source   string   `json:"source"`
	Date     string   `json:"date"`
}

// Record is the enriched row written to the dataset and the search index.
// ID and PublishedAt are index-only and never part of the columnar file.
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	KeyWords    string    `json:"key_words"`
	Source      string    `json:"source"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	MonthName   string    `json:"month_name"`
	Day         int       `json:"day"`
	DayName     string    `json:"day_name"`
	Hour        int       `json:"hour"`
	Minute      int       `json:"minute"`
	KeyPoint    string    `json:"key_point"`
	PublishedAt time.Time `json:"published_at"`
}
