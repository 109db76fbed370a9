package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DeafMist/hespress-digest/internal/models"
)

// ErrSchema reports input that is not one of the accepted layouts or lacks
// a field.
var ErrSchema = errors.New("invalid input schema")

// Field order of positional records.
var fieldNames = []string{"title", "category", "content", "keywords", "source", "date"}

// ReadArticles loads the raw article file at path.
func ReadArticles(path string) ([]models.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return DecodeArticles(f)
}

// DecodeArticles accepts three layouts: an array of objects, an object of
// parallel arrays keyed by field name, or an array of six-element arrays in
// field order. Any missing field or wrong type is an ErrSchema.
func DecodeArticles(r io.Reader) ([]models.Article, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrSchema)
	}

	switch data[0] {
	case '{':
		return decodeColumnar(data)
	case '[':
		return decodeRows(data)
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrSchema)
	}
}

func decodeRows(data []byte) ([]models.Article, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	out := make([]models.Article, 0, len(rows))
	for i, row := range rows {
		row = bytes.TrimSpace(row)
		var (
			a   models.Article
			err error
		)
		switch {
		case len(row) > 0 && row[0] == '{':
			a, err = decodeObject(row)
		case len(row) > 0 && row[0] == '[':
			a, err = decodePositional(row)
		default:
			err = errors.New("record is neither an object nor an array")
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrSchema, i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeObject(row json.RawMessage) (models.Article, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(row, &fields); err != nil {
		return models.Article{}, err
	}
	if err := requireFields(fields); err != nil {
		return models.Article{}, err
	}

	var a models.Article
	if err := json.Unmarshal(row, &a); err != nil {
		return models.Article{}, err
	}
	return a, nil
}

func decodePositional(row json.RawMessage) (models.Article, error) {
	var values []json.RawMessage
	if err := json.Unmarshal(row, &values); err != nil {
		return models.Article{}, err
	}
	if len(values) != len(fieldNames) {
		return models.Article{}, fmt.Errorf("expected %d values, got %d", len(fieldNames), len(values))
	}

	var a models.Article
	targets := []any{&a.Title, &a.Category, &a.Content, &a.Keywords, &a.Source, &a.Date}
	for i, target := range targets {
		if err := json.Unmarshal(values[i], target); err != nil {
			return models.Article{}, fmt.Errorf("field %q: %v", fieldNames[i], err)
		}
	}
	return a, nil
}

func decodeColumnar(data []byte) ([]models.Article, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := requireFields(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var cols struct {
		Title    []string   `json:"title"`
		Category []string   `json:"category"`
		Content  []string   `json:"content"`
		Keywords [][]string `json:"keywords"`
		Source   []string   `json:"source"`
		Date     []string   `json:"date"`
	}
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	n := len(cols.Title)
	for name, l := range map[string]int{
		"category": len(cols.Category),
		"content":  len(cols.Content),
		"keywords": len(cols.Keywords),
		"source":   len(cols.Source),
		"date":     len(cols.Date),
	} {
		if l != n {
			return nil, fmt.Errorf("%w: column %q has %d values, title has %d", ErrSchema, name, l, n)
		}
	}

	out := make([]models.Article, n)
	for i := range out {
		out[i] = models.Article{
			Title:    cols.Title[i],
			Category: cols.Category[i],
			Content:  cols.Content[i],
			Keywords: cols.Keywords[i],
			Source:   cols.Source[i],
			Date:     cols.Date[i],
		}
	}
	return out, nil
}

func requireFields(fields map[string]json.RawMessage) error {
	for _, name := range fieldNames {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("missing field %q", name)
		}
	}
	return nil
}
