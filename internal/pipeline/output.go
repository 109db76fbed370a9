package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DeafMist/hespress-digest/internal/models"
)

// EncodeDataset writes records in the columnar layout. Non-ASCII text is
// written as is.
func EncodeDataset(w io.Writer, records []models.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(models.ToColumns(records)); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return nil
}

// WriteDataset writes records to path through a temporary file in the same
// directory, so path is either fully written or untouched.
func WriteDataset(path string, records []models.Record) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.json")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := EncodeDataset(tmp, records); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

// ReadDataset loads a columnar dataset written by WriteDataset.
func ReadDataset(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	cols, err := models.DecodeColumns(data)
	if err != nil {
		return nil, err
	}
	return cols.Records()
}
