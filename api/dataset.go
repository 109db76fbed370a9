package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/DeafMist/hespress-digest/internal/models"
	"github.com/DeafMist/hespress-digest/internal/pipeline"
)

// dataset serves the preprocessed file, reloading it when a new run
// replaces it on disk.
type dataset struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	size    int64
	records []models.Record
}

func newDataset(path string) *dataset {
	return &dataset{path: path}
}

// Records returns the current dataset rows.
func (d *dataset) Records() ([]models.Record, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.records != nil && info.ModTime().Equal(d.modTime) && info.Size() == d.size {
		return d.records, nil
	}

	records, err := pipeline.ReadDataset(d.path)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Record{}
	}

	d.records = records
	d.modTime = info.ModTime()
	d.size = info.Size()
	return records, nil
}
