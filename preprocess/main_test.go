package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/hespress-digest/internal/calendar"
	"github.com/DeafMist/hespress-digest/internal/config"
	"github.com/DeafMist/hespress-digest/internal/models"
	"github.com/DeafMist/hespress-digest/internal/pipeline"
)

type stubIndexer struct {
	records []models.Record
}

func (s *stubIndexer) BulkIndexRecords(_ context.Context, records []models.Record, _ int) (int, error) {
	s.records = append(s.records, records...)
	return len(records), nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeInput(t *testing.T, articles []models.Article) string {
	t.Helper()
	data, err := json.Marshal(articles)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "hespress.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func sampleArticles() []models.Article {
	economy := models.Article{
		Title:    "ارتفاع صادرات الفوسفاط",
		Category: "اقتصاد",
		Content:  "ارتفعت صادرات الفوسفاط. وقال المكتب إن الصادرات ستواصل الارتفاع.",
		Keywords: []string{"الفوسفاط"},
		Source:   "هسبريس",
		Date:     "الإثنين 15 يناير 2024 - 14:30",
	}
	society := economy
	society.Category = "مجتمع"

	badDate := economy
	badDate.Title = "عنوان آخر"
	badDate.Date = "غدا"

	return []models.Article{economy, economy, society, badDate}
}

func pipelineConfig(input, output, policy string) *config.Pipeline {
	return &config.Pipeline{
		Common: config.Common{ElasticsearchIndex: "articles"},
		Processing: config.Processing{
			AllowedCategories: []string{"اقتصاد"},
			ParseErrorPolicy:  policy,
			KeywordMinLength:  3,
		},
		InputPath:  input,
		OutputPath: output,
		Workers:    2,
	}
}

func TestRunPipelineSkipPolicy(t *testing.T) {
	input := writeInput(t, sampleArticles())
	output := filepath.Join(t.TempDir(), "out", "dataset.json")
	idx := &stubIndexer{}

	stats, err := runPipeline(context.Background(), discard(), pipelineConfig(input, output, config.PolicySkip), idx)
	require.NoError(t, err)
	require.Equal(t, pipeline.Stats{Input: 4, Duplicates: 1, Filtered: 1, Skipped: 1, Output: 1}, stats)

	records, err := pipeline.ReadDataset(output)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "الفوسفاط", records[0].KeyWords)
	require.Equal(t, "يناير", records[0].MonthName)

	require.Len(t, idx.records, 1)
}

func TestRunPipelineAbortPolicy(t *testing.T) {
	input := writeInput(t, sampleArticles())
	output := filepath.Join(t.TempDir(), "dataset.json")

	_, err := runPipeline(context.Background(), discard(), pipelineConfig(input, output, config.PolicyAbort), nil)
	require.ErrorIs(t, err, calendar.ErrParse)

	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr))
}

func TestRunCommandFlags(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ALLOWED_CATEGORIES", "اقتصاد")
	t.Setenv("PARSE_ERROR_POLICY", "")
	t.Setenv("NLP_RESOURCE_PATH", "")
	t.Setenv("PIPELINE_WORKERS", "")

	input := writeInput(t, sampleArticles())
	output := filepath.Join(t.TempDir(), "dataset.json")

	root := newRootCmd(discard())
	root.SetArgs([]string{"run", "--input", input, "--output", output, "--policy", "SKIP", "--workers", "3"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	records, err := pipeline.ReadDataset(output)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestRunCommandRejectsBadPolicy(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")

	root := newRootCmd(discard())
	root.SetArgs([]string{"run", "--policy", "retry"})
	require.Error(t, root.ExecuteContext(context.Background()))
}

func TestStatsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, pipeline.WriteDataset(path, []models.Record{
		{Title: "أ", Category: "اقتصاد", KeyWords: "النمو, المغرب", Source: "هسبريس", Year: 2024, Month: 1, MonthName: "يناير", Day: 15, DayName: "الإثنين", Hour: 9},
	}))

	var out bytes.Buffer
	root := newRootCmd(discard())
	root.SetOut(&out)
	root.SetArgs([]string{"stats", path, "--top", "1"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	require.Contains(t, out.String(), "هسبريس")
	require.Contains(t, out.String(), "| الإثنين")
}
