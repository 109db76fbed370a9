package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/hespress-digest/internal/calendar"
	"github.com/DeafMist/hespress-digest/internal/logger"
	"github.com/DeafMist/hespress-digest/internal/models"
	"github.com/DeafMist/hespress-digest/internal/nlp"
	"github.com/DeafMist/hespress-digest/internal/pipeline"
)

var categories = []string{"اقتصاد", "رياضة", "سياسة", "فن وثقافة"}

func newProcessor(opts pipeline.Options) *pipeline.Processor {
	if opts.Categories == nil {
		opts.Categories = categories
	}
	return pipeline.New(nlp.Arabic(), opts, logger.Discard())
}

func article(title, category, date string) models.Article {
	return models.Article{
		Title:    title,
		Category: category,
		Content:  "ارتفع النمو الاقتصادي في المغرب. وقال الوزير إن النمو الاقتصادي سيستمر والنمو قوي. الطقس معتدل.",
		Keywords: []string{"اقتصاد", "نمو"},
		Source:   "هسبريس",
		Date:     date,
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := pipeline.ParsePolicy("Skip")
	require.NoError(t, err)
	require.Equal(t, pipeline.PolicySkip, p)

	p, err = pipeline.ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, pipeline.PolicyAbort, p)

	_, err = pipeline.ParsePolicy("retry")
	require.Error(t, err)
}

func TestEnrich(t *testing.T) {
	p := newProcessor(pipeline.Options{})
	a := article("الحكومة تعلن عن خطة «كوفيد-19».", "اقتصاد", "الإثنين 15 يناير 2024 - 14:30")

	rec, err := p.Enrich(a)
	require.NoError(t, err)

	require.NotEmpty(t, rec.ID)
	require.Equal(t, "الحكومة تعلن خطة كوفيد 19", rec.Title)
	require.Equal(t, "اقتصاد", rec.Category)
	require.Equal(t, "اقتصاد, نمو", rec.KeyWords)
	require.Equal(t, "هسبريس", rec.Source)
	require.Equal(t, 2024, rec.Year)
	require.Equal(t, 1, rec.Month)
	require.Equal(t, "يناير", rec.MonthName)
	require.Equal(t, 15, rec.Day)
	require.Equal(t, "الإثنين", rec.DayName)
	require.Equal(t, 14, rec.Hour)
	require.Equal(t, 30, rec.Minute)
	require.Equal(t, "الوزير النمو الاقتصادي سيستمر والنمو قوي", rec.KeyPoint)
	require.Equal(t, time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC), rec.PublishedAt)
}

func TestEnrichEmptyContent(t *testing.T) {
	p := newProcessor(pipeline.Options{})
	a := article("عنوان", "رياضة", "السبت 6 أبريل 2024 - 08:00")
	a.Content = "في من على."

	rec, err := p.Enrich(a)
	require.NoError(t, err)
	require.Equal(t, "", rec.KeyPoint)
}

func TestEnrichKeywordFallback(t *testing.T) {
	p := newProcessor(pipeline.Options{KeywordFallback: 2, KeywordMinLength: 3})
	a := article("عنوان", "رياضة", "السبت 6 أبريل 2024 - 08:00")
	a.Keywords = nil

	rec, err := p.Enrich(a)
	require.NoError(t, err)
	require.Equal(t, "الاقتصادي, النمو", rec.KeyWords)

	p = newProcessor(pipeline.Options{})
	rec, err = p.Enrich(a)
	require.NoError(t, err)
	require.Equal(t, "", rec.KeyWords)
}

func TestEnrichParseError(t *testing.T) {
	p := newProcessor(pipeline.Options{})
	_, err := p.Enrich(article("عنوان", "رياضة", "غدا"))
	require.ErrorIs(t, err, calendar.ErrParse)
}

func TestRunDedupesAndFilters(t *testing.T) {
	p := newProcessor(pipeline.Options{Workers: 3})
	input := []models.Article{
		article("أول", "اقتصاد", "الإثنين 15 يناير 2024 - 14:30"),
		article("أول", "اقتصاد", "الإثنين 15 يناير 2024 - 14:30"),
		article("ثان", "مجتمع", "الثلاثاء 16 يناير 2024 - 09:00"),
		article("ثالث", "رياضة", "الأربعاء 17 يناير 2024 - 20:15"),
		article("رابع", "فن وثقافة", "الخميس 18 يناير 2024 - 23:59"),
	}

	res, err := p.Run(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, pipeline.Stats{Input: 5, Duplicates: 1, Filtered: 1, Output: 3}, res.Stats)
	require.Len(t, res.Records, 3)

	titles := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		titles = append(titles, rec.Title)
		require.Contains(t, categories, rec.Category)
		require.NotEmpty(t, rec.KeyPoint)
	}
	require.Equal(t, []string{"أول", "ثالث", "رابع"}, titles)
}

func TestRunAbortOnParseError(t *testing.T) {
	p := newProcessor(pipeline.Options{Policy: pipeline.PolicyAbort})
	input := []models.Article{
		article("أول", "اقتصاد", "الإثنين 15 يناير 2024 - 14:30"),
		article("ثان", "اقتصاد", "not a date"),
	}

	res, err := p.Run(context.Background(), input)
	require.Nil(t, res)
	require.True(t, errors.Is(err, calendar.ErrParse))
}

func TestRunSkipOnParseError(t *testing.T) {
	p := newProcessor(pipeline.Options{Policy: pipeline.PolicySkip, Workers: 2})
	input := []models.Article{
		article("أول", "اقتصاد", "الإثنين 15 يناير 2024 - 14:30"),
		article("ثان", "اقتصاد", "not a date"),
		article("ثالث", "سياسة", "الجمعة 19 يناير 2024 - 07:45"),
	}

	res, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 1, res.Stats.Skipped)
	require.Len(t, res.Records, 2)
	require.Equal(t, "أول", res.Records[0].Title)
	require.Equal(t, "ثالث", res.Records[1].Title)
}

func TestRunCanceled(t *testing.T) {
	p := newProcessor(pipeline.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, []models.Article{article("أول", "اقتصاد", "الإثنين 15 يناير 2024 - 14:30")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunEmpty(t *testing.T) {
	p := newProcessor(pipeline.Options{})
	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, res.Records)
	require.Equal(t, pipeline.Stats{}, res.Stats)
}
