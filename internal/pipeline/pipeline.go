// Package pipeline turns raw articles into enriched dataset records:
// dedupe, category filter, date fields, key point and text cleaning.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/hespress-digest/internal/calendar"
	"github.com/DeafMist/hespress-digest/internal/models"
	"github.com/DeafMist/hespress-digest/internal/nlp"
	"github.com/DeafMist/hespress-digest/internal/processing"
	"github.com/DeafMist/hespress-digest/internal/summary"
)

// Policy decides what a date parse failure does to the batch.
type Policy string

const (
	// PolicyAbort fails the whole batch on the first unparseable date.
	PolicyAbort Policy = "abort"
	// PolicySkip drops the record and carries on.
	PolicySkip Policy = "skip"
)

// ParsePolicy validates a policy name.
func ParsePolicy(raw string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(raw))); p {
	case PolicyAbort, PolicySkip:
		return p, nil
	case "":
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown parse error policy %q", raw)
	}
}

// Options tune a Processor.
type Options struct {
	Categories       []string
	Policy           Policy
	Workers          int
	KeywordFallback  int
	KeywordMinLength int
}

// Stats counts what happened to the input of one run.
type Stats struct {
	Input      int
	Duplicates int
	Filtered   int
	Skipped    int
	Output     int
}

// Result is the outcome of one batch run.
type Result struct {
	Records []models.Record
	Stats   Stats
}

// Processor enriches articles. It holds no per-run state and is safe for
// concurrent use.
type Processor struct {
	lang       nlp.Analyzer
	summarizer *summary.Summarizer
	cleaner    *processing.Cleaner
	allowed    map[string]struct{}
	opts       Options
	log        *slog.Logger
}

// New creates a Processor over lang.
func New(lang nlp.Analyzer, opts Options, log *slog.Logger) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Policy == "" {
		opts.Policy = PolicyAbort
	}
	if log == nil {
		log = slog.Default()
	}

	allowed := make(map[string]struct{}, len(opts.Categories))
	for _, c := range opts.Categories {
		allowed[strings.TrimSpace(c)] = struct{}{}
	}

	return &Processor{
		lang:       lang,
		summarizer: summary.New(lang),
		cleaner:    processing.NewCleaner(lang),
		allowed:    allowed,
		opts:       opts,
		log:        log,
	}
}

// Allowed reports whether category is on the allow-list.
func (p *Processor) Allowed(category string) bool {
	_, ok := p.allowed[category]
	return ok
}

// Enrich derives the dataset record of one article. It fails only when the
// date cannot be parsed; the error then matches calendar.ErrParse.
func (p *Processor) Enrich(a models.Article) (models.Record, error) {
	stamp, err := calendar.Parse(a.Date)
	if err != nil {
		return models.Record{}, err
	}

	keywords := processing.JoinKeywords(a.Keywords)
	if keywords == "" && p.opts.KeywordFallback > 0 {
		derived := processing.ExtractKeywords(p.lang, a.Content, p.opts.KeywordFallback, p.opts.KeywordMinLength)
		keywords = processing.JoinKeywords(derived)
	}

	return models.Record{
		ID:          processing.BuildDocumentID(a),
		Title:       p.cleaner.Clean(a.Title),
		Category:    a.Category,
		KeyWords:    keywords,
		Source:      a.Source,
		Year:        stamp.Year,
		Month:       stamp.Month,
		MonthName:   stamp.MonthName,
		Day:         stamp.Day,
		DayName:     stamp.DayName,
		Hour:        stamp.Hour,
		Minute:      stamp.Minute,
		KeyPoint:    p.cleaner.Clean(p.summarizer.KeyPoint(a.Content)),
		PublishedAt: stamp.Time,
	}, nil
}

// Select removes duplicate articles, keeping the first occurrence, then
// drops articles outside the category allow-list.
func (p *Processor) Select(articles []models.Article) ([]models.Article, Stats) {
	stats := Stats{Input: len(articles)}
	seen := make(map[string]struct{}, len(articles))
	kept := make([]models.Article, 0, len(articles))

	for _, a := range articles {
		id := processing.BuildDocumentID(a)
		if _, dup := seen[id]; dup {
			stats.Duplicates++
			continue
		}
		seen[id] = struct{}{}

		if !p.Allowed(a.Category) {
			stats.Filtered++
			p.log.Debug("category not allowed", slog.String("category", a.Category))
			continue
		}
		kept = append(kept, a)
	}
	return kept, stats
}

// Run processes a whole batch. Records keep input order whatever the
// worker count. Under PolicyAbort the first parse error aborts the run.
func (p *Processor) Run(ctx context.Context, articles []models.Article) (*Result, error) {
	kept, stats := p.Select(articles)

	records := make([]models.Record, len(kept))
	ok := make([]bool, len(kept))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, a := range kept {
		if gctx.Err() != nil {
			break
		}
		i, a := i, a
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := p.Enrich(a)
			if err == nil {
				records[i], ok[i] = rec, true
				return nil
			}
			if p.opts.Policy == PolicySkip && errors.Is(err, calendar.ErrParse) {
				p.log.Warn("skipping record", slog.Int("index", i), slog.Any("err", err))
				return nil
			}
			return fmt.Errorf("record %d: %w", i, err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Record, 0, len(kept))
	for i, rec := range records {
		if ok[i] {
			out = append(out, rec)
		} else {
			stats.Skipped++
		}
	}
	stats.Output = len(out)

	return &Result{Records: out, Stats: stats}, nil
}
