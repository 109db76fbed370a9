// Command preprocess turns a raw Hespress scrape into the columnar analysis
// dataset and prints dashboard summaries of it.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/DeafMist/hespress-digest/internal/config"
	"github.com/DeafMist/hespress-digest/internal/elasticsearch"
	"github.com/DeafMist/hespress-digest/internal/insights"
	"github.com/DeafMist/hespress-digest/internal/logger"
	"github.com/DeafMist/hespress-digest/internal/models"
	"github.com/DeafMist/hespress-digest/internal/nlp"
	"github.com/DeafMist/hespress-digest/internal/pipeline"
)

type bulkIndexer interface {
	BulkIndexRecords(ctx context.Context, records []models.Record, batchSize int) (int, error)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd(logger.New("preprocess")).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(log *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "preprocess",
		Short:         "Clean, enrich and summarize scraped Hespress articles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(log))
	root.AddCommand(newStatsCmd())
	return root
}

func newRunCmd(log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the analysis dataset from a raw scrape",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadPipeline()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}

			var idx bulkIndexer
			if cfg.ElasticsearchAddr != "" {
				client, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
				if err != nil {
					return fmt.Errorf("init elasticsearch: %w", err)
				}
				idx = client
			}

			_, err = runPipeline(cmd.Context(), log, cfg, idx)
			return err
		},
	}

	cmd.Flags().String("input", "", "raw articles JSON (overrides INPUT_PATH)")
	cmd.Flags().String("output", "", "dataset destination (overrides OUTPUT_PATH)")
	cmd.Flags().Int("workers", 0, "parallel enrichment workers (overrides PIPELINE_WORKERS)")
	cmd.Flags().String("policy", "", "date parse failure policy: abort or skip (overrides PARSE_ERROR_POLICY)")
	cmd.Flags().String("resource", "", "language resource YAML (overrides NLP_RESOURCE_PATH)")
	return cmd
}

// applyFlags layers explicitly set flags over the environment config.
func applyFlags(cmd *cobra.Command, cfg *config.Pipeline) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputPath, _ = flags.GetString("input")
	}
	if flags.Changed("output") {
		cfg.OutputPath, _ = flags.GetString("output")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("policy") {
		policy, _ := flags.GetString("policy")
		cfg.ParseErrorPolicy = strings.ToLower(strings.TrimSpace(policy))
	}
	if flags.Changed("resource") {
		cfg.ResourcePath, _ = flags.GetString("resource")
	}
	return cfg.Validate()
}

func runPipeline(ctx context.Context, log *slog.Logger, cfg *config.Pipeline, idx bulkIndexer) (pipeline.Stats, error) {
	runID := uuid.NewString()
	log = log.With(slog.String("run_id", runID))
	started := time.Now()

	lang, err := nlp.Open(cfg.ResourcePath)
	if err != nil {
		return pipeline.Stats{}, fmt.Errorf("load language resource: %w", err)
	}

	policy, err := pipeline.ParsePolicy(cfg.ParseErrorPolicy)
	if err != nil {
		return pipeline.Stats{}, err
	}

	articles, err := pipeline.ReadArticles(cfg.InputPath)
	if err != nil {
		return pipeline.Stats{}, err
	}
	log.Info("articles loaded", slog.String("input", cfg.InputPath), slog.Int("count", len(articles)))

	proc := pipeline.New(lang, pipeline.Options{
		Categories:       cfg.AllowedCategories,
		Policy:           policy,
		Workers:          cfg.Workers,
		KeywordFallback:  cfg.KeywordFallback,
		KeywordMinLength: cfg.KeywordMinLength,
	}, log)

	result, err := proc.Run(ctx, articles)
	if err != nil {
		return pipeline.Stats{}, fmt.Errorf("process articles: %w", err)
	}

	if err := pipeline.WriteDataset(cfg.OutputPath, result.Records); err != nil {
		return result.Stats, err
	}

	if idx != nil {
		indexed, err := idx.BulkIndexRecords(ctx, result.Records, 500)
		if err != nil {
			return result.Stats, fmt.Errorf("index records: %w", err)
		}
		log.Info("records indexed", slog.Int("indexed", indexed))
	}

	log.Info("dataset written",
		slog.String("output", cfg.OutputPath),
		slog.Int("input", result.Stats.Input),
		slog.Int("duplicates", result.Stats.Duplicates),
		slog.Int("filtered", result.Stats.Filtered),
		slog.Int("skipped", result.Stats.Skipped),
		slog.Int("output_rows", result.Stats.Output),
		slog.Duration("took", time.Since(started)),
	)
	return result.Stats, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [dataset]",
		Short: "Print keyword, publisher and timeline summaries of a dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.LoadDatasetPath()
			if len(args) == 1 {
				path = args[0]
			}
			top, _ := cmd.Flags().GetInt("top")
			return printStats(cmd.OutOrStdout(), path, top)
		},
	}

	cmd.Flags().Int("top", 10, "number of keywords and publishers to rank")
	return cmd
}

func printStats(w io.Writer, path string, top int) error {
	records, err := pipeline.ReadDataset(path)
	if err != nil {
		return err
	}
	return insights.WriteMarkdown(w, insights.Build(records, top))
}
