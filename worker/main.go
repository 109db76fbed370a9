package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/hespress-digest/internal/config"
	"github.com/DeafMist/hespress-digest/internal/dedupe"
	"github.com/DeafMist/hespress-digest/internal/elasticsearch"
	"github.com/DeafMist/hespress-digest/internal/logger"
	"github.com/DeafMist/hespress-digest/internal/models"
	"github.com/DeafMist/hespress-digest/internal/nlp"
	"github.com/DeafMist/hespress-digest/internal/pipeline"
	"github.com/DeafMist/hespress-digest/internal/processing"
)

type recordIndexer interface {
	IndexRecord(ctx context.Context, rec models.Record) error
}

func main() {
	_ = godotenv.Load()

	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	lang, err := nlp.Open(cfg.ResourcePath)
	if err != nil {
		log.Error("load language resource", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		log.Error("init dedupe store", slog.Any("err", err))
		os.Exit(1)
	}
	defer closeStore()

	proc := pipeline.New(lang, pipeline.Options{
		Categories:       cfg.AllowedCategories,
		Policy:           pipeline.Policy(cfg.ParseErrorPolicy),
		KeywordFallback:  cfg.KeywordFallback,
		KeywordMinLength: cfg.KeywordMinLength,
	}, log)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqTopic := cfg.KafkaTopic + "_dlq"
	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       dlqTopic,
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", dlqTopic),
		slog.Bool("redis_dedupe", cfg.RedisURL != ""),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, proc, esClient, store, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if ctx.Err() != nil {
					return
				}
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// newStore picks Redis when REDIS_URL is set so that dedupe survives
// restarts and is shared between replicas.
func newStore(ctx context.Context, cfg *config.Worker) (dedupe.Store, func(), error) {
	if cfg.RedisURL == "" {
		return dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL), func() {}, nil
	}

	store, err := dedupe.NewRedisStore(ctx, cfg.RedisURL, cfg.DedupeTTL)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// sendToDLQ forwards msg with error context, retrying with exponential
// backoff. It reports whether the write succeeded.
func sendToDLQ(ctx context.Context, log *slog.Logger, w messageWriter, msg kafka.Message, cause error) bool {
	dlqMsg := dlqMessage(msg, cause, time.Now())

	for attempt := 0; attempt < 5; attempt++ {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			log.Info("context canceled during DLQ retry")
			return false
		}
	}
	return false
}

func dlqMessage(msg kafka.Message, cause error, now time.Time) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers)+4)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
		kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
		kafka.Header{Key: "error", Value: []byte(cause.Error())},
		kafka.Header{Key: "timestamp", Value: []byte(now.UTC().Format(time.RFC3339))},
	)
	return kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers}
}

func processMessage(ctx context.Context, log *slog.Logger, proc *pipeline.Processor, idx recordIndexer, store dedupe.Store, msg kafka.Message) error {
	var article models.Article
	if err := json.Unmarshal(msg.Value, &article); err != nil {
		return fmt.Errorf("decode article: %w", err)
	}

	if strings.TrimSpace(article.Title) == "" && strings.TrimSpace(article.Content) == "" {
		return errors.New("empty payload")
	}

	if !proc.Allowed(article.Category) {
		log.Debug("category not allowed", slog.String("category", article.Category))
		return nil
	}

	id := processing.BuildDocumentID(article)
	seen, err := store.IsSeen(ctx, id)
	if err != nil {
		return fmt.Errorf("dedupe lookup: %w", err)
	}
	if seen {
		log.Debug("duplicate article", slog.String("id", id))
		return nil
	}

	rec, err := proc.Enrich(article)
	if err != nil {
		return err
	}

	if err := idx.IndexRecord(ctx, rec); err != nil {
		return err
	}

	if err := store.MarkSeen(ctx, rec.ID); err != nil {
		log.Warn("mark seen", slog.String("id", rec.ID), slog.Any("err", err))
	}
	log.Info("indexed article", slog.String("id", rec.ID), slog.String("title", rec.Title))
	return nil
}
