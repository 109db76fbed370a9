package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCategories is the category allow-list of the source site.
const DefaultCategories = "اقتصاد,رياضة,سياسة,فن وثقافة"

// Parse error policies.
const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Processing holds the per-article enrichment settings shared by the batch
// pipeline and the streaming worker.
type Processing struct {
	AllowedCategories []string
	ResourcePath      string
	ParseErrorPolicy  string
	KeywordFallback   int
	KeywordMinLength  int
}

// Pipeline configures the batch preprocess run. An empty
// ElasticsearchAddr disables indexing.
type Pipeline struct {
	Common
	Processing
	InputPath  string
	OutputPath string
	Workers    int
}

// Worker holds configuration for the Kafka -> Elasticsearch worker.
type Worker struct {
	Common
	Processing
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	RedisURL       string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
	CommitInterval time.Duration
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr    string
	DatasetPath string
	TopN        int
	DefaultPage int
	MaxPage     int
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

func loadCommon(fallbackAddr string) Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", fallbackAddr),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "articles"),
	}
}

func loadProcessing() Processing {
	return Processing{
		AllowedCategories: splitAndTrim(getEnv("ALLOWED_CATEGORIES", DefaultCategories)),
		ResourcePath:      getEnv("NLP_RESOURCE_PATH", ""),
		ParseErrorPolicy:  strings.ToLower(getEnv("PARSE_ERROR_POLICY", PolicyAbort)),
		KeywordFallback:   getInt("KEYWORD_FALLBACK_LIMIT", 0),
		KeywordMinLength:  getInt("KEYWORD_MIN_LEN", 3),
	}
}

// Validate checks the processing settings.
func (p Processing) Validate() error {
	if len(p.AllowedCategories) == 0 {
		return fmt.Errorf("ALLOWED_CATEGORIES must contain at least one category")
	}
	if p.ParseErrorPolicy != PolicyAbort && p.ParseErrorPolicy != PolicySkip {
		return fmt.Errorf("PARSE_ERROR_POLICY must be %q or %q, got %q", PolicyAbort, PolicySkip, p.ParseErrorPolicy)
	}
	if p.KeywordFallback < 0 {
		return fmt.Errorf("KEYWORD_FALLBACK_LIMIT cannot be negative")
	}
	if p.KeywordMinLength < 0 {
		return fmt.Errorf("KEYWORD_MIN_LEN cannot be negative")
	}
	return nil
}

// LoadPipeline builds a Pipeline config from environment variables.
func LoadPipeline() (*Pipeline, error) {
	c := &Pipeline{
		Common:     loadCommon(""),
		Processing: loadProcessing(),
		InputPath:  getEnv("INPUT_PATH", "hespress.json"),
		OutputPath: LoadDatasetPath(),
		Workers:    getInt("PIPELINE_WORKERS", 1),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDatasetPath returns the dataset location a preprocess run writes to.
func LoadDatasetPath() string {
	return getEnv("OUTPUT_PATH", "hespress_analysis.json")
}

// Validate checks a Pipeline config, including values set after loading.
func (c *Pipeline) Validate() error {
	if err := c.Processing.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("INPUT_PATH must be set")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("OUTPUT_PATH must be set")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive")
	}
	return nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon("http://elasticsearch:9200"),
		Processing:     loadProcessing(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "articles_raw"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "articles-worker"),
		RedisURL:       getEnv("REDIS_URL", ""),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
		CommitInterval: getDuration("WORKER_COMMIT_INTERVAL", "2s"),
	}

	if err := c.Processing.Validate(); err != nil {
		return nil, err
	}
	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:      loadCommon("http://elasticsearch:9200"),
		BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DatasetPath: getEnv("API_DATASET_PATH", "hespress_analysis.json"),
		TopN:        getInt("API_TOP_N", 10),
		DefaultPage: getInt("API_PAGE_SIZE", 20),
		MaxPage:     getInt("API_MAX_PAGE_SIZE", 100),
	}

	if c.TopN <= 0 {
		return nil, fmt.Errorf("API_TOP_N must be positive")
	}
	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon("http://elasticsearch:9200"),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "2160h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}

	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
