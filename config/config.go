package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, built once and passed to constructors.
type Config struct {
	Port string
	Mode string

	UploadDir          string
	UploadRetention    time.Duration
	JanitorSchedule    string
	DecoderKind        string
	DecoderBinary      string
	DecoderStdoutFlag  string
	DecoderTimeout     time.Duration
	WorkerCount        int
	ParseStrict        bool
	SearchTimeout      time.Duration
	SearchPollInterval time.Duration

	CacheBackend string
	JobBackend   string
	RedisAddr    string
	RedisPass    string
	RedisDB      int
	SQLitePath   string
	DatabaseURL  string
	JobTTL       time.Duration

	QueueBackend string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool
	S3Endpoint     string
}

// Load reads .env (if present) and the environment.
func Load() Config {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	prefix := strings.TrimSpace(os.Getenv("S3_PREFIX"))
	if prefix != "" {
		prefix = strings.Trim(prefix, "/") + "/"
	}

	decoderKind := strings.ToLower(GetEnvOrDefault("DECODER_KIND", DecoderCCExtractor))
	decoderBinary := DefaultDecoderBinary
	if decoderKind == DecoderFFmpeg {
		decoderBinary = DefaultFFmpegBinary
	}

	poll := GetEnvDuration("SEARCH_POLL_INTERVAL_MS", time.Millisecond, DefaultPollInterval)
	if poll < MinPollInterval {
		poll = MinPollInterval
	}

	return Config{
		Port:               GetEnvOrDefault("PORT", "8080"),
		Mode:               GetEnvOrDefault("MODE", "all"),
		UploadDir:          GetEnvOrDefault("UPLOAD_DIR", DefaultUploadDir),
		UploadRetention:    GetEnvDuration("UPLOAD_RETENTION_HOURS", time.Hour, 0),
		JanitorSchedule:    GetEnvOrDefault("JANITOR_SCHEDULE", "@hourly"),
		DecoderKind:        decoderKind,
		DecoderBinary:      GetEnvOrDefault("DECODER_BINARY", decoderBinary),
		DecoderStdoutFlag:  GetEnvOrDefault("DECODER_STDOUT_FLAG", DefaultDecoderStdoutFlag),
		DecoderTimeout:     GetEnvDuration("DECODER_TIMEOUT_SECONDS", time.Second, DefaultDecoderTimeout),
		WorkerCount:        GetEnvInt("WORKER_COUNT", DefaultWorkerCount),
		ParseStrict:        GetEnvBool("PARSE_STRICT", false),
		SearchTimeout:      GetEnvDuration("SEARCH_TIMEOUT_SECONDS", time.Second, DefaultSearchTimeout),
		SearchPollInterval: poll,

		CacheBackend: strings.ToLower(GetEnvOrDefault("CACHE_BACKEND", "redis")),
		JobBackend:   strings.ToLower(GetEnvOrDefault("JOB_BACKEND", "redis")),
		RedisAddr:    GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPass:    os.Getenv("REDIS_PASS"),
		RedisDB:      GetEnvInt("REDIS_DB", 0),
		SQLitePath:   GetEnvOrDefault("SQLITE_PATH", "data/captions.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JobTTL:       GetEnvDuration("JOB_TTL_SECONDS", time.Second, DefaultJobTTL),

		QueueBackend: strings.ToLower(GetEnvOrDefault("QUEUE_BACKEND", "local")),
		KafkaBrokers: strings.Split(GetEnvOrDefault("KAFKA_BOOTSTRAP_SERVERS", DefaultKafkaBrokers), ","),
		KafkaTopic:   GetEnvOrDefault("KAFKA_TOPIC_TASKS", DefaultKafkaTopic),
		KafkaGroupID: GetEnvOrDefault("KAFKA_CONSUMER_GROUP_ID", DefaultKafkaGroupID),

		S3Bucket:       GetEnvOrDefault("S3_BUCKET", DefaultBucket),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3Prefix:       prefix,
		S3UsePathStyle: GetEnvBool("S3_USE_PATH_STYLE", false),
		S3Endpoint:     strings.TrimSpace(os.Getenv("AWS_ENDPOINT_URL")),
	}
}

// GetEnvOrDefault returns the trimmed env value or fallback when unset/blank.
func GetEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt parses a positive integer env value.
func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// GetEnvBool parses a boolean env value.
func GetEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvDuration reads a positive integer count of unit.
func GetEnvDuration(key string, unit, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return time.Duration(n) * unit
		}
	}
	return fallback
}
