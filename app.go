package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"captionsearch/api"
	"captionsearch/archive"
	"captionsearch/captioncache"
	"captionsearch/common"
	"captionsearch/config"
	"captionsearch/decoder"
	"captionsearch/jobs"
	"captionsearch/pipeline"
	"captionsearch/queue"
	"captionsearch/search"
	"captionsearch/srt"
	"captionsearch/uploads"
)

// app owns every process-lifetime client. Nothing here is global.
type app struct {
	cfg      config.Config
	redis    *redis.Client
	cache    *captioncache.Cache
	jobs     *jobs.Manager
	queue    queue.Queue
	pipeline *pipeline.Pipeline
	uploader *archive.Uploader
	blobs    *archive.S3Store
	area     *uploads.Area
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	if cfg.CacheBackend == "redis" || cfg.JobBackend == "redis" {
		client, err := common.NewRedis(common.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
		if err != nil {
			return nil, err
		}
		a.redis = client
		log.Printf("✅ Connected to Redis at %s", cfg.RedisAddr)
	}

	store, err := captioncache.Open(ctx, cfg, a.redis)
	if err != nil {
		return nil, fmt.Errorf("failed to open caption cache: %w", err)
	}
	a.cache = captioncache.New(store)
	log.Printf("Caption cache backend: %s", cfg.CacheBackend)

	switch cfg.JobBackend {
	case "redis":
		a.jobs = jobs.NewManager(jobs.NewRedisStore(a.redis, cfg.JobTTL))
	case "memory":
		if cfg.Mode != "all" {
			log.Printf("Warning: in-memory job store in %s mode; jobs are not shared with other processes", cfg.Mode)
		}
		a.jobs = jobs.NewManager(jobs.NewMemoryStore())
	default:
		return nil, fmt.Errorf("unknown job backend %q", cfg.JobBackend)
	}

	switch cfg.QueueBackend {
	case "local":
		if cfg.Mode != "all" {
			return nil, fmt.Errorf("local queue requires -mode=all, got %q", cfg.Mode)
		}
		a.queue = queue.NewLocal(cfg.WorkerCount, config.LocalQueueBuffer)
	case "kafka":
		q, err := queue.NewKafka(queue.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic, GroupID: cfg.KafkaGroupID})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to kafka: %w", err)
		}
		a.queue = q
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}

	s3Client, err := common.NewS3(ctx, common.S3Config{
		Region:       cfg.S3Region,
		Profile:      cfg.S3Profile,
		Endpoint:     cfg.S3Endpoint,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (archival disabled)", err)
	} else {
		a.blobs = archive.NewS3Store(s3Client, cfg.S3Bucket, cfg.S3Prefix)
		a.uploader = archive.NewUploader(a.blobs)
	}

	var dec *decoder.Invoker
	switch cfg.DecoderKind {
	case config.DecoderCCExtractor:
		dec, err = decoder.New(cfg.DecoderBinary, cfg.DecoderStdoutFlag, cfg.DecoderTimeout)
	case config.DecoderFFmpeg:
		dec, err = decoder.NewFFmpeg(cfg.DecoderBinary, cfg.DecoderTimeout)
	default:
		err = fmt.Errorf("unknown decoder kind %q", cfg.DecoderKind)
	}
	if err != nil {
		return nil, err
	}

	parser := srt.Parser{Strict: cfg.ParseStrict, OnSkip: func(block int, err error) {
		log.Printf("Warning: skipped caption block %d: %v", block, err)
	}}
	var archiver pipeline.Archiver
	if a.uploader != nil {
		archiver = a.uploader
	}
	a.pipeline = pipeline.New(dec, parser, a.cache, a.jobs, a.queue, archiver)

	a.area, err = uploads.NewArea(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	ok = true
	return a, nil
}

// server builds the HTTP handler dependencies.
func (a *app) server() *api.Server {
	s := &api.Server{
		Pipeline: a.pipeline,
		Jobs:     a.jobs,
		Search:   search.NewEngine(a.jobs, a.cfg.SearchTimeout, a.cfg.SearchPollInterval),
		Captions: a.cache,
		Uploads:  a.area,
	}
	if a.uploader != nil {
		s.Files = a.uploader
	}

	s.Checks = map[string]api.HealthCheck{
		"uploads": func(context.Context) error {
			_, err := os.Stat(a.area.Root())
			return err
		},
	}
	if a.blobs != nil {
		s.Checks["s3"] = a.blobs.Ping
	}
	if a.redis != nil {
		s.Checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	return s
}

func (a *app) close() {
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			log.Printf("Queue close error: %v", err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Printf("Cache close error: %v", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}
}
