package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DECODER_BINARY", "DECODER_TIMEOUT_SECONDS", "WORKER_COUNT", "S3_PREFIX", "SEARCH_POLL_INTERVAL_MS", "CACHE_BACKEND"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q; want 8080", cfg.Port)
	}
	if cfg.DecoderBinary != DefaultDecoderBinary {
		t.Fatalf("DecoderBinary = %q", cfg.DecoderBinary)
	}
	if cfg.DecoderTimeout != 30*time.Second {
		t.Fatalf("DecoderTimeout = %v", cfg.DecoderTimeout)
	}
	if cfg.WorkerCount != DefaultWorkerCount {
		t.Fatalf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.CacheBackend != "redis" {
		t.Fatalf("CacheBackend = %q", cfg.CacheBackend)
	}
	if cfg.SearchPollInterval != DefaultPollInterval {
		t.Fatalf("SearchPollInterval = %v", cfg.SearchPollInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DECODER_TIMEOUT_SECONDS", "5")
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("S3_PREFIX", "/archive/")
	t.Setenv("PARSE_STRICT", "true")
	t.Setenv("SEARCH_POLL_INTERVAL_MS", "1")
	t.Setenv("CACHE_BACKEND", "SQLite")

	cfg := Load()
	if cfg.DecoderTimeout != 5*time.Second {
		t.Fatalf("DecoderTimeout = %v", cfg.DecoderTimeout)
	}
	if cfg.WorkerCount != DefaultWorkerCount {
		t.Fatalf("negative WORKER_COUNT should fall back, got %d", cfg.WorkerCount)
	}
	if cfg.S3Prefix != "archive/" {
		t.Fatalf("S3Prefix = %q", cfg.S3Prefix)
	}
	if !cfg.ParseStrict {
		t.Fatal("ParseStrict should be true")
	}
	if cfg.SearchPollInterval != MinPollInterval {
		t.Fatalf("poll interval should be floored, got %v", cfg.SearchPollInterval)
	}
	if cfg.CacheBackend != "sqlite" {
		t.Fatalf("CacheBackend = %q", cfg.CacheBackend)
	}
}

func TestDecoderKindPicksBinary(t *testing.T) {
	t.Setenv("DECODER_BINARY", "")
	t.Setenv("DECODER_KIND", "FFmpeg")
	cfg := Load()
	if cfg.DecoderKind != DecoderFFmpeg || cfg.DecoderBinary != DefaultFFmpegBinary {
		t.Fatalf("kind = %q binary = %q", cfg.DecoderKind, cfg.DecoderBinary)
	}

	t.Setenv("DECODER_BINARY", "/opt/ffmpeg/bin/ffmpeg")
	if cfg := Load(); cfg.DecoderBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("explicit binary ignored: %q", cfg.DecoderBinary)
	}
}
