package config

import "time"

// Pipeline Constants
const (
	// FingerprintChunkSize is the read size used when hashing uploads
	FingerprintChunkSize = 64 * 1024

	// Decoder kinds
	DecoderCCExtractor = "ccextractor"
	DecoderFFmpeg      = "ffmpeg"

	// DefaultDecoderBinary is the caption extraction engine
	DefaultDecoderBinary = "ccextractor"
	// DefaultFFmpegBinary is used when DECODER_KIND=ffmpeg
	DefaultFFmpegBinary = "ffmpeg"

	// DefaultDecoderStdoutFlag makes the decoder write SRT to stdout
	DefaultDecoderStdoutFlag = "-stdout"

	// DefaultDecoderTimeout bounds a single decoder run
	DefaultDecoderTimeout = 30 * time.Second

	// DefaultWorkerCount is the number of concurrent task workers
	DefaultWorkerCount = 4
)

// Search Constants
const (
	// DefaultSearchTimeout bounds how long a search waits on pending jobs
	DefaultSearchTimeout = 60 * time.Second

	// DefaultPollInterval is the job store poll period while awaiting a job
	DefaultPollInterval = 250 * time.Millisecond

	// MinPollInterval floors configured poll intervals
	MinPollInterval = 10 * time.Millisecond
)

// Storage Constants
const (
	// DefaultBucket is the archival bucket
	DefaultBucket = "mybucket"

	// DefaultUploadDir is the root of the per-owner upload area
	DefaultUploadDir = "static"

	// DefaultJobTTL is how long job records are retained in the result backend
	DefaultJobTTL = 24 * time.Hour

	// CaptionKeyPrefix namespaces caption records in redis
	CaptionKeyPrefix = "captions:"

	// JobKeyPrefix namespaces job records in redis
	JobKeyPrefix = "jobs:"

	// StoreTimeout bounds a single cache or job store round trip
	StoreTimeout = 5 * time.Second

	// ArchiveTimeout bounds a single archival upload
	ArchiveTimeout = 5 * time.Minute
)

// Queue Constants
const (
	DefaultKafkaTopic   = "caption-tasks"
	DefaultKafkaGroupID = "caption-workers"
	DefaultKafkaBrokers = "localhost:9093"

	// LocalQueueBuffer is the pending task buffer of the in-process queue
	LocalQueueBuffer = 1024
)
