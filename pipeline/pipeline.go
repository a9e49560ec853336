// Package pipeline runs extraction jobs: fingerprint, cache lookup, decode,
// parse, store, and hand the original off for archival.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"captionsearch/captioncache"
	"captionsearch/config"
	"captionsearch/decoder"
	"captionsearch/fingerprint"
	"captionsearch/jobs"
	"captionsearch/queue"
	"captionsearch/types"
)

// Decoder extracts raw caption text from a media file.
type Decoder interface {
	Invoke(ctx context.Context, filePath string) (decoder.Output, error)
}

// Parser turns raw decoder output into caption entries.
type Parser interface {
	Parse(raw string) ([]types.CaptionEntry, error)
}

// Archiver copies an original upload to durable storage.
type Archiver interface {
	Archive(ctx context.Context, filePath, owner, displayName string) error
}

// Pipeline wires the extraction steps together. Submit is called by the
// request path; Handle is run by queue workers.
type Pipeline struct {
	decoder  Decoder
	parser   Parser
	cache    *captioncache.Cache
	jobs     *jobs.Manager
	queue    queue.Queue
	archiver Archiver
	now      func() time.Time
}

// New builds a Pipeline. archiver may be nil, in which case no archive tasks are enqueued.
func New(dec Decoder, parser Parser, cache *captioncache.Cache, manager *jobs.Manager, q queue.Queue, archiver Archiver) *Pipeline {
	return &Pipeline{
		decoder:  dec,
		parser:   parser,
		cache:    cache,
		jobs:     manager,
		queue:    q,
		archiver: archiver,
		now:      time.Now,
	}
}

// Submit registers a Pending job for the file and enqueues its extraction.
// It returns as soon as the task is queued.
func (p *Pipeline) Submit(ctx context.Context, owner, filePath, displayName string) (*types.Job, error) {
	job, err := p.jobs.Create(ctx, owner, displayName)
	if err != nil {
		return nil, err
	}

	task := types.Task{
		Name:        types.TaskExtractCaptions,
		JobID:       job.ID,
		Owner:       owner,
		FilePath:    filePath,
		DisplayName: displayName,
	}
	if err := p.queue.Enqueue(ctx, task); err != nil {
		jobErr := &types.JobError{Kind: types.KindInternal, Message: "failed to enqueue extraction: " + err.Error()}
		if _, ferr := p.jobs.Fail(context.WithoutCancel(ctx), job.ID, jobErr); ferr != nil {
			log.Printf("Warning: could not mark job %s failed: %v", job.ID, ferr)
		}
		return nil, fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}

	log.Printf("📥 Accepted %s for %s as job %s", displayName, owner, job.ID)
	return job, nil
}

// Handle is the queue handler for pipeline tasks.
func (p *Pipeline) Handle(ctx context.Context, task types.Task) error {
	switch task.Name {
	case types.TaskExtractCaptions:
		return p.extract(ctx, task)
	case types.TaskArchiveFile:
		if p.archiver == nil {
			return nil
		}
		// Best effort: the uploader logs failures and nothing retries them.
		_ = p.archiver.Archive(ctx, task.FilePath, task.Owner, task.DisplayName)
		return nil
	default:
		return fmt.Errorf("unknown task %q", task.Name)
	}
}

func (p *Pipeline) extract(ctx context.Context, task types.Task) (err error) {
	if _, err := p.jobs.MarkRunning(ctx, task.JobID); err != nil {
		if errors.Is(err, jobs.ErrTerminal) {
			log.Printf("Job %s already finished, skipping redelivered task", task.JobID)
			return nil
		}
		return fmt.Errorf("failed to start job %s: %w", task.JobID, err)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Job %s panicked: %v", task.JobID, r)
			p.fail(ctx, task.JobID, &types.JobError{Kind: types.KindInternal, Message: fmt.Sprintf("panic: %v", r)})
			err = nil
		}
	}()

	rec, cacheHit, err := p.run(ctx, task)
	if err != nil {
		p.fail(ctx, task.JobID, NewJobError(err))
		return nil
	}

	if _, err := p.jobs.Succeed(context.WithoutCancel(ctx), task.JobID, rec, cacheHit); err != nil {
		return fmt.Errorf("failed to complete job %s: %w", task.JobID, err)
	}
	if cacheHit {
		log.Printf("✅ Job %s served from cache (%d captions)", task.JobID, len(rec.Entries))
	} else {
		log.Printf("✅ Job %s extracted %d captions from %s", task.JobID, len(rec.Entries), task.DisplayName)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, task types.Task) (*types.CaptionRecord, bool, error) {
	// Step 1: Fingerprint the upload
	hash, err := fingerprint.File(task.FilePath)
	if err != nil {
		return nil, false, err
	}

	// Step 2: Reuse an earlier extraction of the same content
	if rec, ok := p.cache.Lookup(ctx, task.Owner, hash); ok {
		return rec, true, nil
	}

	// Step 3: Decode. Only the decoder's own timeout may abort it once started.
	out, err := p.decoder.Invoke(context.WithoutCancel(ctx), task.FilePath)
	if err != nil {
		return nil, false, err
	}

	// Step 4: Parse into a record
	entries, err := p.parser.Parse(out.Stdout)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse captions for %s: %w", task.DisplayName, err)
	}
	rec := &types.CaptionRecord{
		Owner:       task.Owner,
		FileHash:    hash,
		FileName:    task.DisplayName,
		Entries:     entries,
		ExtractedAt: p.now().UTC(),
	}

	// Step 5: Store and archive, neither of which can fail the job
	_ = p.cache.Store(ctx, rec)
	p.enqueueArchive(ctx, task)
	return rec, false, nil
}

func (p *Pipeline) enqueueArchive(ctx context.Context, task types.Task) {
	if p.archiver == nil {
		return
	}
	archiveTask := task
	archiveTask.Name = types.TaskArchiveFile

	ctx, cancel := context.WithTimeout(ctx, config.StoreTimeout)
	defer cancel()
	if err := p.queue.Enqueue(ctx, archiveTask); err != nil {
		log.Printf("Warning: could not enqueue archival of %s: %v", task.DisplayName, err)
	}
}

func (p *Pipeline) fail(ctx context.Context, jobID string, jobErr *types.JobError) {
	log.Printf("❌ Job %s failed: %v", jobID, jobErr)
	if _, err := p.jobs.Fail(context.WithoutCancel(ctx), jobID, jobErr); err != nil {
		log.Printf("Warning: could not mark job %s failed: %v", jobID, err)
	}
}
