package uploads

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically sweeps uploads older than the retention period.
type Janitor struct {
	area      *Area
	retention time.Duration
	cron      *cron.Cron
}

// NewJanitor creates a Janitor for area. It does nothing until Start.
func NewJanitor(area *Area, retention time.Duration) *Janitor {
	return &Janitor{area: area, retention: retention, cron: cron.New()}
}

// Start schedules sweeps using a standard five-field cron expression.
func (j *Janitor) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, j.RunOnce); err != nil {
		return fmt.Errorf("failed to add janitor schedule: %w", err)
	}
	j.cron.Start()
	log.Printf("Upload janitor started with schedule: %s (retention %s)", schedule, j.retention)
	return nil
}

// RunOnce performs a single sweep.
func (j *Janitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := j.area.Sweep(ctx, time.Now().Add(-j.retention))
	if err != nil {
		log.Printf("❌ Upload janitor failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("🧹 Upload janitor removed %d file(s)", removed)
	}
}

// Stop waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
