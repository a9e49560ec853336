package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"captionsearch/api"
	"captionsearch/config"
	"captionsearch/uploads"
)

func main() {
	cfg := config.Load()

	mode := flag.String("mode", cfg.Mode, "api, worker, or all")
	flag.Parse()
	cfg.Mode = *mode
	switch cfg.Mode {
	case "api", "worker", "all":
	default:
		log.Fatalf("❌ Unknown mode %q (want api, worker, or all)", cfg.Mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize: %v", err)
	}
	defer a.close()

	if cfg.Mode != "api" {
		if err := a.queue.Start(ctx, a.pipeline.Handle); err != nil {
			log.Fatalf("❌ Failed to start workers: %v", err)
		}
	}

	if cfg.Mode == "worker" {
		log.Printf("🤖 Caption worker running (queue: %s). Press Ctrl+C to shutdown", cfg.QueueBackend)
		<-ctx.Done()
		log.Println("Shutting down...")
		return
	}

	if cfg.UploadRetention > 0 {
		janitor := uploads.NewJanitor(a.area, cfg.UploadRetention)
		if err := janitor.Start(cfg.JanitorSchedule); err != nil {
			log.Fatalf("❌ Failed to start janitor: %v", err)
		}
		defer janitor.Stop()
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: api.NewRouter(a.server())}
	go func() {
		log.Printf("Starting API server on %s", srv.Addr)
		log.Println("API endpoints available:")
		log.Println("  GET    /api/health")
		log.Println("  GET    /api/captions")
		log.Println("  POST   /api/captions")
		log.Println("  POST   /api/captions/search")
		log.Println("  GET    /api/jobs/:id")
		log.Println("  GET    /api/uploads")
		log.Println("  DELETE /api/uploads")
		log.Println("  GET    /api/files")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
