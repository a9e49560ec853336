package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClientSendsOwnerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Owner") != "alice" {
			http.Error(w, "login required", http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/captions":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			jobs := map[string]string{}
			for _, fh := range r.MultipartForm.File["file"] {
				jobs[fh.Filename] = "job-" + fh.Filename
			}
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(map[string]any{"jobs": jobs})
		case "/api/jobs/job-a.ts":
			_, _ = w.Write([]byte(`{"job_id":"job-a.ts","state":"succeeded","file_name":"a.ts"}`))
		case "/api/captions/search":
			var req struct {
				Term   string   `json:"term"`
				JobIDs []string `json:"job_ids"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			_, _ = w.Write([]byte(`{"term":"` + req.Term + `","results":[{"job_id":"` + req.JobIDs[0] + `","matches":[{"index":3,"text":"Hello World"}]}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "a.ts")
	if err := os.WriteFile(path, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewClient(srv.URL+"/", "alice")
	ctx := context.Background()

	jobs, err := c.Upload(ctx, []string{path})
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if jobs["a.ts"] != "job-a.ts" {
		t.Fatalf("jobs = %v", jobs)
	}

	job, err := c.Job(ctx, "job-a.ts")
	if err != nil || job.State != "succeeded" || job.FileName != "a.ts" {
		t.Fatalf("Job = %+v, %v", job, err)
	}

	groups, err := c.Search(ctx, "World", []string{"job-a.ts"})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Matches) != 1 || groups[0].Matches[0].Index != 3 {
		t.Fatalf("groups = %+v", groups)
	}

	if _, err := NewClient(srv.URL, "mallory").Job(ctx, "job-a.ts"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
}
