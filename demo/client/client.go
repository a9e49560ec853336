package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"captionsearch/search"
	"captionsearch/types"
)

// Client talks to the caption search API on behalf of one owner.
type Client struct {
	baseURL    string
	owner      string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, owner string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		owner:      owner,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Upload sends files in one multipart request and returns filename -> job id.
func (c *Client) Upload(ctx context.Context, paths []string) (map[string]string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range paths {
		if err := addFile(mw, p); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/captions", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result struct {
		Jobs   map[string]string `json:"jobs"`
		Errors map[string]string `json:"errors"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		rejected := make([]string, 0, len(result.Errors))
		for name, msg := range result.Errors {
			rejected = append(rejected, name+": "+msg)
		}
		sort.Strings(rejected)
		return result.Jobs, fmt.Errorf("uploads rejected: %s", strings.Join(rejected, "; "))
	}
	return result.Jobs, nil
}

func addFile(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

// Job fetches one job's current state.
func (c *Client) Job(ctx context.Context, id string) (*types.Job, error) {
	var job types.Job
	if err := c.doJSONRequest(ctx, http.MethodGet, "/api/jobs/"+id, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Search runs term over the given jobs and returns one group per job.
func (c *Client) Search(ctx context.Context, term string, jobIDs []string) ([]search.MatchGroup, error) {
	payload := map[string]any{"term": term, "job_ids": jobIDs}
	var result struct {
		Results []search.MatchGroup `json:"results"`
	}
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/captions/search", payload, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("X-Owner", c.owner)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
