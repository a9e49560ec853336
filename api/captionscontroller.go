package api

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"captionsearch/search"
	"captionsearch/types"
	"captionsearch/uploads"
)

// jobCookieMaxAge keeps filename -> job id cookies for a day.
const jobCookieMaxAge = 24 * 60 * 60

var errDuplicateUpload = errors.New("file name repeated in this upload")

// RegisterCaptionRoutes registers upload, listing and search endpoints.
func RegisterCaptionRoutes(r gin.IRoutes, s *Server) {
	r.GET("/captions", s.handleListCaptions)
	r.POST("/captions", s.handleUpload)
	r.POST("/captions/search", s.handleSearch)
}

// UploadResponse maps each accepted upload to its job id.
type UploadResponse struct {
	Jobs   map[string]string `json:"jobs"`
	Errors map[string]string `json:"errors,omitempty"`
}

// SearchRequest names the jobs to search either directly or by uploaded filename.
type SearchRequest struct {
	Term   string   `json:"term" binding:"required"`
	JobIDs []string `json:"job_ids"`
	Files  []string `json:"files"`
}

// SearchResponse carries one group per requested handle, in request order.
type SearchResponse struct {
	Term    string              `json:"term"`
	Results []search.MatchGroup `json:"results"`
}

// handleUpload stores each multipart "file" and submits it for extraction.
// Job ids are returned and also set as cookies keyed by the sanitized filename.
func (s *Server) handleUpload(c *gin.Context) {
	owner := OwnerFrom(c)
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required: " + err.Error()})
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	ctx := c.Request.Context()
	resp := UploadResponse{Jobs: map[string]string{}}
	seen := make(map[string]bool, len(files))
	for _, fh := range files {
		key := uploads.SecureFilename(fh.Filename)
		if key != "" && seen[key] {
			resp.addError(fh.Filename, errDuplicateUpload)
			continue
		}
		seen[key] = true

		f, err := fh.Open()
		if err != nil {
			resp.addError(fh.Filename, err)
			continue
		}

		var jobID string
		_, _, err = s.Uploads.Save(ctx, owner, fh.Filename, f, func(path string) error {
			job, err := s.Pipeline.Submit(ctx, owner, path, filepath.Base(path))
			if err != nil {
				return err
			}
			jobID = job.ID
			return nil
		})
		f.Close()
		if err != nil {
			log.Printf("❌ Upload of %s for %s failed: %v", fh.Filename, owner, err)
			resp.addError(fh.Filename, err)
			continue
		}

		resp.Jobs[fh.Filename] = jobID
		// Keyed by the requested name so search by file finds the latest upload.
		c.SetCookie(key, jobID, jobCookieMaxAge, "/", "", false, true)
	}

	if len(resp.Jobs) == 0 {
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

func (r *UploadResponse) addError(name string, err error) {
	if r.Errors == nil {
		r.Errors = map[string]string{}
	}
	r.Errors[name] = err.Error()
}

// handleSearch resolves the requested handles and returns their matches.
func (s *Server) handleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	handles := append([]string{}, req.JobIDs...)
	for _, file := range req.Files {
		jobID, err := c.Cookie(uploads.SecureFilename(file))
		if err != nil || jobID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no upload found for " + file})
			return
		}
		handles = append(handles, jobID)
	}
	if len(handles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_ids or files required"})
		return
	}

	groups, err := s.Search.Search(c.Request.Context(), OwnerFrom(c), req.Term, handles)
	if err != nil {
		if errors.Is(err, c.Request.Context().Err()) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Term: req.Term, Results: groups})
}

// handleListCaptions returns every caption record stored for the caller.
func (s *Server) handleListCaptions(c *gin.Context) {
	if s.Captions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "caption store not configured"})
		return
	}
	owner := OwnerFrom(c)
	records, err := s.Captions.List(c.Request.Context(), owner)
	if err != nil {
		log.Printf("❌ Listing captions for %s failed: %v", owner, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "caption store unavailable"})
		return
	}
	if records == nil {
		records = []*types.CaptionRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"captions": records})
}
