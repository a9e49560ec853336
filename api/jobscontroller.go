package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"captionsearch/jobs"
)

// RegisterJobRoutes registers job status endpoints.
func RegisterJobRoutes(r gin.IRoutes, s *Server) {
	r.GET("/jobs/:id", s.handleGetJob)
}

// handleGetJob returns a job the caller owns. Other owners' jobs are reported as missing.
func (s *Server) handleGetJob(c *gin.Context) {
	job, err := s.Jobs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) || (err == nil && job.Owner != OwnerFrom(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}
