package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterUploadRoutes registers upload area and archive listing endpoints.
func RegisterUploadRoutes(r gin.IRoutes, s *Server) {
	r.GET("/uploads", s.handleListUploads)
	r.DELETE("/uploads", s.handleWipeUploads)
	r.GET("/files", s.handleListFiles)
}

func (s *Server) handleListUploads(c *gin.Context) {
	files, err := s.Uploads.List(OwnerFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list uploads: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// handleWipeUploads resets the caller's upload area. It waits for in-flight
// submissions by the same owner to finish first.
func (s *Server) handleWipeUploads(c *gin.Context) {
	if err := s.Uploads.Wipe(c.Request.Context(), OwnerFrom(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to wipe uploads: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "wiped"})
}

// handleListFiles lists the caller's archived originals.
func (s *Server) handleListFiles(c *gin.Context) {
	if s.Files == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
		return
	}
	keys, err := s.Files.ListFiles(c.Request.Context(), OwnerFrom(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list files: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": keys})
}
