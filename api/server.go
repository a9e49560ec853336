package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"captionsearch/search"
	"captionsearch/types"
	"captionsearch/uploads"
)

// Submitter accepts a stored upload for extraction.
type Submitter interface {
	Submit(ctx context.Context, owner, filePath, displayName string) (*types.Job, error)
}

// JobReader looks jobs up by id.
type JobReader interface {
	Get(ctx context.Context, id string) (*types.Job, error)
}

// Searcher runs caption searches over job handles.
type Searcher interface {
	Search(ctx context.Context, owner, term string, handles []string) ([]search.MatchGroup, error)
}

// CaptionLister lists the caption records stored for an owner.
type CaptionLister interface {
	List(ctx context.Context, owner string) ([]*types.CaptionRecord, error)
}

// FileLister lists an owner's archived originals.
type FileLister interface {
	ListFiles(ctx context.Context, owner string) ([]string, error)
}

// Server holds the collaborators the HTTP handlers call into.
type Server struct {
	Pipeline Submitter
	Jobs     JobReader
	Search   Searcher
	Captions CaptionLister
	Uploads  *uploads.Area
	// Files may be nil when object storage is not configured.
	Files FileLister
	// Checks are reported by /api/health, keyed by dependency name.
	Checks map[string]HealthCheck
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	RegisterHealthRoutes(r, s)

	authed := r.Group("/api", RequireOwner())
	RegisterCaptionRoutes(authed, s)
	RegisterJobRoutes(authed, s)
	RegisterUploadRoutes(authed, s)
	return r
}
