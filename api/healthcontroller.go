package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one backing dependency is usable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// RegisterHealthRoutes registers the unauthenticated health endpoint.
func RegisterHealthRoutes(r *gin.Engine, s *Server) {
	r.GET("/api/health", s.handleHealth)
}

// handleHealth runs every configured check and reports 503 if any fails.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(s.Checks))
	for name := range s.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.Checks[name](ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "dependencies": deps})
}
