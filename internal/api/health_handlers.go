package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"data":   checkDir(ctx, s.opts.DataDir),
		"covers": s.checkCovers(ctx),
		"remote": s.checkRemote(),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

func (s *Server) checkCovers(ctx context.Context) ComponentHealth {
	if s.covers == nil {
		return ComponentHealth{Status: "degraded", Message: "cover storage not configured"}
	}
	return checkDir(ctx, s.covers.Dir())
}

func (s *Server) checkRemote() ComponentHealth {
	if s.services.Backups == nil || !s.services.Backups.RemoteEnabled() {
		return ComponentHealth{Status: "healthy", Message: "remote backups disabled"}
	}
	return ComponentHealth{Status: "healthy", Message: "remote backups configured"}
}

// checkDir verifies a directory exists and is listable.
func checkDir(ctx context.Context, dir string) ComponentHealth {
	if dir == "" {
		return ComponentHealth{Status: "degraded", Message: "not configured"}
	}
	if err := ctx.Err(); err != nil {
		return ComponentHealth{Status: "unhealthy", Message: err.Error()}
	}

	start := time.Now()
	f, err := os.Open(dir)
	if err != nil {
		return ComponentHealth{Status: "unhealthy", Message: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return ComponentHealth{Status: "unhealthy", Message: fmt.Sprintf("read: %v", err)}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: time.Since(start).String(),
	}
}
