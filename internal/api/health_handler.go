package api

import (
	"net/http"
	"time"

	"github.com/luminaed/atrium/internal/pkg/httputil"
)

var startedAt = time.Now()

// HealthCheck reports liveness and process uptime.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(startedAt).Round(time.Second).String(),
	})
}
