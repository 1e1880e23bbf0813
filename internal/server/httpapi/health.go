package httpapi

import (
	"net/http"
	"runtime"
	"time"
)

// handleHealth reports liveness plus coarse process metrics.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"message":       "Server is running properly",
		"uptimeSeconds": time.Since(s.startedAt).Seconds(),
		"goroutines":    runtime.NumGoroutine(),
		"memory": map[string]any{
			"allocBytes":      mem.Alloc,
			"totalAllocBytes": mem.TotalAlloc,
			"sysBytes":        mem.Sys,
			"numGC":           mem.NumGC,
		},
	})
}
