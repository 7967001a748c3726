package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/pbnjay/memory"
	"github.com/prometheus/procfs"
)

// Stats is the payload served by the debug stats endpoint.
type Stats struct {
	Uptime            string  `json:"uptime"`
	Goroutines        int     `json:"goroutines"`
	HeapAllocBytes    uint64  `json:"heap_alloc_bytes"`
	ResidentMemory    int     `json:"resident_memory_bytes"`
	VirtualMemory     uint    `json:"virtual_memory_bytes"`
	CPUTimeSeconds    float64 `json:"cpu_time_seconds"`
	SystemTotalMemory uint64  `json:"system_total_memory_bytes"`
	SystemFreeMemory  uint64  `json:"system_free_memory_bytes"`
	Connections       int     `json:"connections"`
}

// connCount reports the number of live websocket connections.
func (g *Gateway) connCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

// StatsHandler serves process and system statistics. Process-level numbers
// come from procfs and are zero on platforms without it.
func (g *Gateway) StatsHandler(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := Stats{
		Uptime:            time.Since(g.started).Round(time.Second).String(),
		Goroutines:        runtime.NumGoroutine(),
		HeapAllocBytes:    ms.HeapAlloc,
		SystemTotalMemory: memory.TotalMemory(),
		SystemFreeMemory:  memory.FreeMemory(),
		Connections:       g.connCount(),
	}

	if proc, err := procfs.Self(); err == nil {
		if stat, err := proc.Stat(); err == nil {
			stats.ResidentMemory = stat.ResidentMemory()
			stats.VirtualMemory = stat.VirtualMemory()
			stats.CPUTimeSeconds = stat.CPUTime()
		}
	} else {
		g.log.Debugf("procfs unavailable: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		g.log.Warnf("Failed to write stats response: %v", err)
	}
}

// healthStatus is the payload served by the health endpoint.
type healthStatus struct {
	Status   string `json:"status"`
	Redis    string `json:"redis"`
	Database string `json:"database"`
}

// HealthHandler reports liveness. Both backing stores are pinged; a failure
// of either turns the response into a 503 naming the broken dependency.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := healthStatus{Status: "ok", Redis: "ok", Database: "ok"}
	code := http.StatusOK

	if err := s.store.Ping(ctx); err != nil {
		s.log.Warnf("Health check: session store unreachable: %v", err)
		health.Status = "unavailable"
		health.Redis = err.Error()
		code = http.StatusServiceUnavailable
	}
	if err := s.accounts.Ping(ctx); err != nil {
		s.log.Warnf("Health check: accounts database unreachable: %v", err)
		health.Status = "unavailable"
		health.Database = err.Error()
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.log.Warnf("Failed to write health response: %v", err)
	}
}
