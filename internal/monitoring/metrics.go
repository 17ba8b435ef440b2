package monitoring

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics aggregates request counters for one server instance.
type Metrics struct {
	mu             sync.RWMutex
	requestCount   int64
	activeRequests int64
	errorCount     int64
	statusCodes    map[string]int64
	endpoints      map[string]int64
	startTime      time.Time
	lastRequest    time.Time
	totalDuration  time.Duration
	now            func() time.Time
}

type MetricsSnapshot struct {
	RequestCount       int64            `json:"request_count"`
	AvgRequestDuration float64          `json:"avg_request_duration_ms"`
	ActiveRequests     int64            `json:"active_requests"`
	ErrorCount         int64            `json:"error_count"`
	StatusCodes        map[string]int64 `json:"status_codes"`
	Endpoints          map[string]int64 `json:"endpoint_calls"`
	StartTime          time.Time        `json:"start_time"`
	LastRequest        time.Time        `json:"last_request"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
		now:         time.Now,
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := m.now()

		m.mu.Lock()
		m.activeRequests++
		m.mu.Unlock()

		c.Next()

		duration := m.now().Sub(start)
		statusCode := c.Writer.Status()

		// unmatched paths share one bucket so scanners cannot grow the map
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		endpoint := c.Request.Method + " " + route

		m.mu.Lock()
		m.requestCount++
		m.activeRequests--
		m.totalDuration += duration
		m.lastRequest = m.now()
		if statusCode >= 400 {
			m.errorCount++
		}
		m.statusCodes[strconv.Itoa(statusCode)]++
		m.endpoints[endpoint]++
		m.mu.Unlock()
	}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		RequestCount:   m.requestCount,
		ActiveRequests: m.activeRequests,
		ErrorCount:     m.errorCount,
		StatusCodes:    make(map[string]int64, len(m.statusCodes)),
		Endpoints:      make(map[string]int64, len(m.endpoints)),
		StartTime:      m.startTime,
		LastRequest:    m.lastRequest,
	}
	if m.requestCount > 0 {
		avg := m.totalDuration / time.Duration(m.requestCount)
		snapshot.AvgRequestDuration = float64(avg) / float64(time.Millisecond)
	}

	for k, v := range m.statusCodes {
		snapshot.StatusCodes[k] = v
	}
	for k, v := range m.endpoints {
		snapshot.Endpoints[k] = v
	}

	return snapshot
}

func (m *Metrics) Uptime() time.Duration {
	return m.now().Sub(m.startTime)
}

type SystemMetrics struct {
	Uptime         string      `json:"uptime"`
	MemoryUsage    MemoryStats `json:"memory"`
	GoroutineCount int         `json:"goroutine_count"`
	CPUCount       int         `json:"cpu_count"`
	GoVersion      string      `json:"go_version"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc_mb"`
	TotalAlloc   uint64 `json:"total_alloc_mb"`
	Sys          uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
	NextGC       uint64 `json:"next_gc_mb"`
	GCPauseTotal string `json:"gc_pause_total"`
}

func (m *Metrics) System() SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SystemMetrics{
		Uptime: m.Uptime().String(),
		MemoryUsage: MemoryStats{
			Alloc:        bToMb(mem.Alloc),
			TotalAlloc:   bToMb(mem.TotalAlloc),
			Sys:          bToMb(mem.Sys),
			NumGC:        mem.NumGC,
			NextGC:       bToMb(mem.NextGC),
			GCPauseTotal: time.Duration(mem.PauseTotalNs).String(),
		},
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// StatsFunc reports extra subsystem figures for the metrics endpoint.
type StatsFunc func() map[string]interface{}

// MetricsHandler serves request and runtime figures. cacheStats may be nil.
func (m *Metrics) MetricsHandler(cacheStats StatsFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"application": m.Snapshot(),
			"system":      m.System(),
			"timestamp":   time.Now().UTC(),
		}
		if cacheStats != nil {
			response["cache"] = cacheStats()
		}

		c.JSON(http.StatusOK, response)
	}
}
