package health

import (
	"runtime"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Name        string      `json:"name"`
	Status      Status      `json:"status"`
	Description string      `json:"description,omitempty"`
	LastChecked time.Time   `json:"last_checked"`
	Details     interface{} `json:"details,omitempty"`
}

// ServerHealth represents overall server health
type ServerHealth struct {
	Status         Status            `json:"status"`
	Uptime         int64             `json:"uptime_seconds"`
	Timestamp      time.Time         `json:"timestamp"`
	ActiveSessions int               `json:"active_sessions"`
	Goroutines     int               `json:"goroutines"`
	MemoryMB       uint64            `json:"memory_mb"`
	Components     []ComponentHealth `json:"components"`
}

// Monitor tracks server health metrics
type Monitor struct {
	startTime  time.Time
	mu         sync.RWMutex
	components map[string]*ComponentHealth
}

// NewMonitor creates a new health monitor
func NewMonitor() *Monitor {
	return &Monitor{
		startTime:  time.Now(),
		components: make(map[string]*ComponentHealth),
	}
}

// SetComponentStatus updates the status of a component
func (m *Monitor) SetComponentStatus(name string, status Status, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[name] = &ComponentHealth{
		Name:        name,
		Status:      status,
		Description: description,
		LastChecked: time.Now(),
	}
}

// GetHealth returns the current server health
func (m *Monitor) GetHealth(activeSessions int) *ServerHealth {
	m.mu.RLock()
	components := make([]ComponentHealth, 0, len(m.components))
	overallStatus := StatusHealthy
	for _, comp := range m.components {
		components = append(components, *comp)
		if comp.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
		} else if comp.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}
	m.mu.RUnlock()

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	return &ServerHealth{
		Status:         overallStatus,
		Uptime:         int64(time.Since(m.startTime).Seconds()),
		Timestamp:      time.Now(),
		ActiveSessions: activeSessions,
		Goroutines:     runtime.NumGoroutine(),
		MemoryMB:       stats.Alloc / 1024 / 1024,
		Components:     components,
	}
}
