package health

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"timber-backend/internal/cache"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db        Pinger
	startedAt time.Time
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// DetailedStatus adds host and cache figures for the monitoring dashboard
type DetailedStatus struct {
	HealthStatus
	Cache         string     `json:"cache"` // healthy, unavailable
	UptimeSeconds int64      `json:"uptime_seconds"`
	Host          HostHealth `json:"host"`
}

type HostHealth struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    uint64  `json:"memory_used_bytes"`
	MemoryTotal   uint64  `json:"memory_total_bytes"`
	DiskPercent   float64 `json:"disk_percent"`
}

func NewHealthChecker(db Pinger) *HealthChecker {
	return &HealthChecker{db: db, startedAt: time.Now()}
}

func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := h.checkDatabase(ctx)

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
	}
}

func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	d := DetailedStatus{
		HealthStatus:  h.CheckBasic(ctx),
		Cache:         "unavailable",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Host:          checkHost(ctx),
	}
	if cache.IsHealthy() {
		d.Cache = "healthy"
	}
	return d
}

func (h *HealthChecker) checkDatabase(ctx context.Context) DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return DatabaseHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}

// checkHost samples the node the server runs on; unreadable figures stay zero
func checkHost(ctx context.Context) HostHealth {
	var host HostHealth

	if percents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(percents) > 0 {
		host.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		host.MemoryPercent = vm.UsedPercent
		host.MemoryUsed = vm.Used
		host.MemoryTotal = vm.Total
	}
	if usage, err := disk.UsageWithContext(ctx, "/"); err == nil {
		host.DiskPercent = usage.UsedPercent
	}
	return host
}
