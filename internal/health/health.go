package health

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"campus-access-backend/internal/clock"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type DatabaseStatus struct {
	Healthy   bool    `json:"healthy"`
	LatencyMS float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

type HostSnapshot struct {
	ProcessRSSBytes   int64   `json:"process_rss_bytes"`
	ProcessCPUPercent float64 `json:"process_cpu_percent"`
	SystemCPUPercent  float64 `json:"system_cpu_percent"`
	MemoryTotalBytes  int64   `json:"memory_total_bytes"`
	MemoryUsedBytes   int64   `json:"memory_used_bytes"`
	DiskTotalBytes    int64   `json:"disk_total_bytes"`
	DiskUsedBytes     int64   `json:"disk_used_bytes"`
	Goroutines        int     `json:"goroutines"`
}

type Report struct {
	Status        string         `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Database      DatabaseStatus `json:"database"`
	Host          HostSnapshot   `json:"host"`
}

// Checker probes the database and samples the host.
type Checker struct {
	DB       Pinger
	DiskPath string
	Clock    clock.Clock
	Started  time.Time
}

func (c Checker) now() time.Time {
	if c.Clock == nil {
		return clock.Real().Now()
	}
	return c.Clock.Now()
}

func (c Checker) Database(ctx context.Context) DatabaseStatus {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	began := time.Now()
	err := c.DB.Ping(ctx)
	status := DatabaseStatus{
		Healthy:   err == nil,
		LatencyMS: float64(time.Since(began).Microseconds()) / 1000,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

// Host never fails; readings that cannot be taken are left at zero.
func (c Checker) Host() HostSnapshot {
	snap := HostSnapshot{Goroutines: runtime.NumGoroutine()}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil && info != nil {
			snap.ProcessRSSBytes = int64(info.RSS)
		}
		if pct, err := proc.CPUPercent(); err == nil {
			snap.ProcessCPUPercent = pct
		}
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		snap.SystemCPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemoryTotalBytes = int64(vm.Total)
		snap.MemoryUsedBytes = int64(vm.Total - vm.Available)
	}
	path := c.DiskPath
	if path == "" {
		path = "/"
	}
	usage, err := disk.Usage(path)
	if err != nil {
		usage, err = disk.Usage("/")
	}
	if err == nil {
		snap.DiskTotalBytes = int64(usage.Total)
		snap.DiskUsedBytes = int64(usage.Used)
	}
	return snap
}

func (c Checker) Detailed(ctx context.Context) Report {
	now := c.now()
	report := Report{
		Status:    "healthy",
		Timestamp: now,
		Database:  c.Database(ctx),
		Host:      c.Host(),
	}
	if !c.Started.IsZero() {
		report.UptimeSeconds = int64(now.Sub(c.Started).Seconds())
	}
	if !report.Database.Healthy {
		report.Status = "degraded"
	}
	return report
}
