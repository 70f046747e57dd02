package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats содержит показатели процесса для /api/status
type ProcessStats struct {
	Uptime       string  `json:"uptime"`
	UptimeSec    float64 `json:"uptime_seconds"`
	CPUPercent   float64 `json:"cpu_percent"`
	RSSMB        float64 `json:"rss_mb"`
	HeapAllocMB  float64 `json:"heap_alloc_mb"`
	NumGC        uint32  `json:"num_gc"`
	Goroutines   int     `json:"goroutines"`
	NumThreads   int32   `json:"num_threads"`
	CollectError string  `json:"collect_error,omitempty"`
}

// ProcessMetrics собирает метрики текущего процесса
type ProcessMetrics struct {
	StartTime time.Time
	proc      *process.Process
}

// NewProcessMetrics создает новый экземпляр метрик
func NewProcessMetrics() *ProcessMetrics {
	pm := &ProcessMetrics{StartTime: time.Now()}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		pm.proc = proc
	}
	return pm
}

// FormatUptime форматирует длительность в вид "1д 2ч 3м 4с"
func FormatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// Collect возвращает текущие показатели. Ошибки gopsutil не фатальны:
// runtime-поля заполняются всегда.
func (pm *ProcessMetrics) Collect() ProcessStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(pm.StartTime)
	stats := ProcessStats{
		Uptime:      FormatUptime(uptime),
		UptimeSec:   uptime.Seconds(),
		HeapAllocMB: float64(m.HeapAlloc) / 1024 / 1024,
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
	}

	if pm.proc == nil {
		stats.CollectError = "process info unavailable"
		return stats
	}

	if cpu, err := pm.proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	} else {
		stats.CollectError = err.Error()
	}
	if mem, err := pm.proc.MemoryInfo(); err == nil && mem != nil {
		stats.RSSMB = float64(mem.RSS) / 1024 / 1024
	}
	if n, err := pm.proc.NumThreads(); err == nil {
		stats.NumThreads = n
	}
	return stats
}
