package handler

import (
	"runtime"
	"time"

	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

var startTime = time.Now()

// HealthHandler is the unauthenticated liveness probe, with enough system
// detail to be useful on a dashboard.
func HealthHandler(c *gin.Context) {
	stats := gin.H{
		"status":     "ok",
		"uptime":     time.Since(startTime).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
	}

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		stats["cpu_percent"] = percentages[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memory_used_percent"] = vm.UsedPercent
	}

	utils.Success(c, stats)
}
