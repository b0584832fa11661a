package system

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

var startedAt = time.Now()

// Health reports liveness plus host CPU and memory usage. Stat failures are
// logged and leave the field at zero; the endpoint itself always answers 200.
func Health(ctx context.Context, c *app.RequestContext) {
	var cpuPercent float64
	if percents, err := cpu.Percent(0, false); err != nil {
		hlog.CtxWarnf(ctx, "read cpu usage: %v", err)
	} else if len(percents) > 0 {
		cpuPercent = percents[0]
	}

	var memPercent float64
	var memUsed, memTotal uint64
	if vm, err := mem.VirtualMemory(); err != nil {
		hlog.CtxWarnf(ctx, "read memory usage: %v", err)
	} else {
		memPercent = vm.UsedPercent
		memUsed = vm.Used
		memTotal = vm.Total
	}

	c.JSON(consts.StatusOK, utils.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		"cpu_percent":    cpuPercent,
		"memory": utils.H{
			"used_percent": memPercent,
			"used":         memUsed,
			"total":        memTotal,
		},
	})
}
