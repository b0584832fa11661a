package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/HuaTug/video-comment/pkg/metrics"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records request count and latency labelled by the matched route
// template, not the raw path.
func Metrics() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := string(c.Method())
		metrics.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(c.Response.StatusCode())).Inc()
		metrics.RequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the prometheus exposition format.
func MetricsHandler() app.HandlerFunc {
	return adaptor.HertzHandler(promhttp.Handler())
}
