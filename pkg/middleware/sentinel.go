package middleware

import (
	"context"

	"github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/pkg/errors"
)

// InitSentinel starts sentinel with in-memory defaults and installs a
// reject-on-excess QPS rule per resource. A threshold <= 0 leaves the
// resource unlimited.
func InitSentinel(thresholds map[string]float64) error {
	if err := api.InitDefault(); err != nil {
		return errors.Wrap(err, "init sentinel")
	}
	return LoadFlowRules(thresholds)
}

func LoadFlowRules(thresholds map[string]float64) error {
	rules := make([]*flow.Rule, 0, len(thresholds))
	for resource, qps := range thresholds {
		if qps <= 0 {
			continue
		}
		rules = append(rules, &flow.Rule{
			Resource:               resource,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              qps,
			StatIntervalInMs:       1000,
		})
	}
	if _, err := flow.LoadRules(rules); err != nil {
		return errors.Wrap(err, "load flow rules")
	}
	return nil
}

// Sentinel guards the following handlers with resource. blocked writes the
// rejection; the chain is aborted.
func Sentinel(resource string, blocked app.HandlerFunc) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		entry, blockErr := api.Entry(resource, api.WithTrafficType(base.Inbound))
		if blockErr != nil {
			blocked(ctx, c)
			c.Abort()
			return
		}
		defer entry.Exit()
		c.Next(ctx)
	}
}
