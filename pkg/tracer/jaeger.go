package tracer

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// InitJaeger installs a jaeger tracer as the global opentracing tracer. When
// disabled the global no-op tracer is kept and the returned closer does
// nothing.
func InitJaeger(service, agentAddr string, enabled bool) (io.Closer, error) {
	if !enabled {
		return nopCloser{}, nil
	}
	cfg := &jaegercfg.Configuration{
		ServiceName: service,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           false,
			LocalAgentHostPort: agentAddr,
		},
	}
	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaeger.StdLogger))
	if err != nil {
		return nil, fmt.Errorf("cannot init jaeger: %w", err)
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.Infof("jaeger tracer for %s reporting to %s", service, agentAddr)
	return closer, nil
}
