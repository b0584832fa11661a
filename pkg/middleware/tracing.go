package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

type headerCarrier struct {
	c *app.RequestContext
}

func (h headerCarrier) ForeachKey(handler func(key, val string) error) error {
	var err error
	h.c.Request.Header.VisitAll(func(k, v []byte) {
		if err == nil {
			err = handler(string(k), string(v))
		}
	})
	return err
}

// Tracing opens a server span per request, continuing an upstream trace when
// the request carries one. The span travels in ctx so gateway spans nest
// under it.
func Tracing() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		tracer := opentracing.GlobalTracer()
		var opts []opentracing.StartSpanOption
		if parent, err := tracer.Extract(opentracing.HTTPHeaders, headerCarrier{c}); err == nil {
			opts = append(opts, ext.RPCServerOption(parent))
		}
		span := tracer.StartSpan(string(c.Method())+" "+c.FullPath(), opts...)
		defer span.Finish()

		ext.HTTPMethod.Set(span, string(c.Method()))
		ext.HTTPUrl.Set(span, string(c.Path()))
		c.Next(opentracing.ContextWithSpan(ctx, span))

		status := c.Response.StatusCode()
		ext.HTTPStatusCode.Set(span, uint16(status))
		if status >= 500 {
			ext.Error.Set(span, true)
		}
	}
}
