package main

import (
	"context"
	"time"

	handlers "github.com/HuaTug/video-comment/cmd/api/handlers/comment"
	"github.com/HuaTug/video-comment/cmd/api/router"
	"github.com/HuaTug/video-comment/cmd/api/router/authfunc"
	"github.com/HuaTug/video-comment/cmd/interaction/dal"
	"github.com/HuaTug/video-comment/cmd/interaction/service"
	"github.com/HuaTug/video-comment/config"
	"github.com/HuaTug/video-comment/pkg/cache"
	"github.com/HuaTug/video-comment/pkg/constants"
	"github.com/HuaTug/video-comment/pkg/errno"
	"github.com/HuaTug/video-comment/pkg/middleware"
	"github.com/HuaTug/video-comment/pkg/mq"
	"github.com/HuaTug/video-comment/pkg/security"
	"github.com/HuaTug/video-comment/pkg/tracer"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/cors"
	"github.com/pkg/errors"
)

// initMessageQueue connects the event producer. Events are best effort, so a
// broker that is disabled or unreachable degrades to a no-op producer.
func initMessageQueue() (mq.MessageProducer, func()) {
	if !config.ConfigInfo.RabbitMq.Enabled {
		hlog.Info("RabbitMQ disabled, comment events will not be published")
		return mq.NopProducer{}, func() {}
	}
	producer, err := mq.NewProducer(config.RabbitMqURL())
	if err != nil {
		hlog.Warnf("Failed to initialize message queue producer, continuing without events: %v", err)
		return mq.NopProducer{}, func() {}
	}
	hlog.Info("Message queue producer initialized successfully")
	return producer, func() { _ = producer.Close() }
}

func main() {
	config.Init()
	conf := config.ConfigInfo

	closer, err := tracer.InitJaeger(constants.APIServiceName, conf.Jaeger.AgentAddr, conf.Jaeger.Enabled)
	if err != nil {
		hlog.Fatalf("init tracer: %v", err)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	gateway, rdb, closeStore, err := dal.Init(ctx)
	cancel()
	if err != nil {
		hlog.Fatalf("init comment store: %v", err)
	}
	defer closeStore()

	producer, closeProducer := initMessageQueue()
	defer closeProducer()

	if err := authfunc.JwtInit(conf.Jwt.Secret, conf.Jwt.Realm, config.Duration(conf.Jwt.Timeout, 24*time.Hour)); err != nil {
		hlog.Fatalf("%v", err)
	}
	if err := middleware.InitSentinel(map[string]float64{
		constants.CreateCommentResource: conf.Sentinel.CreateQPS,
	}); err != nil {
		hlog.Fatalf("%v", err)
	}

	r := server.New(
		server.WithHostPorts(conf.Server.Addr),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(conf.Server.MaxRequestBodySize),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     conf.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			hlog.SystemLogger().CtxErrorf(ctx, "[Recovery] err=%v\nstack=%s", err, stack)
			handlers.SendResponse(c, errors.Errorf("panic: %v", err), nil)
		})))
	r.Use(middleware.Metrics(), middleware.Tracing())

	svc := service.NewCommentService(gateway, producer)
	if rdb != nil && conf.RabbitMq.Enabled {
		svc.WithCountReader(cache.NewCommentCacheManager(rdb, config.Duration(conf.Redis.PageTTL, 10*time.Minute)))
	}
	if rdb != nil && conf.RateLimit.MaxComments > 0 {
		window := config.Duration(conf.RateLimit.Window, time.Minute)
		svc.WithRateLimiter(security.NewSlidingWindowLimiter(rdb, window, conf.RateLimit.MaxComments))
		hlog.Infof("Per-user comment limit: %d per %s", conf.RateLimit.MaxComments, window)
	}
	h := handlers.NewCommentHandler(svc)
	router.Register(r.Engine, h, middleware.Sentinel(constants.CreateCommentResource,
		func(ctx context.Context, c *app.RequestContext) {
			handlers.SendResponse(c, errno.TooManyRequestsErr, nil)
		}))

	r.Spin()
}
