package router

import (
	handlers "github.com/HuaTug/video-comment/cmd/api/handlers/comment"
	"github.com/HuaTug/video-comment/cmd/api/handlers/system"
	"github.com/HuaTug/video-comment/cmd/api/router/authfunc"
	"github.com/HuaTug/video-comment/pkg/middleware"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/route"
)

// Register mounts the comment API. createGuards run before addComment, after
// authentication; the server passes the sentinel flow guard here.
func Register(r *route.Engine, h *handlers.CommentHandler, createGuards ...app.HandlerFunc) {
	r.GET("/health", system.Health)
	r.GET("/metrics", middleware.MetricsHandler())

	v1 := r.Group("/api/v1")

	videos := v1.Group("/videos")
	videos.GET("/:videoId/comments", handlers.Wrap(h.ListComment))
	videos.GET("/:videoId/comments/count", handlers.Wrap(h.CountComment))

	create := append(authfunc.Auth(), createGuards...)
	create = append(create, handlers.Wrap(h.CreateComment))
	videos.POST("/:videoId/comments", create...)

	comments := v1.Group("/comments", authfunc.Auth()...)
	comments.PATCH("/:commentId", handlers.Wrap(h.UpdateComment))
	comments.DELETE("/:commentId", handlers.Wrap(h.DeleteComment))
}
