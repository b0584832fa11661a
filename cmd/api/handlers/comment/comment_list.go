package handlers

import (
	"context"

	"github.com/HuaTug/video-comment/cmd/interaction/service"
	"github.com/cloudwego/hertz/pkg/app"
)

// ListComment serves GET /videos/:videoId/comments.
func (h *CommentHandler) ListComment(ctx context.Context, c *app.RequestContext) error {
	var param ListCommentParam
	if err := bind(c, &param); err != nil {
		return err
	}
	opts, err := service.PageOptions(param.Page, param.Limit)
	if err != nil {
		return err
	}
	page, err := h.svc.ListVideoComments(ctx, param.VideoId, opts)
	if err != nil {
		return err
	}
	SendSuccess(c, "Comments retrieved successfully", page)
	return nil
}
