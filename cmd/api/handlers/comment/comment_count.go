package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
)

type CommentCount struct {
	VideoId string `json:"videoId"`
	Count   int64  `json:"count"`
}

// CountComment serves GET /videos/:videoId/comments/count.
func (h *CommentHandler) CountComment(ctx context.Context, c *app.RequestContext) error {
	var param CountCommentParam
	if err := bind(c, &param); err != nil {
		return err
	}
	count, err := h.svc.CountVideoComments(ctx, param.VideoId)
	if err != nil {
		return err
	}
	SendSuccess(c, "Comment count retrieved successfully", CommentCount{VideoId: param.VideoId, Count: count})
	return nil
}
