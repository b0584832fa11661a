package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
)

func (h *CommentHandler) CreateComment(ctx context.Context, c *app.RequestContext) error {
	var param CreateCommentParam
	if err := bind(c, &param); err != nil {
		return err
	}
	owner, err := callerID(c)
	if err != nil {
		return err
	}
	comment, err := h.svc.CreateComment(ctx, param.VideoId, owner, param.Content)
	if err != nil {
		return err
	}
	SendSuccess(c, "Comment created successfully", comment)
	return nil
}
