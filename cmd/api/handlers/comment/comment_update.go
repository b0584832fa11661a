package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
)

func (h *CommentHandler) UpdateComment(ctx context.Context, c *app.RequestContext) error {
	var param UpdateCommentParam
	if err := bind(c, &param); err != nil {
		return err
	}
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	comment, err := h.svc.UpdateComment(ctx, param.CommentId, param.Content, caller)
	if err != nil {
		return err
	}
	SendSuccess(c, "Comment updated successfully", comment)
	return nil
}
