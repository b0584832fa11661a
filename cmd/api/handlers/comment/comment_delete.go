package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
)

func (h *CommentHandler) DeleteComment(ctx context.Context, c *app.RequestContext) error {
	var param DeleteCommentParam
	if err := bind(c, &param); err != nil {
		return err
	}
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	comment, err := h.svc.DeleteComment(ctx, param.CommentId, caller)
	if err != nil {
		return err
	}
	SendSuccess(c, "Comment deleted successfully", comment)
	return nil
}
