package handlers

import (
	"context"

	"github.com/HuaTug/video-comment/cmd/interaction/service"
	"github.com/HuaTug/video-comment/pkg/constants"
	"github.com/HuaTug/video-comment/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// Response is the envelope of every JSON reply. Data is omitted on errors.
type Response struct {
	StatusCode int64       `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// SendResponse writes the envelope with the HTTP status taken from the error
// code. Unexpected errors are logged with their stack and reported to the
// client only as a generic 500.
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	Err := errno.ConvertErr(err)
	switch {
	case err == nil:
	case errno.IsClientErr(err):
		hlog.Debugf("%s %s rejected: %v", c.Method(), c.Path(), err)
	default:
		hlog.Errorf("%s %s failed: %+v", c.Method(), c.Path(), err)
	}
	resp := Response{
		StatusCode: Err.ErrCode,
		Message:    Err.ErrMsg,
		Success:    Err.ErrCode < errno.ParamErrCode,
	}
	if resp.Success {
		resp.Data = data
	}
	c.JSON(int(Err.ErrCode), resp)
}

// SendSuccess replies 200 with a custom message.
func SendSuccess(c *app.RequestContext, message string, data interface{}) {
	SendResponse(c, errno.Success.WithMessage(message), data)
}

// HandlerFunc is a request handler that reports failure by returning it.
type HandlerFunc func(ctx context.Context, c *app.RequestContext) error

// Wrap adapts a HandlerFunc to hertz, routing any returned error (and any
// panic) to SendResponse.
func Wrap(h HandlerFunc) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if r := recover(); r != nil {
				hlog.CtxErrorf(ctx, "panic in %s: %v", c.Path(), r)
				SendResponse(c, errors.Errorf("panic: %v", r), nil)
			}
		}()
		if err := h(ctx, c); err != nil {
			SendResponse(c, err, nil)
		}
	}
}

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

type ListCommentParam struct {
	VideoId string `path:"videoId"`
	Page    *int64 `query:"page"`
	Limit   *int64 `query:"limit"`
}

type CountCommentParam struct {
	VideoId string `path:"videoId"`
}

type CreateCommentParam struct {
	VideoId string `path:"videoId"`
	Content string `json:"content" form:"content"`
}

type UpdateCommentParam struct {
	CommentId string `path:"commentId"`
	Content   string `json:"content" form:"content"`
}

type DeleteCommentParam struct {
	CommentId string `path:"commentId"`
}

func bind(c *app.RequestContext, param interface{}) error {
	if err := c.BindAndValidate(param); err != nil {
		return errno.ParamErr.WithMessage("Invalid request: " + err.Error())
	}
	return nil
}

// callerID returns the user id the JWT middleware stored on the request.
func callerID(c *app.RequestContext) (string, error) {
	v, ok := c.Get(constants.IdentityKey)
	if !ok {
		return "", errno.AuthorizationFailedErr
	}
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", errno.AuthorizationFailedErr
		}
		return id, nil
	default:
		return "", errno.AuthorizationFailedErr.WithMessage("Malformed identity claim")
	}
}
