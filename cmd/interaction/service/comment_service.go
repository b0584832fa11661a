package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/HuaTug/video-comment/cmd/interaction/dal"
	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/HuaTug/video-comment/config"
	"github.com/HuaTug/video-comment/pkg/constants"
	"github.com/HuaTug/video-comment/pkg/errno"
	"github.com/HuaTug/video-comment/pkg/metrics"
	"github.com/HuaTug/video-comment/pkg/mq"
	"github.com/HuaTug/video-comment/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// RateLimiter caps how often one user may post.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// CountReader reads the per-video comment count kept by the event consumer.
// A negative count means the counter is absent.
type CountReader interface {
	GetVideoCommentCount(ctx context.Context, videoID string) (int64, error)
}

type CommentService struct {
	gateway  dal.CommentGateway
	producer mq.MessageProducer
	limiter  RateLimiter
	counts   CountReader
}

func NewCommentService(gateway dal.CommentGateway, producer mq.MessageProducer) *CommentService {
	if producer == nil {
		producer = mq.NopProducer{}
	}
	return &CommentService{gateway: gateway, producer: producer}
}

// WithRateLimiter enables the per-user create limit.
func (s *CommentService) WithRateLimiter(l RateLimiter) *CommentService {
	s.limiter = l
	return s
}

// WithCountReader serves CountVideoComments from the consumer's counter.
func (s *CommentService) WithCountReader(r CountReader) *CommentService {
	s.counts = r
	return s
}

// checkRateLimit fails open: a limiter outage must not block commenting.
func (s *CommentService) checkRateLimit(ctx context.Context, userID string) error {
	if s.limiter == nil {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, userID)
	if err != nil {
		hlog.CtxWarnf(ctx, "Failed to check rate limit for user %s: %v", userID, err)
		return nil
	}
	if !ok {
		return errno.TooManyRequestsErr.WithMessage("Commenting too frequently, please try again later")
	}
	return nil
}

// validateCommentContent trims content and checks it is non-empty and at
// most MaxCommentLength runes.
func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errno.ParamErr.WithMessage("Comment content cannot be empty")
	}
	if utf8.RuneCountInString(content) > constants.MaxCommentLength {
		return "", errno.ParamErr.WithMessage("Comment too long, maximum 500 characters allowed")
	}
	return content, nil
}

func requireID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return errno.ParamErr.WithMessage(name + " is required")
	}
	if !utils.ValidIdentifier(id) {
		return errno.ParamErr.WithMessage("Invalid " + name)
	}
	return nil
}

// PageOptions validates raw page/limit values. nil means absent and takes
// the default; limit is capped at the configured maximum.
func PageOptions(rawPage, rawLimit *int64) (model.PageOptions, error) {
	page := int64(constants.DefaultPage)
	if rawPage != nil {
		page = *rawPage
	}
	limit := int64(config.ConfigInfo.Pagination.DefaultLimit)
	if limit <= 0 {
		limit = constants.DefaultLimit
	}
	if rawLimit != nil {
		limit = *rawLimit
	}
	if page < 1 {
		return model.PageOptions{}, errno.ParamErr.WithMessage("page must be a positive integer")
	}
	if limit < 1 {
		return model.PageOptions{}, errno.ParamErr.WithMessage("limit must be a positive integer")
	}
	maxLimit := int64(config.ConfigInfo.Pagination.MaxLimit)
	if maxLimit <= 0 {
		maxLimit = constants.MaxLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	// keeps (page-1)*limit and the window end inside int64
	if page > math.MaxInt64/limit {
		return model.PageOptions{}, errno.ParamErr.WithMessage("page is out of range")
	}
	return model.PageOptions{Page: page, Limit: limit}, nil
}

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = strconv.FormatInt(errno.ConvertErr(err).ErrCode, 10)
	}
	metrics.CommentOperations.WithLabelValues(op, result).Inc()
}

// publish is best effort: the write has already been committed.
func (s *CommentService) publish(ctx context.Context, eventType string, comment *model.Comment, userID string) {
	err := s.producer.PublishCommentEvent(ctx, mq.NewCommentEvent(eventType, comment, userID))
	if err != nil {
		metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
		hlog.CtxWarnf(ctx, "publish %s for comment %s failed: %v", eventType, comment.ID, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(eventType, "ok").Inc()
}

func (s *CommentService) ListVideoComments(ctx context.Context, videoID string, opts model.PageOptions) (page *model.CommentPage, err error) {
	defer func() { observe("list", err) }()

	if err = requireID("videoId", videoID); err != nil {
		return nil, err
	}
	page, err = s.gateway.AggregatePaginate(ctx, videoID, opts)
	if err != nil {
		return nil, errors.WithMessagef(err, "list comments of video %s", videoID)
	}
	return page, nil
}

func (s *CommentService) CreateComment(ctx context.Context, videoID, ownerID, content string) (comment *model.Comment, err error) {
	defer func() { observe("create", err) }()

	if err = requireID("videoId", videoID); err != nil {
		return nil, err
	}
	if err = requireID("owner", ownerID); err != nil {
		return nil, err
	}
	if content, err = validateCommentContent(content); err != nil {
		return nil, err
	}
	if err = s.checkRateLimit(ctx, ownerID); err != nil {
		return nil, err
	}
	hlog.CtxDebugf(ctx, "create comment video=%s owner=%s length=%d", videoID, ownerID, utf8.RuneCountInString(content))

	comment, err = s.gateway.Create(ctx, &model.Comment{
		Content: content,
		Video:   videoID,
		Owner:   ownerID,
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "create comment on video %s", videoID)
	}
	s.publish(ctx, mq.CommentCreated, comment, ownerID)
	return comment, nil
}

// UpdateComment replaces the content of a comment. The caller is recorded on
// the event but ownership is not checked.
func (s *CommentService) UpdateComment(ctx context.Context, commentID, content, callerID string) (comment *model.Comment, err error) {
	defer func() { observe("update", err) }()

	if err = requireID("commentId", commentID); err != nil {
		return nil, err
	}
	if content, err = validateCommentContent(content); err != nil {
		return nil, err
	}
	comment, err = s.gateway.FindByIDAndUpdate(ctx, commentID, content)
	if err != nil {
		return nil, errors.WithMessagef(err, "update comment %s", commentID)
	}
	s.publish(ctx, mq.CommentUpdated, comment, callerID)
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, commentID, callerID string) (comment *model.Comment, err error) {
	defer func() { observe("delete", err) }()

	if err = requireID("commentId", commentID); err != nil {
		return nil, err
	}
	comment, err = s.gateway.FindByIDAndDelete(ctx, commentID)
	if err != nil {
		return nil, errors.WithMessagef(err, "delete comment %s", commentID)
	}
	hlog.CtxDebugf(ctx, "deleted comment %s video=%s owner=%s", comment.ID, comment.Video, comment.Owner)
	s.publish(ctx, mq.CommentDeleted, comment, callerID)
	return comment, nil
}

// CountVideoComments returns the number of comments on a video. The counter
// kept by the event consumer answers when present; otherwise the store
// counts.
func (s *CommentService) CountVideoComments(ctx context.Context, videoID string) (count int64, err error) {
	defer func() { observe("count", err) }()

	if err = requireID("videoId", videoID); err != nil {
		return 0, err
	}
	if s.counts != nil {
		cached, cerr := s.counts.GetVideoCommentCount(ctx, videoID)
		if cerr != nil {
			hlog.CtxWarnf(ctx, "Failed to read comment count of video %s: %v", videoID, cerr)
		} else if cached >= 0 {
			return cached, nil
		}
	}
	page, err := s.gateway.AggregatePaginate(ctx, videoID, model.PageOptions{Page: 1, Limit: 1})
	if err != nil {
		return 0, errors.WithMessagef(err, "count comments of video %s", videoID)
	}
	return page.TotalDocs, nil
}
