package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"
)

// CommentCacheManager caches comment list pages and per-video counters.
type CommentCacheManager struct {
	client        *redis.Client
	pageExpire    time.Duration
	counterExpire time.Duration
}

func NewCommentCacheManager(client *redis.Client, pageExpire time.Duration) *CommentCacheManager {
	if pageExpire <= 0 {
		pageExpire = 10 * time.Minute
	}
	return &CommentCacheManager{
		client:        client,
		pageExpire:    pageExpire,
		counterExpire: 24 * time.Hour,
	}
}

const (
	// VideoCommentsKey addresses one cached page: video, version, page, limit.
	VideoCommentsKey = "video:comments:%s:v:%d:page:%d:limit:%d"
	// VideoCommentsVersionKey is bumped by every write touching the video.
	VideoCommentsVersionKey = "video:comments:version:%s"
	VideoCommentCountKey    = "video:comment_count:%s"
	// ProcessedEventKey marks a consumed event id so redeliveries are skipped.
	ProcessedEventKey = "comment:event:processed:%s"
)

func PageKey(videoID string, version, page, limit int64) string {
	return fmt.Sprintf(VideoCommentsKey, videoID, version, page, limit)
}

func (ccm *CommentCacheManager) version(ctx context.Context, videoID string) (int64, error) {
	v, err := ccm.client.Get(ctx, fmt.Sprintf(VideoCommentsVersionKey, videoID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

// GetCommentPage looks the page up under the current version of the video.
// It returns a nil page on a miss, together with the version it looked
// under; a caller filling the miss must hand that version to SetCommentPage.
func (ccm *CommentCacheManager) GetCommentPage(ctx context.Context, videoID string, opts model.PageOptions) (*model.CommentPage, int64, error) {
	version, err := ccm.version(ctx, videoID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get comment page version: %w", err)
	}

	data, err := ccm.client.Get(ctx, PageKey(videoID, version, opts.Page, opts.Limit)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, version, nil
		}
		return nil, version, fmt.Errorf("failed to get cached comment page: %w", err)
	}

	var page model.CommentPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, version, fmt.Errorf("failed to unmarshal comment page: %w", err)
	}
	return &page, version, nil
}

// SetCommentPage stores page under the version observed before the store was
// read. If a write bumped the version in between, the page lands under a key
// nobody reads again and expires unseen.
func (ccm *CommentCacheManager) SetCommentPage(ctx context.Context, videoID string, opts model.PageOptions, version int64, page *model.CommentPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal comment page: %w", err)
	}
	return ccm.client.Set(ctx, PageKey(videoID, version, opts.Page, opts.Limit), data, ccm.pageExpire).Err()
}

// InvalidateVideo bumps the page version of a video. Pages cached under the
// previous version are no longer addressed and expire on their own.
func (ccm *CommentCacheManager) InvalidateVideo(ctx context.Context, videoID string) error {
	key := fmt.Sprintf(VideoCommentsVersionKey, videoID)
	pipe := ccm.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ccm.counterExpire)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to bump comment page version: %w", err)
	}
	return nil
}

func (ccm *CommentCacheManager) IncrementVideoCommentCount(ctx context.Context, videoID string, delta int64) (int64, error) {
	key := fmt.Sprintf(VideoCommentCountKey, videoID)

	count, err := ccm.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment video comment count: %w", err)
	}
	if count < 0 {
		hlog.Warnf("Video %s comment count went negative (%d), resetting", videoID, count)
		count = 0
		if err := ccm.client.Set(ctx, key, 0, ccm.counterExpire).Err(); err != nil {
			return 0, fmt.Errorf("failed to reset video comment count: %w", err)
		}
		return count, nil
	}

	ccm.client.Expire(ctx, key, ccm.counterExpire)
	return count, nil
}

// GetVideoCommentCount returns -1 on a cache miss.
func (ccm *CommentCacheManager) GetVideoCommentCount(ctx context.Context, videoID string) (int64, error) {
	key := fmt.Sprintf(VideoCommentCountKey, videoID)

	count, err := ccm.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return -1, nil
		}
		return 0, fmt.Errorf("failed to get video comment count: %w", err)
	}
	return count, nil
}

// MarkEventProcessed records eventID and reports whether this call was the
// first to do so.
func (ccm *CommentCacheManager) MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	ok, err := ccm.client.SetNX(ctx, fmt.Sprintf(ProcessedEventKey, eventID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event processed: %w", err)
	}
	return ok, nil
}

// UnmarkEventProcessed clears the marker so a failed event can be retried.
func (ccm *CommentCacheManager) UnmarkEventProcessed(ctx context.Context, eventID string) error {
	return ccm.client.Del(ctx, fmt.Sprintf(ProcessedEventKey, eventID)).Err()
}
