package dal

import (
	"context"

	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// PageCache is the part of cache.CommentCacheManager the gateway needs.
type PageCache interface {
	GetCommentPage(ctx context.Context, videoID string, opts model.PageOptions) (*model.CommentPage, int64, error)
	SetCommentPage(ctx context.Context, videoID string, opts model.PageOptions, version int64, page *model.CommentPage) error
	InvalidateVideo(ctx context.Context, videoID string) error
}

// CachedGateway serves list pages from the cache and invalidates the pages of
// a video after every successful write to it. Cache errors only cost a trip
// to the store.
type CachedGateway struct {
	next  CommentGateway
	cache PageCache
}

func NewCachedGateway(next CommentGateway, cache PageCache) *CachedGateway {
	return &CachedGateway{next: next, cache: cache}
}

func (g *CachedGateway) invalidate(ctx context.Context, videoID string) {
	if err := g.cache.InvalidateVideo(ctx, videoID); err != nil {
		hlog.CtxWarnf(ctx, "Failed to invalidate comment pages of video %s: %v", videoID, err)
	}
}

func (g *CachedGateway) Create(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	created, err := g.next.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	g.invalidate(ctx, created.Video)
	return created, nil
}

func (g *CachedGateway) FindByIDAndUpdate(ctx context.Context, commentID, content string) (*model.Comment, error) {
	updated, err := g.next.FindByIDAndUpdate(ctx, commentID, content)
	if err != nil {
		return nil, err
	}
	g.invalidate(ctx, updated.Video)
	return updated, nil
}

func (g *CachedGateway) FindByIDAndDelete(ctx context.Context, commentID string) (*model.Comment, error) {
	deleted, err := g.next.FindByIDAndDelete(ctx, commentID)
	if err != nil {
		return nil, err
	}
	g.invalidate(ctx, deleted.Video)
	return deleted, nil
}

// AggregatePaginate fills a miss under the version read before the store, so
// a write racing with the fill cannot leave a stale page addressable.
func (g *CachedGateway) AggregatePaginate(ctx context.Context, videoID string, opts model.PageOptions) (*model.CommentPage, error) {
	page, version, err := g.cache.GetCommentPage(ctx, videoID, opts)
	cacheable := err == nil
	if err != nil {
		hlog.CtxWarnf(ctx, "Failed to read cached comment page of video %s: %v", videoID, err)
	} else if page != nil {
		return page, nil
	}

	page, err = g.next.AggregatePaginate(ctx, videoID, opts)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := g.cache.SetCommentPage(ctx, videoID, opts, version, page); err != nil {
			hlog.CtxWarnf(ctx, "Failed to cache comment page of video %s: %v", videoID, err)
		}
	}
	return page, nil
}
