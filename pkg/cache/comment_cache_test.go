package cache

import (
	"context"
	"testing"
	"time"

	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*CommentCacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCommentCacheManager(client, time.Minute), mr
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, "video:comments:v1:v:3:page:2:limit:15", PageKey("v1", 3, 2, 15))
}

func TestCommentPageCache(t *testing.T) {
	ctx := context.Background()
	ccm, mr := newTestManager(t)
	opts := model.PageOptions{Page: 1, Limit: 15}

	miss, version, err := ccm.GetCommentPage(ctx, "v1", opts)
	require.NoError(t, err)
	assert.Nil(t, miss)
	assert.EqualValues(t, 0, version)

	page := model.NewCommentPage([]*model.Comment{{ID: "c1", Content: "hi", Video: "v1", Owner: "u"}}, 1, opts)
	require.NoError(t, ccm.SetCommentPage(ctx, "v1", opts, version, page))
	assert.Equal(t, time.Minute, mr.TTL(PageKey("v1", 0, 1, 15)))

	hit, _, err := ccm.GetCommentPage(ctx, "v1", opts)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "c1", hit.Docs[0].ID)
	assert.EqualValues(t, 1, hit.TotalDocs)

	// other page sizes of the same video are separate entries
	other, _, err := ccm.GetCommentPage(ctx, "v1", model.PageOptions{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, ccm.InvalidateVideo(ctx, "v1"))
	gone, version, err := ccm.GetCommentPage(ctx, "v1", opts)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.EqualValues(t, 1, version)
}

func TestSetCommentPageAfterInvalidateIsNotServed(t *testing.T) {
	ctx := context.Background()
	ccm, _ := newTestManager(t)
	opts := model.PageOptions{Page: 1, Limit: 15}

	_, readVersion, err := ccm.GetCommentPage(ctx, "v1", opts)
	require.NoError(t, err)

	// a write lands between the store read and the fill
	require.NoError(t, ccm.InvalidateVideo(ctx, "v1"))

	stale := model.NewCommentPage([]*model.Comment{{ID: "deleted", Video: "v1"}}, 1, opts)
	require.NoError(t, ccm.SetCommentPage(ctx, "v1", opts, readVersion, stale))

	page, _, err := ccm.GetCommentPage(ctx, "v1", opts)
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestVideoCommentCount(t *testing.T) {
	ctx := context.Background()
	ccm, _ := newTestManager(t)

	count, err := ccm.GetVideoCommentCount(ctx, "v1")
	require.NoError(t, err)
	assert.EqualValues(t, -1, count)

	count, err = ccm.IncrementVideoCommentCount(ctx, "v1", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	count, err = ccm.IncrementVideoCommentCount(ctx, "v1", -2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	count, err = ccm.GetVideoCommentCount(ctx, "v1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestMarkEventProcessed(t *testing.T) {
	ctx := context.Background()
	ccm, _ := newTestManager(t)

	first, err := ccm.MarkEventProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	again, err := ccm.MarkEventProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, ccm.UnmarkEventProcessed(ctx, "evt-1"))
	retry, err := ccm.MarkEventProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, retry)
}

func TestCacheErrorsAreReported(t *testing.T) {
	ctx := context.Background()
	ccm, mr := newTestManager(t)
	mr.SetError("LOADING")

	_, _, err := ccm.GetCommentPage(ctx, "v1", model.PageOptions{Page: 1, Limit: 15})
	assert.Error(t, err)
}
