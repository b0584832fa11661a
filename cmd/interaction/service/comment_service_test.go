package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HuaTug/video-comment/cmd/interaction/dal/memory"
	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/HuaTug/video-comment/pkg/errno"
	"github.com/HuaTug/video-comment/pkg/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	mu     sync.Mutex
	events []*mq.CommentEvent
	err    error
}

func (p *recordingProducer) PublishCommentEvent(_ context.Context, event *mq.CommentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingProducer) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeLimiter struct {
	max  int
	seen map[string]int
	err  error
}

func (l *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.seen == nil {
		l.seen = map[string]int{}
	}
	l.seen[key]++
	return l.seen[key] <= l.max, nil
}

func newService() (*CommentService, *memory.CommentStore, *recordingProducer) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int64
	store := memory.NewCommentStore().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	producer := &recordingProducer{}
	return NewCommentService(store, producer), store, producer
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("stores trimmed content", func(t *testing.T) {
		svc, store, producer := newService()
		c, err := svc.CreateComment(ctx, "v1", "u1", "  hello  ")
		require.NoError(t, err)
		assert.Equal(t, "hello", c.Content)
		assert.Equal(t, "v1", c.Video)
		assert.Equal(t, "u1", c.Owner)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, 1, store.Len())
		assert.Equal(t, []string{mq.CommentCreated}, producer.types())
	})

	cases := []struct {
		name, video, owner, content string
	}{
		{"missing video", "", "u1", "hi"},
		{"missing owner", "v1", "", "hi"},
		{"blank content", "v1", "u1", "   \n"},
		{"too long", "v1", "u1", strings.Repeat("é", 501)},
		{"video with space", "v 1", "u1", "hi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, producer := newService()
			_, err := svc.CreateComment(ctx, tc.video, tc.owner, tc.content)
			assert.True(t, errors.Is(err, errno.ParamErr))
			assert.Equal(t, 0, store.Len())
			assert.Empty(t, producer.types())
		})
	}

	t.Run("500 runes is accepted", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.CreateComment(ctx, "v1", "u1", strings.Repeat("é", 500))
		assert.NoError(t, err)
	})

	t.Run("rate limited", func(t *testing.T) {
		svc, store, _ := newService()
		limiter := &fakeLimiter{max: 1}
		svc.WithRateLimiter(limiter)
		_, err := svc.CreateComment(ctx, "v1", "u1", "one")
		require.NoError(t, err)
		_, err = svc.CreateComment(ctx, "v1", "u1", "two")
		assert.True(t, errors.Is(err, errno.TooManyRequestsErr))
		_, err = svc.CreateComment(ctx, "v1", "u2", "other user")
		assert.NoError(t, err)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("limiter outage fails open", func(t *testing.T) {
		svc, _, _ := newService()
		svc.WithRateLimiter(&fakeLimiter{err: errors.New("redis down")})
		_, err := svc.CreateComment(ctx, "v1", "u1", "hi")
		assert.NoError(t, err)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		svc, store, producer := newService()
		producer.err = errors.New("broker down")
		_, err := svc.CreateComment(ctx, "v1", "u1", "hi")
		assert.NoError(t, err)
		assert.Equal(t, 1, store.Len())
	})
}

func TestListVideoComments(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	var ids []string
	for i := 0; i < 5; i++ {
		c, err := svc.CreateComment(ctx, "v1", "u1", "c")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	_, err := svc.CreateComment(ctx, "v2", "u1", "other")
	require.NoError(t, err)

	page, err := svc.ListVideoComments(ctx, "v1", model.PageOptions{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Docs, 2)
	// newest first: ids[4], ids[3] | ids[2], ids[1] | ids[0]
	assert.Equal(t, ids[2], page.Docs[0].ID)
	assert.Equal(t, ids[1], page.Docs[1].ID)
	assert.EqualValues(t, 5, page.TotalDocs)
	assert.EqualValues(t, 3, page.TotalPages)

	empty, err := svc.ListVideoComments(ctx, "nothing-here", model.PageOptions{Page: 1, Limit: 15})
	require.NoError(t, err)
	assert.NotNil(t, empty.Docs)
	assert.Empty(t, empty.Docs)

	_, err = svc.ListVideoComments(ctx, " ", model.PageOptions{Page: 1, Limit: 15})
	assert.True(t, errors.Is(err, errno.ParamErr))
}

func TestUpdateComment(t *testing.T) {
	ctx := context.Background()
	svc, _, producer := newService()
	c, err := svc.CreateComment(ctx, "v1", "u1", "before")
	require.NoError(t, err)

	updated, err := svc.UpdateComment(ctx, c.ID, "after", "u1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "after", updated.Content)
	assert.Equal(t, "v1", updated.Video)
	assert.Equal(t, "u1", updated.Owner)
	assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))

	_, err = svc.UpdateComment(ctx, "ffffffffffffffffffffffff", "after", "u1")
	assert.True(t, errors.Is(err, errno.NotFoundErr))

	_, err = svc.UpdateComment(ctx, c.ID, "", "u1")
	assert.True(t, errors.Is(err, errno.ParamErr))

	assert.Equal(t, []string{mq.CommentCreated, mq.CommentUpdated}, producer.types())
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	svc, store, producer := newService()
	c, err := svc.CreateComment(ctx, "v1", "u1", "bye")
	require.NoError(t, err)

	deleted, err := svc.DeleteComment(ctx, c.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)
	assert.Equal(t, 0, store.Len())

	_, err = svc.DeleteComment(ctx, c.ID, "u1")
	assert.True(t, errors.Is(err, errno.NotFoundErr))

	_, err = svc.DeleteComment(ctx, "", "u1")
	assert.True(t, errors.Is(err, errno.ParamErr))

	assert.Equal(t, []string{mq.CommentCreated, mq.CommentDeleted}, producer.types())
}

func TestPageOptions(t *testing.T) {
	ptr := func(v int64) *int64 { return &v }

	opts, err := PageOptions(nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, opts.Page)
	assert.EqualValues(t, 15, opts.Limit)

	opts, err = PageOptions(ptr(3), ptr(1000))
	require.NoError(t, err)
	assert.EqualValues(t, 3, opts.Page)
	assert.EqualValues(t, 100, opts.Limit)

	for _, tc := range []struct {
		name        string
		page, limit *int64
	}{
		{"zero page", ptr(0), nil},
		{"negative page", ptr(-1), ptr(10)},
		{"zero limit", nil, ptr(0)},
		{"negative limit", ptr(1), ptr(-5)},
		{"skip overflows", ptr(4611686018427387905), ptr(4)},
		{"skip overflows at capped limit", ptr(math.MaxInt64/100 + 1), ptr(1000)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PageOptions(tc.page, tc.limit)
			assert.True(t, errors.Is(err, errno.ParamErr))
		})
	}

	last, err := PageOptions(ptr(math.MaxInt64/4), ptr(4))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, last.Skip(), int64(0))
	assert.LessOrEqual(t, last.Skip(), int64(math.MaxInt64-4))
}

type fakeCountReader struct {
	count int64
	err   error
}

func (f fakeCountReader) GetVideoCommentCount(context.Context, string) (int64, error) {
	return f.count, f.err
}

func TestCountVideoComments(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()
	for i := 0; i < 3; i++ {
		_, err := svc.CreateComment(ctx, "v1", "u1", "c")
		require.NoError(t, err)
	}

	count, err := svc.CountVideoComments(ctx, "v1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	svc.WithCountReader(fakeCountReader{count: 42})
	count, err = svc.CountVideoComments(ctx, "v1")
	require.NoError(t, err)
	assert.EqualValues(t, 42, count)

	// an absent or unreadable counter falls back to the store
	svc.WithCountReader(fakeCountReader{count: -1})
	count, err = svc.CountVideoComments(ctx, "v1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	svc.WithCountReader(fakeCountReader{err: errors.New("redis down")})
	count, err = svc.CountVideoComments(ctx, "v1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	_, err = svc.CountVideoComments(ctx, "")
	assert.True(t, errors.Is(err, errno.ParamErr))
}
