package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/HuaTug/video-comment/pkg/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts    map[string]int64
	processed map[string]bool
	incrErr   error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, processed: map[string]bool{}}
}

func (f *fakeCounter) IncrementVideoCommentCount(_ context.Context, videoID string, delta int64) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[videoID] += delta
	if f.counts[videoID] < 0 {
		f.counts[videoID] = 0
	}
	return f.counts[videoID], nil
}

func (f *fakeCounter) MarkEventProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	if f.processed[eventID] {
		return false, nil
	}
	f.processed[eventID] = true
	return true, nil
}

func (f *fakeCounter) UnmarkEventProcessed(_ context.Context, eventID string) error {
	delete(f.processed, eventID)
	return nil
}

func TestCommentEventHandler(t *testing.T) {
	ctx := context.Background()
	comment := &model.Comment{ID: "c1", Video: "v1", Owner: "u1"}

	t.Run("created and deleted adjust the count", func(t *testing.T) {
		counter := newFakeCounter()
		h := NewCommentEventHandler(counter)
		require.NoError(t, h.HandleCommentEvent(ctx, mq.NewCommentEvent(mq.CommentCreated, comment, "u1")))
		require.NoError(t, h.HandleCommentEvent(ctx, mq.NewCommentEvent(mq.CommentCreated, comment, "u1")))
		require.NoError(t, h.HandleCommentEvent(ctx, mq.NewCommentEvent(mq.CommentUpdated, comment, "u1")))
		require.NoError(t, h.HandleCommentEvent(ctx, mq.NewCommentEvent(mq.CommentDeleted, comment, "u1")))
		assert.EqualValues(t, 1, counter.counts["v1"])
	})

	t.Run("redelivery is counted once", func(t *testing.T) {
		counter := newFakeCounter()
		h := NewCommentEventHandler(counter)
		event := mq.NewCommentEvent(mq.CommentCreated, comment, "u1")
		require.NoError(t, h.HandleCommentEvent(ctx, event))
		require.NoError(t, h.HandleCommentEvent(ctx, event))
		assert.EqualValues(t, 1, counter.counts["v1"])
	})

	t.Run("failed increment can be retried", func(t *testing.T) {
		counter := newFakeCounter()
		counter.incrErr = errors.New("redis down")
		h := NewCommentEventHandler(counter)
		event := mq.NewCommentEvent(mq.CommentCreated, comment, "u1")
		assert.Error(t, h.HandleCommentEvent(ctx, event))

		counter.incrErr = nil
		require.NoError(t, h.HandleCommentEvent(ctx, event))
		assert.EqualValues(t, 1, counter.counts["v1"])
	})
}
