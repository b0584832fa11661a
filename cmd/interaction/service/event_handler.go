package service

import (
	"context"
	"fmt"
	"time"

	"github.com/HuaTug/video-comment/pkg/mq"
	"github.com/sirupsen/logrus"
)

// CommentCounter is the part of the redis cache the event handler drives.
type CommentCounter interface {
	IncrementVideoCommentCount(ctx context.Context, videoID string, delta int64) (int64, error)
	MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	UnmarkEventProcessed(ctx context.Context, eventID string) error
}

const processedEventTTL = 24 * time.Hour

// CommentEventHandler keeps the per-video comment count in step with
// created and deleted events. Updates leave the count alone.
type CommentEventHandler struct {
	counter CommentCounter
}

func NewCommentEventHandler(counter CommentCounter) *CommentEventHandler {
	return &CommentEventHandler{counter: counter}
}

func (h *CommentEventHandler) HandleCommentEvent(ctx context.Context, event *mq.CommentEvent) error {
	var delta int64
	switch event.Type {
	case mq.CommentCreated:
		delta = 1
	case mq.CommentDeleted:
		delta = -1
	case mq.CommentUpdated:
		logrus.Debugf("comment %s updated on video %s", commentID(event), event.VideoID)
		return nil
	default:
		logrus.Warnf("Unknown comment event type %q (event %s)", event.Type, event.EventID)
		return nil
	}

	first, err := h.counter.MarkEventProcessed(ctx, event.EventID, processedEventTTL)
	if err != nil {
		return err
	}
	if !first {
		logrus.Infof("Skipping duplicate comment event %s", event.EventID)
		return nil
	}

	count, err := h.counter.IncrementVideoCommentCount(ctx, event.VideoID, delta)
	if err != nil {
		if uerr := h.counter.UnmarkEventProcessed(ctx, event.EventID); uerr != nil {
			logrus.Errorf("Failed to unmark event %s: %v", event.EventID, uerr)
		}
		return fmt.Errorf("update comment count of video %s: %w", event.VideoID, err)
	}
	logrus.Infof("Video %s comment count is now %d after %s", event.VideoID, count, event.Type)
	return nil
}

func commentID(event *mq.CommentEvent) string {
	if event.Comment == nil {
		return ""
	}
	return event.Comment.ID
}
