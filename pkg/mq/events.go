package mq

import (
	"time"

	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/google/uuid"
)

const (
	CommentCreated = "comment.created"
	CommentUpdated = "comment.updated"
	CommentDeleted = "comment.deleted"
)

// CommentEvent is published after a comment write has been committed.
type CommentEvent struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"` // one of the Comment* constants, also the routing key
	Comment   *model.Comment `json:"comment"`
	UserID    string         `json:"user_id,omitempty"` // caller, when known
	VideoID   string         `json:"video_id"`
	Timestamp int64          `json:"timestamp"`
}

func NewCommentEvent(eventType string, comment *model.Comment, userID string) *CommentEvent {
	return &CommentEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		Comment:   comment,
		UserID:    userID,
		VideoID:   comment.Video,
		Timestamp: time.Now().UnixMilli(),
	}
}

const (
	CommentEventExchange = "comment_events"
	CommentEventQueue    = "comment_event_queue"
	// CommentEventBinding routes every comment.* event to the queue.
	CommentEventBinding = "comment.*"
)
