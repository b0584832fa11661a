package mq

import "context"

type MessageProducer interface {
	PublishCommentEvent(ctx context.Context, event *CommentEvent) error
}

var _ MessageProducer = (*Producer)(nil)
var _ MessageProducer = NopProducer{}

// NopProducer drops every event. It stands in when rabbitmq is disabled.
type NopProducer struct{}

func (NopProducer) PublishCommentEvent(context.Context, *CommentEvent) error { return nil }
