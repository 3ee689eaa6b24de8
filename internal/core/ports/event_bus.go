package ports

import "context"

// TopicNotificationCreated carries a *domain.Notification once the
// transaction that stored it has committed.
const TopicNotificationCreated = "notification:created"

// Event wraps a payload published on a topic.
type Event struct {
	Topic string
	Data  any
}

// EventHandler consumes events of one topic.
type EventHandler func(ctx context.Context, event Event) error

// EventBus is the in-process pub/sub used for post-commit side effects.
type EventBus interface {
	// Publish hands data to every subscriber of topic without waiting for them.
	Publish(ctx context.Context, topic string, data any) error

	// Subscribe registers handler for topic.
	Subscribe(topic string, handler EventHandler)
}
