package handlerwrapper

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicRoutingPublisher publishes every message to the topic named in its metadata, so a single
// router handler can emit events for several topics.
type TopicRoutingPublisher struct {
	pub message.Publisher
}

var _ message.Publisher = (*TopicRoutingPublisher)(nil)

// NewTopicRoutingPublisher wraps pub.
func NewTopicRoutingPublisher(pub message.Publisher) *TopicRoutingPublisher {
	return &TopicRoutingPublisher{pub: pub}
}

// Publish sends each message to its metadata topic, falling back to topic.
func (p *TopicRoutingPublisher) Publish(topic string, messages ...*message.Message) error {
	for _, m := range messages {
		target := m.Metadata.Get(MetadataTopic)
		if target == "" {
			target = topic
		}
		if target == "" {
			return fmt.Errorf("message %s has no topic", m.UUID)
		}
		if err := p.pub.Publish(target, m); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", target, err)
		}
	}
	return nil
}

// Close closes the wrapped publisher.
func (p *TopicRoutingPublisher) Close() error {
	return p.pub.Close()
}
