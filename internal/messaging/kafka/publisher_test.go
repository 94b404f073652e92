package kafka

import (
	"testing"

	"github.com/thuyngan/bookstore/internal/domain"
)

func TestNewOutboxPublisher_DefaultTopic(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, "")
	topicPublisher, ok := publisher.(*OutboxTopicPublisher)
	if !ok {
		t.Fatalf("unexpected publisher type %T", publisher)
	}
	if topicPublisher.topic != TopicOrderEvents {
		t.Fatalf("expected default topic %s, got %s", TopicOrderEvents, topicPublisher.topic)
	}
}

func TestOutboxTopicPublisher_NotInitialized(t *testing.T) {
	t.Parallel()

	publisher := &OutboxTopicPublisher{}
	if err := publisher.Publish(domain.OutboxMessage{ID: "msg-1"}); err == nil {
		t.Fatal("expected error for uninitialized publisher")
	}
}

func TestNewCatalogEvent(t *testing.T) {
	t.Parallel()

	event := NewCatalogEvent(EventTypeBookCreated, "book-1")
	if event.EventType != EventTypeBookCreated {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	if event.BookID != "book-1" {
		t.Fatalf("unexpected book id %s", event.BookID)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
}
