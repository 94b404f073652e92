package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated EventType = "order.created"

	// Catalog события
	EventTypeBookCreated EventType = "book.created"
	EventTypeBookUpdated EventType = "book.updated"
	EventTypeBookDeleted EventType = "book.deleted"
)

// Topics для Kafka
const (
	TopicOrderEvents   = "bookstore.order.events"
	TopicCatalogEvents = "bookstore.catalog.events"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType      EventType `json:"event_type"`
	OrderID        string    `json:"order_id"`
	CustomerID     string    `json:"customer_id"`
	StaffID        string    `json:"staff_id"`
	SubtotalMinor  int64     `json:"subtotal_minor"`
	PromotionMinor int64     `json:"promotion_minor"`
	TotalMinor     int64     `json:"total_minor"`
	ItemsCount     int       `json:"items_count"`
	Timestamp      time.Time `json:"timestamp"`
}

// CatalogEvent представляет событие изменения каталога
type CatalogEvent struct {
	EventType EventType `json:"event_type"`
	BookID    string    `json:"book_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCatalogEvent создает новое событие каталога
func NewCatalogEvent(eventType EventType, bookID string) *CatalogEvent {
	return &CatalogEvent{
		EventType: eventType,
		BookID:    bookID,
		Timestamp: time.Now().UTC(),
	}
}
