package domain

import "time"

// BookDecrement — списание остатка по одной книге в рамках коммита заказа.
type BookDecrement struct {
	BookID string
	Qty    int32
}

// CommitRequest — единица работы атомарного коммита: вставка заказа с позициями,
// условные списания остатков книг, списание слота промоакции и постановка
// событий в outbox. Либо применяется целиком, либо не применяется вовсе.
type CommitRequest struct {
	Order          Order
	BookDecrements []BookDecrement
	// PromotionID — промоакция, чей остаток применений уменьшается на 1.
	// Пустая строка означает, что скидка не расходуется.
	PromotionID string
	Outbox      []OutboxMessage
}

// Gateway описывает требования ядра к хранилищу. Условие "остаток >= списание"
// перепроверяется в момент коммита, а не только на чтении: окно между чтением
// и записью — единственное место, где возможен oversell.
type Gateway interface {
	// GetCustomerByID возвращает клиента или ErrCustomerNotFound.
	GetCustomerByID(id string) (Customer, error)
	// GetBookByID возвращает книгу или ErrBookNotFound.
	GetBookByID(id string) (Book, error)
	// GetPromotionByID возвращает промоакцию или ErrPromotionNotFound.
	GetPromotionByID(id string) (Promotion, error)
	// CommitOrder атомарно применяет CommitRequest. Проигранная гонка за
	// остаток или слот промоакции — ErrCommitConflict либо ErrInsufficientStock.
	CommitOrder(commit CommitRequest) error
	// GetOrderByID возвращает заказ по идентификатору или ErrOrderNotFound.
	GetOrderByID(id string) (Order, error)
	// ListOrdersByCustomer возвращает заказы клиента, новые первыми.
	ListOrdersByCustomer(customerID string, limit int) ([]Order, error)
}

// BookRepository описывает CRUD-операции каталога книг.
type BookRepository interface {
	// CreateBook сохраняет новую книгу. Возвращает ошибку, если ID уже занят.
	CreateBook(book Book) error
	// UpdateBook перезаписывает каталожную запись или возвращает ErrBookNotFound.
	UpdateBook(book Book) error
	// DeleteBook помечает книгу удалённой или возвращает ErrBookNotFound.
	// Удалённая книга остаётся в хранилище, но не видна каталогу и продажам.
	DeleteBook(id string) error
	// GetBookByID возвращает книгу или ErrBookNotFound (в том числе для удалённых).
	GetBookByID(id string) (Book, error)
	// ListBooks возвращает страницу каталога и общее число записей без удалённых.
	ListBooks(offset, limit int) ([]Book, int, error)
	// SearchBooks ищет по подстроке названия или ISBN без учёта регистра.
	SearchBooks(keyword string, limit int) ([]Book, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository позволяет сохранять события для последующей публикации.
// Enqueue вне CommitOrder используется только вспомогательными сценариями;
// события заказа попадают в outbox атомарно вместе с коммитом.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}
