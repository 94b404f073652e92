package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thuyngan/bookstore/internal/domain"
)

// outboxRecord хранит сообщение и служебные поля для in-memory outbox.
type outboxRecord struct {
	msg       domain.OutboxMessage
	status    string
	createdAt time.Time
	updatedAt time.Time
}

// Store — in-memory реализация шлюза хранилища для локальной разработки и
// тестов. Один мьютекс покрывает все коллекции, поэтому CommitOrder атомарен:
// условия "остаток >= списание" перепроверяются под блокировкой в момент записи.
type Store struct {
	mu         sync.RWMutex
	customers  map[string]domain.Customer
	books      map[string]domain.Book
	promotions map[string]domain.Promotion
	orders     map[string]domain.Order
	outbox     map[string]*outboxRecord
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		customers:  make(map[string]domain.Customer),
		books:      make(map[string]domain.Book),
		promotions: make(map[string]domain.Promotion),
		orders:     make(map[string]domain.Order),
		outbox:     make(map[string]*outboxRecord),
	}
}

// PutCustomer сохраняет клиента (CRM-подсистема вне ядра; для dev/тестов).
func (s *Store) PutCustomer(customer domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customer.ID] = customer
}

// PutPromotion сохраняет промоакцию (для dev/тестов).
func (s *Store) PutPromotion(promo domain.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promotions[promo.ID] = promo
}

// GetCustomerByID возвращает клиента или ErrCustomerNotFound.
func (s *Store) GetCustomerByID(id string) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// GetBookByID возвращает книгу или ErrBookNotFound. Мягко удалённые книги
// наружу не отдаются.
func (s *Store) GetBookByID(id string) (domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok || book.Deleted {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return book, nil
}

// GetPromotionByID возвращает промоакцию или ErrPromotionNotFound.
func (s *Store) GetPromotionByID(id string) (domain.Promotion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	promo, ok := s.promotions[id]
	if !ok {
		return domain.Promotion{}, domain.ErrPromotionNotFound
	}
	return promo, nil
}

// CommitOrder атомарно применяет коммит. Все проверки выполняются до первой
// записи, поэтому при отказе состояние хранилища не меняется.
func (s *Store) CommitOrder(commit domain.CommitRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[commit.Order.ID]; exists {
		return domain.ErrCommitConflict
	}

	for _, dec := range commit.BookDecrements {
		book, ok := s.books[dec.BookID]
		if !ok || book.Deleted {
			return fmt.Errorf("book %s: %w", dec.BookID, domain.ErrBookNotFound)
		}
		if book.Quantity < dec.Qty {
			// Гонка: между чтением и коммитом остаток успели разобрать.
			return fmt.Errorf("book %s: %w", dec.BookID, domain.ErrInsufficientStock)
		}
	}

	if commit.PromotionID != "" {
		promo, ok := s.promotions[commit.PromotionID]
		if !ok {
			return fmt.Errorf("promotion %s: %w", commit.PromotionID, domain.ErrPromotionNotFound)
		}
		if promo.Quantity <= 0 {
			return fmt.Errorf("promotion %s: %w", commit.PromotionID, domain.ErrCommitConflict)
		}
	}

	now := time.Now().UTC()
	for _, dec := range commit.BookDecrements {
		book := s.books[dec.BookID]
		book.Quantity -= dec.Qty
		book.UpdatedAt = now
		s.books[dec.BookID] = book
	}
	if commit.PromotionID != "" {
		promo := s.promotions[commit.PromotionID]
		promo.Quantity--
		s.promotions[commit.PromotionID] = promo
	}

	order := commit.Order
	order.Items = append([]domain.OrderItem(nil), commit.Order.Items...)
	s.orders[order.ID] = order

	for _, msg := range commit.Outbox {
		s.enqueueLocked(msg, now)
	}

	return nil
}

// GetOrderByID возвращает заказ или ErrOrderNotFound.
func (s *Store) GetOrderByID(id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	return order, nil
}

// ListOrdersByCustomer возвращает заказы клиента, новые первыми.
func (s *Store) ListOrdersByCustomer(customerID string, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range s.orders {
		if order.CustomerID != customerID {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// CreateBook сохраняет новую книгу, если ID ещё не занят.
func (s *Store) CreateBook(book domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[book.ID]; exists {
		return fmt.Errorf("book %s already exists", book.ID)
	}
	s.books[book.ID] = book
	return nil
}

// UpdateBook перезаписывает каталожную запись.
func (s *Store) UpdateBook(book domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.books[book.ID]
	if !ok || current.Deleted {
		return domain.ErrBookNotFound
	}
	s.books[book.ID] = book
	return nil
}

// DeleteBook помечает книгу удалённой. Запись остаётся ради истории заказов.
func (s *Store) DeleteBook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok || book.Deleted {
		return domain.ErrBookNotFound
	}
	book.Deleted = true
	book.UpdatedAt = time.Now().UTC()
	s.books[id] = book
	return nil
}

// ListBooks возвращает страницу каталога (сортировка по названию, затем ID)
// и общее число записей. Удалённые книги в выдачу не попадают.
func (s *Store) ListBooks(offset, limit int) ([]domain.Book, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Book, 0, len(s.books))
	for _, book := range s.books {
		if book.Deleted {
			continue
		}
		all = append(all, book)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Title != all[j].Title {
			return all[i].Title < all[j].Title
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Book{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

// SearchBooks ищет по подстроке названия или ISBN без учёта регистра,
// удалённые книги пропускаются. Пустой keyword соответствует всем книгам.
func (s *Store) SearchBooks(keyword string, limit int) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	needle := strings.ToLower(keyword)

	found := make([]domain.Book, 0)
	for _, book := range s.books {
		if book.Deleted {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(book.Title), needle) &&
			!strings.Contains(strings.ToLower(book.ISBN), needle) {
			continue
		}
		found = append(found, book)
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Title != found[j].Title {
			return found[i].Title < found[j].Title
		}
		return found[i].ID < found[j].ID
	})

	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// Enqueue сохраняет событие со статусом `pending` вне коммита заказа.
func (s *Store) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enqueueLocked(msg, time.Now().UTC()), nil
}

func (s *Store) enqueueLocked(msg domain.OutboxMessage, now time.Time) domain.OutboxMessage {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	s.outbox[msg.ID] = &outboxRecord{
		msg:       msg,
		status:    "pending",
		createdAt: now,
		updatedAt: now,
	}
	return msg
}

// PullPending возвращает до limit сообщений со статусом `pending`, старые первыми.
func (s *Store) PullPending(limit int) ([]domain.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	pending := make([]*outboxRecord, 0, len(s.outbox))
	for _, rec := range s.outbox {
		if rec.status == "pending" {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].createdAt.Equal(pending[j].createdAt) {
			return pending[i].createdAt.Before(pending[j].createdAt)
		}
		return pending[i].msg.ID < pending[j].msg.ID
	})

	if len(pending) > limit {
		pending = pending[:limit]
	}
	result := make([]domain.OutboxMessage, 0, len(pending))
	for _, rec := range pending {
		result = append(result, rec.msg)
	}
	return result, nil
}

// Stats возвращает состояние backlog outbox.
func (s *Store) Stats() (domain.OutboxStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.OutboxStats{}
	for _, rec := range s.outbox {
		if rec.status != "pending" {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || rec.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = rec.createdAt
		}
	}
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (s *Store) MarkSent(id string) error {
	return s.markStatus(id, "sent")
}

// MarkFailed фиксирует ошибку публикации.
func (s *Store) MarkFailed(id string) error {
	return s.markStatus(id, "failed")
}

func (s *Store) markStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.outbox[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	rec.status = status
	rec.updatedAt = time.Now().UTC()
	return nil
}

var (
	_ domain.Gateway          = (*Store)(nil)
	_ domain.BookRepository   = (*Store)(nil)
	_ domain.OutboxRepository = (*Store)(nil)
)
