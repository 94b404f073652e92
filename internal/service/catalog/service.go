package catalog

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/thuyngan/bookstore/internal/domain"
	"github.com/thuyngan/bookstore/internal/messaging/kafka"
)

// Service управляет каталогом книг. Изменения каталога публикуются через
// outbox как события, чтобы витрины и поиск могли перестроить индексы.
type Service struct {
	repo   domain.BookRepository
	outbox domain.OutboxRepository
	logger *log.Entry
	now    func() time.Time
}

// NewService создаёт сервис каталога. outbox может быть nil — тогда события
// изменений не публикуются.
func NewService(repo domain.BookRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog-service")
	}
	return &Service{
		repo:   repo,
		outbox: outbox,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateBook валидирует и сохраняет новую книгу, присваивая ей ID.
func (s *Service) CreateBook(book domain.Book) (domain.Book, error) {
	if errs := book.Validate(); len(errs) > 0 {
		return domain.Book{}, errors.Join(errs...)
	}

	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := s.now()
	book.CreatedAt = now
	book.UpdatedAt = now

	if err := s.repo.CreateBook(book); err != nil {
		return domain.Book{}, err
	}

	s.enqueueEvent(kafka.EventTypeBookCreated, book.ID)
	s.logger.WithFields(log.Fields{
		"book_id": book.ID,
		"isbn":    book.ISBN,
	}).Info("book created")

	return book, nil
}

// UpdateBook валидирует и перезаписывает каталожную запись.
func (s *Service) UpdateBook(book domain.Book) (domain.Book, error) {
	if errs := book.Validate(); len(errs) > 0 {
		return domain.Book{}, errors.Join(errs...)
	}
	if book.ID == "" {
		return domain.Book{}, domain.ErrBookNotFound
	}

	current, err := s.repo.GetBookByID(book.ID)
	if err != nil {
		return domain.Book{}, err
	}
	book.CreatedAt = current.CreatedAt
	book.UpdatedAt = s.now()

	if err := s.repo.UpdateBook(book); err != nil {
		return domain.Book{}, err
	}

	s.enqueueEvent(kafka.EventTypeBookUpdated, book.ID)
	s.logger.WithField("book_id", book.ID).Info("book updated")

	return book, nil
}

// DeleteBook помечает книгу удалённой. Запись остаётся в хранилище, но
// перестаёт появляться в выдаче каталога и продаваться.
func (s *Service) DeleteBook(id string) error {
	if err := s.repo.DeleteBook(id); err != nil {
		return err
	}

	s.enqueueEvent(kafka.EventTypeBookDeleted, id)
	s.logger.WithField("book_id", id).Info("book soft deleted")

	return nil
}

// GetBook возвращает книгу по ID.
func (s *Service) GetBook(id string) (domain.Book, error) {
	return s.repo.GetBookByID(id)
}

// ListBooks возвращает страницу каталога и общее число записей.
func (s *Service) ListBooks(offset, limit int) ([]domain.Book, int, error) {
	return s.repo.ListBooks(offset, limit)
}

// SearchBooks ищет книги по подстроке названия или ISBN без учёта регистра.
func (s *Service) SearchBooks(keyword string, limit int) ([]domain.Book, error) {
	return s.repo.SearchBooks(strings.TrimSpace(keyword), limit)
}

func (s *Service) enqueueEvent(eventType kafka.EventType, bookID string) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(kafka.NewCatalogEvent(eventType, bookID))
	if err != nil {
		s.logger.WithError(err).Warn("failed to marshal catalog event payload")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "book",
		AggregateID:   bookID,
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("book_id", bookID).Warn("failed to enqueue catalog event")
	}
}
