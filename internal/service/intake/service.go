package intake

import (
	"encoding/json"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thuyngan/bookstore/internal/domain"
	"github.com/thuyngan/bookstore/internal/messaging/kafka"
	"github.com/thuyngan/bookstore/internal/metrics"
)

// Service оркеструет оформление заказа: читает сущности через шлюз хранилища,
// запускает чистый движок и выдаёт атомарный коммит. Единственный компонент
// ядра с побочными эффектами.
type Service struct {
	gateway domain.Gateway
	logger  *log.Entry
	metrics *metrics.IntakeMetrics
	// now вынесен в поле, чтобы тесты могли зафиксировать время.
	now func() time.Time
}

// NewService создаёт сервис оформления заказов.
func NewService(gateway domain.Gateway, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "intake")
	}
	return &Service{
		gateway: gateway,
		logger:  logger,
		metrics: metrics.NewIntakeMetrics(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(gateway domain.Gateway, logger *log.Entry) *Service {
	svc := NewService(gateway, logger)
	svc.metrics = nil
	return svc
}

// CreateOrder выполняет полный цикл: fetch → evaluate → commit. Ошибки
// валидации пробрасываются вызывающему без изменений; сервис ничего не
// повторяет сам — при ErrCommitConflict вызывающий перезапускает цикл с нуля,
// устаревшие чтения между попытками не переиспользуются.
func (s *Service) CreateOrder(req domain.OrderRequest, staffID string) (domain.Order, error) {
	start := s.now()
	req.StaffID = staffID

	order, err := s.createOrder(req)
	if s.metrics != nil {
		s.metrics.RecordIntakeDuration(time.Since(start))
		if err != nil {
			s.metrics.RecordOrderFailed(failureReason(err))
		} else {
			s.metrics.RecordOrderCreated()
			if order.PromotionMinor > 0 {
				s.metrics.RecordPromotionApplied()
			}
		}
	}
	return order, err
}

func (s *Service) createOrder(req domain.OrderRequest) (domain.Order, error) {
	customer, err := s.loadCustomer(req.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}

	books, err := s.loadBooks(req.Items)
	if err != nil {
		return domain.Order{}, err
	}

	promo, err := s.loadPromotion(req.PromotionID)
	if err != nil {
		return domain.Order{}, err
	}

	draft, err := Evaluate(req, customer, books, promo, s.now())
	if err != nil {
		return domain.Order{}, err
	}

	commit := domain.CommitRequest{
		Order:          draft.Order,
		BookDecrements: draft.BookDecrements,
	}
	if draft.PromotionApplied {
		commit.PromotionID = draft.Order.PromotionID
	}
	if msg, err := orderCreatedMessage(draft.Order); err != nil {
		s.logger.WithError(err).WithField("order_id", draft.Order.ID).Warn("failed to build order event")
	} else {
		commit.Outbox = append(commit.Outbox, msg)
	}

	if err := s.gateway.CommitOrder(commit); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":    draft.Order.ID,
			"customer_id": req.CustomerID,
		}).Warn("order commit failed")
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id":    draft.Order.ID,
		"customer_id": draft.Order.CustomerID,
		"total_minor": draft.Order.TotalMinor,
	}).Info("order created")

	return draft.Order, nil
}

// loadCustomer возвращает nil при отсутствии клиента: решение о том, какой
// ошибкой это считать, принимает движок с учётом порядка проверок.
func (s *Service) loadCustomer(id string) (*domain.Customer, error) {
	if id == "" {
		return nil, nil
	}
	customer, err := s.gateway.GetCustomerByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// loadBooks читает каждую книгу один раз на уникальный идентификатор.
// Отсутствующие книги в карту не попадают — движок отчитается по позициям.
func (s *Service) loadBooks(items []domain.RequestItem) (map[string]domain.Book, error) {
	books := make(map[string]domain.Book, len(items))
	for _, item := range items {
		if _, ok := books[item.BookID]; ok {
			continue
		}
		book, err := s.gateway.GetBookByID(item.BookID)
		if err != nil {
			if errors.Is(err, domain.ErrBookNotFound) {
				continue
			}
			return nil, err
		}
		books[book.ID] = book
	}
	return books, nil
}

// loadPromotion сохраняет историческое поведение только для отсутствующей
// акции: id указан, но акция не найдена — заказ оформляется без скидки, без
// ошибки. Warn оставлен, чтобы поведение было наблюдаемым. Любая другая
// ошибка чтения пробрасывается: сбой хранилища не должен молча менять цену.
func (s *Service) loadPromotion(id string) (*domain.Promotion, error) {
	if id == "" {
		return nil, nil
	}
	promo, err := s.gateway.GetPromotionByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrPromotionNotFound) {
			s.logger.WithField("promotion_id", id).Warn("promotion not found, proceeding without discount")
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

func orderCreatedMessage(order domain.Order) (domain.OutboxMessage, error) {
	payload, err := json.Marshal(kafka.OrderEvent{
		EventType:      kafka.EventTypeOrderCreated,
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		StaffID:        order.StaffID,
		SubtotalMinor:  order.SubtotalMinor,
		PromotionMinor: order.PromotionMinor,
		TotalMinor:     order.TotalMinor,
		ItemsCount:     len(order.Items),
		Timestamp:      order.CreatedAt,
	})
	if err != nil {
		return domain.OutboxMessage{}, err
	}
	return domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(kafka.EventTypeOrderCreated),
		Payload:       payload,
	}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		return "empty_order"
	case errors.Is(err, domain.ErrInvalidCustomer):
		return "invalid_customer"
	case errors.Is(err, domain.ErrBookNotFound):
		return "book_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrItemQtyInvalid):
		return "invalid_qty"
	case errors.Is(err, domain.ErrCommitConflict):
		return "commit_conflict"
	default:
		return "storage"
	}
}
