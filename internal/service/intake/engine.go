package intake

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thuyngan/bookstore/internal/domain"
)

// Draft — результат работы движка: полностью оценённый заказ плюс списания,
// которые хранилище должно применить атомарно вместе со вставкой заказа.
type Draft struct {
	Order domain.Order
	// BookDecrements агрегированы по книге в порядке первого упоминания.
	BookDecrements []domain.BookDecrement
	// PromotionApplied — скидка применена, остаток применений акции
	// уменьшается на 1 в том же коммите.
	PromotionApplied bool
}

// Evaluate — чистая функция оценки и валидации заказа. Не делает I/O и не
// мутирует аргументы; все побочные эффекты откладываются до коммита.
//
// Порядок проверок фиксирован и определяет, какую ошибку получит некорректный
// запрос: пустой заказ → клиент → отсутствующие книги (по позициям в порядке
// запроса) → нехватка остатков → оценка. Промоакция никогда не является
// причиной отказа: непригодная акция просто не применяется.
func Evaluate(
	req domain.OrderRequest,
	customer *domain.Customer,
	books map[string]domain.Book,
	promo *domain.Promotion,
	now time.Time,
) (Draft, error) {
	if len(req.Items) == 0 {
		return Draft{}, domain.ErrEmptyOrder
	}
	if !customer.Active() {
		return Draft{}, domain.ErrInvalidCustomer
	}

	for i, item := range req.Items {
		if item.Qty <= 0 {
			return Draft{}, fmt.Errorf("item[%d]: %w", i, domain.ErrItemQtyInvalid)
		}
		if _, ok := books[item.BookID]; !ok {
			return Draft{}, fmt.Errorf("book %s: %w", item.BookID, domain.ErrBookNotFound)
		}
	}

	// Запрошенные количества агрегируются по книге: одна книга может
	// встречаться в нескольких позициях, а остаток не должен уйти в минус.
	requested := make(map[string]int32, len(req.Items))
	order := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if _, seen := requested[item.BookID]; !seen {
			order = append(order, item.BookID)
		}
		requested[item.BookID] += item.Qty
	}
	for _, bookID := range order {
		if books[bookID].Quantity < requested[bookID] {
			return Draft{}, fmt.Errorf("book %s: %w", bookID, domain.ErrInsufficientStock)
		}
	}

	var subtotal int64
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		book := books[item.BookID]
		items = append(items, domain.OrderItem{
			ID:         uuid.NewString(),
			BookID:     book.ID,
			Qty:        item.Qty,
			PriceMinor: book.PriceMinor,
			CreatedAt:  now,
		})
		subtotal += int64(item.Qty) * book.PriceMinor
	}

	var promotionMinor int64
	var promotionID string
	applied := false
	if promo != nil && promo.EligibleFor(subtotal, now) {
		promotionMinor = promo.DiscountAmount(subtotal)
		promotionID = promo.ID
		applied = true
	}

	decrements := make([]domain.BookDecrement, 0, len(order))
	for _, bookID := range order {
		decrements = append(decrements, domain.BookDecrement{BookID: bookID, Qty: requested[bookID]})
	}

	return Draft{
		Order: domain.Order{
			ID:             uuid.NewString(),
			StaffID:        req.StaffID,
			CustomerID:     req.CustomerID,
			PromotionID:    promotionID,
			SubtotalMinor:  subtotal,
			PromotionMinor: promotionMinor,
			TotalMinor:     subtotal - promotionMinor,
			Active:         true,
			Note:           req.Note,
			CreatedAt:      now,
			Items:          items,
		},
		BookDecrements:   decrements,
		PromotionApplied: applied,
	}, nil
}
