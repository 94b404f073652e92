package domain

import "time"

// RequestItem — одна позиция (книга, количество) во входящем запросе.
type RequestItem struct {
	BookID string
	Qty    int32
}

// OrderRequest — входной запрос на оформление заказа. StaffID заполняется
// оркестрацией из явно переданной личности вызывающего, а не из ambient-контекста.
type OrderRequest struct {
	StaffID    string
	CustomerID string
	// PromotionID опционален; пустая строка означает "без промоакции".
	PromotionID string
	Note        string
	Items       []RequestItem
}

// OrderItem представляет одну позицию сохранённого заказа.
type OrderItem struct {
	ID     string
	BookID string
	Qty    int32
	// PriceMinor — снимок цены за единицу на момент заказа; последующие
	// изменения каталога не влияют на исторические заказы.
	PriceMinor int64
	CreatedAt  time.Time
}

// Order — результат успешного оформления. Создаётся ровно один раз атомарным
// коммитом и после этого неизменяем.
type Order struct {
	ID         string
	StaffID    string
	CustomerID string
	// PromotionID — пустая строка, если скидка не применялась.
	PromotionID string
	// SubtotalMinor — сумма позиций до скидки.
	SubtotalMinor int64
	// PromotionMinor — сумма скидки (0 без промоакции).
	PromotionMinor int64
	// TotalMinor = SubtotalMinor - PromotionMinor; по построению не отрицательна.
	TotalMinor int64
	Active     bool
	Note       string
	CreatedAt  time.Time
	Items      []OrderItem
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.StaffID == "" {
		errs = append(errs, ErrStaffRequired)
	}
	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrEmptyOrder)
	}
	if o.SubtotalMinor < 0 || o.PromotionMinor < 0 || o.TotalMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем subtotal с суммой позиций и total с разницей subtotal-скидка.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrBookPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.SubtotalMinor || o.TotalMinor != o.SubtotalMinor-o.PromotionMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
